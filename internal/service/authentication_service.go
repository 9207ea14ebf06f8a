package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/notifier"
	"accounts-web-server/internal/ports"
	"accounts-web-server/internal/security"

	"github.com/google/uuid"
)

type AuthenticationService struct {
	jwtRepoInterface ports.JWTRepositoryInterface
	revocationCache  ports.RevocationCache
	*config.AppConfig
	jwtServiceInterface ports.JWTServiceInterface
	userRepository      ports.UserRepository
	hasher              *security.PasswordHasher
}

func NewAuthenticationService(
	repo ports.JWTRepositoryInterface,
	cache ports.RevocationCache,
	cfg *config.AppConfig,
	service ports.JWTServiceInterface,
	userInterface ports.UserRepository,
	hasher *security.PasswordHasher,
) *AuthenticationService {
	return &AuthenticationService{
		repo,
		cache,
		cfg,
		service,
		userInterface,
		hasher,
	}
}

// Register создает нового пользователя по email и паролю.
// Пароль хэшируется в ограниченном пуле, токены при регистрации не выдаются:
// клиент проходит обычный логин.
func (s *AuthenticationService) Register(ctx context.Context, email, password, passwordConfirm string) (*model.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if password != passwordConfirm {
		return nil, fmt.Errorf("%w: пароли не совпадают", apperrors.ErrValidation)
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	}

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	return created, nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("%w: некорректный email", apperrors.ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: пароль должен содержать минимум 8 символов", apperrors.ErrValidation)
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("%w: пароль должен содержать буквы в разных регистрах", apperrors.ErrValidation)
	}
	if digitCount < 1 {
		return fmt.Errorf("%w: пароль должен содержать хотя бы одну цифру", apperrors.ErrValidation)
	}
	if specialCount < 1 {
		return fmt.Errorf("%w: пароль должен содержать хотя бы один специальный символ", apperrors.ErrValidation)
	}

	return nil
}

// Login выдает пару токенов по email и паролю.
// Для несуществующего email и неверного пароля возвращается одна и та же
// ошибка, чтобы по ответу нельзя было перебирать зарегистрированные email.
func (s *AuthenticationService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки пароля: %w", err)
	}
	if !ok || !user.IsActive() {
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, refreshToken, err := s.jwtServiceInterface.GenerateAccessRefreshTokens(user.UUID)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IpAddress = ipAddress

	if err := s.jwtRepoInterface.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("ошибка сохранения refresh токена: %w", err)
	}

	return tokens, nil
}

// RefreshToken обменивает refresh-токен на новую пару токенов.
// Порядок проверок:
//  1. Подпись, срок действия и тип токена (codec).
//  2. Реестр отзыва: сперва Redis, затем таблица refresh_tokens.
//  3. Субъект: пользователь должен существовать и быть активным
//     (аккаунт могли деактивировать после выдачи токена).
//  4. Смена User-Agent запрещает операцию и отзывает сессию.
//  5. Попытка с нового IP разрешена, но на webhook уходит уведомление.
//
// При включенной ротации (jwt.rotate_on_use) предъявленный refresh-токен
// отзывается и выдается новый; отзыв старого и сохранение нового выполняются
// одной транзакцией, поэтому из двух конкурентных refresh одной сессии
// успешен ровно один. Без ротации выдается только новый access-токен,
// refresh возвращается прежний.
func (s *AuthenticationService) RefreshToken(ctx context.Context, userAgent string, ipAddress string, refreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtServiceInterface.ParseToken(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	jti := claims.ID
	userUUID := claims.UserUUID

	if revoked, err := s.revocationCache.IsRevoked(ctx, jti); err == nil && revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	storedRefreshToken, err := s.jwtRepoInterface.FindByJTI(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("не удалось найти рефреш токен: %w", err)
	}
	if storedRefreshToken.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	if time.Now().UTC().After(storedRefreshToken.ExpireAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil || !user.IsActive() {
		log.Printf("refresh token %s: субъект отсутствует или деактивирован", jti)
		return nil, apperrors.ErrTokenInvalid
	}

	if storedRefreshToken.UserAgent != userAgent {
		if err := s.revokeSession(ctx, jti, storedRefreshToken.ExpireAt); err != nil {
			log.Printf("не удалось отозвать сессию: %v", err)
		}
		log.Printf("refresh token %s: попытка обновления с другого User-Agent", jti)
		return nil, apperrors.ErrTokenInvalid
	}

	if storedRefreshToken.IpAddress != ipAddress {
		log.Printf("обнаружен вход с нового ip адреса, отправка webhook")
		go func() {
			if err := notifier.NotifyWebhook(s.AppConfig.Webhook.URL, userUUID, ipAddress, storedRefreshToken.IpAddress); err != nil {
				log.Printf("ошибка отправки webhook: %v", err)
			}
		}()
	}

	if !s.AppConfig.JWT.RotateOnUse {
		accessToken, err := s.jwtServiceInterface.GenerateAccessToken(userUUID, jti)
		if err != nil {
			return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
		}
		return &model.TokensPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		}, nil
	}

	tokensPair, newRefreshToken, err := s.jwtServiceInterface.GenerateAccessRefreshTokens(userUUID)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	newRefreshToken.UserAgent = userAgent
	newRefreshToken.IpAddress = ipAddress

	if err := s.jwtRepoInterface.Rotate(ctx, jti, newRefreshToken); err != nil {
		return nil, fmt.Errorf("не удалось ротировать рефреш токен: %w", err)
	}

	if err := s.revocationCache.MarkRevoked(ctx, jti, time.Until(storedRefreshToken.ExpireAt)); err != nil {
		log.Printf("не удалось закэшировать отзыв токена: %v", err)
	}

	return tokensPair, nil
}

// Logout отзывает refresh-токен немедленно, не дожидаясь естественного
// истечения. Повторный logout тем же токеном возвращает ошибку отзыва.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtServiceInterface.ParseToken(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return err
	}

	var expireAt time.Time
	if claims.ExpiresAt != nil {
		expireAt = claims.ExpiresAt.Time
	}

	if err := s.revokeSession(ctx, claims.ID, expireAt); err != nil {
		return fmt.Errorf("не удалось отозвать токен: %w", err)
	}

	return nil
}

func (s *AuthenticationService) revokeSession(ctx context.Context, jti string, expireAt time.Time) error {
	if err := s.jwtRepoInterface.RevokeByJTI(ctx, jti); err != nil {
		return err
	}

	if err := s.revocationCache.MarkRevoked(ctx, jti, time.Until(expireAt)); err != nil {
		log.Printf("не удалось закэшировать отзыв токена: %v", err)
	}

	return nil
}
