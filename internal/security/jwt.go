package security

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	issuer = "accounts-web-server"
)

// TokenType различает access и refresh токены.
// Декодер обязан сверять тип с ожидаемым: access-токен нельзя предъявить
// вместо refresh и наоборот.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type Claims struct {
	UserUUID  string `json:"user_uuid"`
	TokenType string `json:"token_type"`
	// RefreshTokenUUID : jti refresh-токена, вместе с которым был выдан access.
	// Позволяет отклонять живые access-токены отозванной сессии.
	RefreshTokenUUID string `json:"refresh_token_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// GenerateAccessRefreshTokens выпускает пару токенов для пользователя.
// Возвращает пару и запись реестра нового refresh-токена, которую вызывающий
// обязан сохранить.
func (service *JWTService) GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error) {
	refreshTTL, err := time.ParseDuration(service.RefreshTokenTTL)
	if err != nil {
		return nil, nil, util.LogError("ошибка парсинга refresh_token_ttl", err)
	}

	now := time.Now()
	jti := uuid.New().String()

	refreshClaims := Claims{
		UserUUID:  userUUID,
		TokenType: string(TokenTypeRefresh),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, refreshClaims).SignedString([]byte(service.SecretKey))
	if err != nil {
		return nil, nil, util.LogError("ошибка подписи refresh токена", err)
	}

	accessToken, err := service.GenerateAccessToken(userUUID, jti)
	if err != nil {
		return nil, nil, err
	}

	return &model.TokensPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		}, &model.RefreshToken{
			JTI:      jti,
			UserUUID: userUUID,
			ExpireAt: now.Add(refreshTTL),
		}, nil
}

// GenerateAccessToken выпускает только access-токен, привязанный к уже
// существующей сессии (refresh без ротации).
func (service *JWTService) GenerateAccessToken(userUUID string, refreshJTI string) (string, error) {
	accessTTL, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return "", util.LogError("ошибка парсинга access_token_ttl", err)
	}

	now := time.Now()
	claims := Claims{
		UserUUID:         userUUID,
		TokenType:        string(TokenTypeAccess),
		RefreshTokenUUID: refreshJTI,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи access токена", err)
	}

	return accessToken, nil
}

// ParseToken проверяет подпись и срок действия токена, затем сверяет тип.
// Ни одно поле claims не используется до проверки подписи.
func (service *JWTService) ParseToken(tokenStr string, expected TokenType) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
	if !jwtToken.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	if claims.TokenType != string(expected) {
		return nil, fmt.Errorf("%w: ожидался токен типа %q", apperrors.ErrTokenInvalid, expected)
	}

	return claims, nil
}

// SessionStore : поиск сессии по jti refresh-токена
type SessionStore interface {
	FindByJTI(ctx context.Context, jti string) (*model.RefreshToken, error)
}

// RevocationChecker : быстрая проверка отзыва по jti
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTMiddleware закрывает маршруты, требующие access-токен.
// Помимо подписи и срока действия проверяется, что сессия, в рамках которой
// был выдан access-токен, не была отозвана.
func JWTMiddleware(jwtService *JWTService, sessions SessionStore, revoked RevocationChecker) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, sessions, revoked, next))
	}
}

func handleAuthentication(jwtService *JWTService, sessions SessionStore, revoked RevocationChecker, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := jwtService.ParseToken(token, TokenTypeAccess)
		if err != nil {
			log.Printf("невалидный access токен: %v", err)
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		if isRevoked, err := revoked.IsRevoked(request.Context(), claims.RefreshTokenUUID); err == nil && isRevoked {
			log.Printf("сессия %s отозвана", claims.RefreshTokenUUID)
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		session, err := sessions.FindByJTI(request.Context(), claims.RefreshTokenUUID)
		if err != nil {
			log.Printf("сессия не найдена: %v", err)
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		if session.Revoked {
			log.Printf("сессия %s отозвана", session.JTI)
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
