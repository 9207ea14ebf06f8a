package service

import (
	"context"
	"fmt"
	"time"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/ports"
	"accounts-web-server/internal/security"
)

type UserService struct {
	userRepository ports.UserRepository
	jwtRepository  ports.JWTRepositoryInterface
	avatarStorage  ports.AvatarStorage
	hasher         *security.PasswordHasher
	avatarURLTTL   time.Duration
}

func NewUserService(
	userRepository ports.UserRepository,
	jwtRepository ports.JWTRepositoryInterface,
	avatarStorage ports.AvatarStorage,
	hasher *security.PasswordHasher,
	avatarCfg *config.AvatarConfig,
) *UserService {
	urlTTL := 15 * time.Minute
	if avatarCfg != nil && avatarCfg.URLTTL > 0 {
		urlTTL = time.Duration(avatarCfg.URLTTL) * time.Second
	}

	return &UserService{
		userRepository: userRepository,
		jwtRepository:  jwtRepository,
		avatarStorage:  avatarStorage,
		hasher:         hasher,
		avatarURLTTL:   urlTTL,
	}
}

// restrictToOwner разрешает операцию только владельцу ресурса
func restrictToOwner(ctx context.Context, targetUUID string) error {
	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil || claims == nil {
		return apperrors.ErrUnauthorized
	}

	if claims.UserUUID != targetUUID {
		return apperrors.ErrForbidden
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	if err := restrictToOwner(ctx, uuid); err != nil {
		return nil, err
	}

	user, err := s.userRepository.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("пользователь не найден: %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, updatedUser *model.User) error {
	if err := restrictToOwner(ctx, updatedUser.UUID); err != nil {
		return err
	}

	if err := validateEmail(updatedUser.Email); err != nil {
		return err
	}

	return s.userRepository.UpdateUser(ctx, updatedUser)
}

// UpdatePassword меняет пароль пользователя.
// Требует старый пароль и отзывает все активные сессии: украденный
// refresh-токен перестает работать сразу после смены пароля.
func (s *UserService) UpdatePassword(ctx context.Context, uuid, oldPassword, newPassword string) error {
	if err := restrictToOwner(ctx, uuid); err != nil {
		return err
	}

	user, err := s.userRepository.FindByUUID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("пользователь не найден: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("ошибка проверки пароля: %w", err)
	}
	if !ok {
		return apperrors.ErrInvalidCredentials
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("не удалось создать хэш пароля: %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, uuid, hash); err != nil {
		return err
	}

	return s.jwtRepository.RevokeAllForUser(ctx, uuid)
}

// DeactivateUser выполняет мягкое удаление: запись остается в БД,
// статус становится inactive, все сессии отзываются.
func (s *UserService) DeactivateUser(ctx context.Context, uuid string) error {
	if err := restrictToOwner(ctx, uuid); err != nil {
		return err
	}

	if err := s.userRepository.Deactivate(ctx, uuid); err != nil {
		return err
	}

	return s.jwtRepository.RevokeAllForUser(ctx, uuid)
}

func (s *UserService) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil || claims == nil {
		return nil, "", apperrors.ErrUnauthorized
	}

	return s.userRepository.ListUsers(ctx, cursor, limit)
}

// AvatarUploadURL выдает presigned PUT-ссылку для загрузки аватара.
// Файл уходит в S3 напрямую, через сервис проходит только подпись ссылки.
func (s *UserService) AvatarUploadURL(ctx context.Context, uuid string) (string, error) {
	if err := restrictToOwner(ctx, uuid); err != nil {
		return "", err
	}

	if exists, err := s.userRepository.Exists(ctx, uuid); err != nil || !exists {
		return "", apperrors.ErrNotFound
	}

	key := "avatars/" + uuid

	url, err := s.avatarStorage.GeneratePresignedPutURL(ctx, key, s.avatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("не удалось сгенерировать presigned PUT URL: %w", err)
	}

	if err := s.userRepository.SetAvatarKey(ctx, uuid, key); err != nil {
		return "", err
	}

	return url, nil
}

// AvatarDownloadURL выдает presigned GET-ссылку на аватар пользователя
func (s *UserService) AvatarDownloadURL(ctx context.Context, uuid string) (string, error) {
	if _, err := security.GetClaimsFromContext(ctx); err != nil {
		return "", apperrors.ErrUnauthorized
	}

	user, err := s.userRepository.FindByUUID(ctx, uuid)
	if err != nil {
		return "", fmt.Errorf("пользователь не найден: %w", err)
	}

	if !user.AvatarKey.Valid || user.AvatarKey.String == "" {
		return "", fmt.Errorf("%w: аватар не загружен", apperrors.ErrNotFound)
	}

	url, err := s.avatarStorage.GeneratePresignedGetURL(ctx, user.AvatarKey.String, s.avatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("не удалось сгенерировать presigned GET URL: %w", err)
	}

	return url, nil
}
