package ports

import (
	"context"

	"accounts-web-server/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error
	SetAvatarKey(ctx context.Context, uuid, avatarKey string) error
	Deactivate(ctx context.Context, uuid string) error
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
	Exists(ctx context.Context, uuid string) (bool, error)
}

type UserService interface {
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	UpdateUser(ctx context.Context, updatedUser *model.User) error
	UpdatePassword(ctx context.Context, uuid, oldPassword, newPassword string) error
	DeactivateUser(ctx context.Context, uuid string) error
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
	AvatarUploadURL(ctx context.Context, uuid string) (string, error)
	AvatarDownloadURL(ctx context.Context, uuid string) (string, error)
}
