package ports

import (
	"context"

	"accounts-web-server/internal/model"
)

type AuthenticationService interface {
	Register(ctx context.Context, email, password, passwordConfirm string) (*model.User, error)
	Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, userAgent, ipAddress, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
}
