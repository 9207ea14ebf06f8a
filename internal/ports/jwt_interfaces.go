package ports

import (
	"context"
	"time"

	"accounts-web-server/internal/model"
	"accounts-web-server/internal/security"
)

type JWTRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindByJTI(ctx context.Context, jti string) (*model.RefreshToken, error)
	RevokeByJTI(ctx context.Context, jti string) error
	Rotate(ctx context.Context, oldJTI string, newToken *model.RefreshToken) error
	RevokeAllForUser(ctx context.Context, userUUID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// RevocationCache : Redis слой, быстрый ответ "отозван ли jti"
type RevocationCache interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error)
	GenerateAccessToken(userUUID string, refreshJTI string) (string, error)
	ParseToken(tokenStr string, expected security.TokenType) (*security.Claims, error)
}
