package ports

import (
	"context"
	"time"
)

// AvatarStorage : S3-хранилище аватаров
type AvatarStorage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
