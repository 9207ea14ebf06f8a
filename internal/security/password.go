package security

import (
	"context"

	"accounts-web-server/config"
	"accounts-web-server/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword : создает bcrypt-хэш пароля (соль внутри хэша)
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", util.LogError("не удалось создать хэш пароля", err)
	}
	return string(hash), nil
}

// CheckPassword : сверяет пароль с хэшем, сравнение constant-time внутри bcrypt
func CheckPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordHasher ограничивает число одновременных bcrypt-операций.
// Хэширование намеренно дорогое по CPU, без ограничения наплыв регистраций
// способен выесть все ядра и задушить остальные запросы.
type PasswordHasher struct {
	cost int
	sem  chan struct{}
}

func NewPasswordHasher(cfg *config.PasswordConfig) *PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.BcryptCost >= bcrypt.MinCost && cfg.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.BcryptCost
	}

	maxConcurrent := 4
	if cfg != nil && cfg.MaxConcurrent > 0 {
		maxConcurrent = cfg.MaxConcurrent
	}

	return &PasswordHasher{
		cost: cost,
		sem:  make(chan struct{}, maxConcurrent),
	}
}

// Hash хэширует пароль, дождавшись свободного слота пула.
// Ожидание прерывается отменой контекста (клиент отключился).
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", util.LogError("не удалось создать хэш пароля", err)
	}
	return string(hash), nil
}

// Verify сверяет пароль с хэшем в рамках того же пула
func (h *PasswordHasher) Verify(ctx context.Context, password string, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-ctx.Done():
		return false, ctx.Err()
	}

	return CheckPassword(password, hash), nil
}
