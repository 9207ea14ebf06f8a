package repository

import (
	"context"
	"database/sql"
	"errors"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/util"
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// SaveRefreshToken сохраняет запись реестра refresh-токена в базе данных
// Возвращает ошибку, если операция не удалась
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (jti, user_uuid, expire_at, revoked, user_agent, ip_address)
				VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		refreshToken.JTI,
		refreshToken.UserUUID,
		refreshToken.ExpireAt,
		refreshToken.Revoked,
		refreshToken.UserAgent,
		refreshToken.IpAddress,
	)

	if err != nil {
		return util.LogError("ошибка вставки данных в БД", err)
	}

	return nil
}

// FindByJTI ищет запись реестра refresh-токена в базе данных
func (r *JWTRepository) FindByJTI(ctx context.Context, jti string) (*model.RefreshToken, error) {
	query := `SELECT jti, user_uuid, expire_at, revoked, revoked_at, user_agent, ip_address, created_at
				FROM refresh_tokens WHERE jti = $1`

	refreshToken := &model.RefreshToken{}

	err := r.DB.GetContext(ctx, refreshToken, query, jti)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, util.LogError("ошибка при выполнении запроса", err)
	}

	return refreshToken, nil
}

// RevokeByJTI помечает refresh-токен отозванным.
// Условие revoked = FALSE гарантирует, что токен отзывается ровно один раз:
// повторная попытка получает apperrors.ErrTokenRevoked.
func (r *JWTRepository) RevokeByJTI(ctx context.Context, jti string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = now() WHERE jti = $1 AND revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, jti)
	if err != nil {
		return util.LogError("не удалось отозвать рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("не удалось проверить, отозван ли токен", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrTokenRevoked
	}

	return nil
}

// Rotate атомарно отзывает старый refresh-токен и сохраняет новый.
// Обе операции выполняются в одной транзакции: при конкурентных refresh
// одной и той же сессии победитель ровно один, проигравший получает
// apperrors.ErrTokenRevoked и новая пара для него не фиксируется.
func (r *JWTRepository) Rotate(ctx context.Context, oldJTI string, newToken *model.RefreshToken) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return util.LogError("не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = now() WHERE jti = $1 AND revoked = FALSE`,
		oldJTI,
	)
	if err != nil {
		return util.LogError("не удалось отозвать рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("не удалось проверить, отозван ли токен", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrTokenRevoked
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (jti, user_uuid, expire_at, revoked, user_agent, ip_address)
			VALUES ($1, $2, $3, $4, $5, $6)`,
		newToken.JTI,
		newToken.UserUUID,
		newToken.ExpireAt,
		newToken.Revoked,
		newToken.UserAgent,
		newToken.IpAddress,
	)
	if err != nil {
		return util.LogError("не удалось сохранить новый рефреш токен", err)
	}

	if err := tx.Commit(); err != nil {
		return util.LogError("не удалось зафиксировать транзакцию", err)
	}

	return nil
}

// RevokeAllForUser отзывает все активные сессии пользователя.
// Вызывается при смене пароля и деактивации.
func (r *JWTRepository) RevokeAllForUser(ctx context.Context, userUUID string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = now() WHERE user_uuid = $1 AND revoked = FALSE`

	_, err := r.DB.ExecContext(ctx, query, userUUID)
	if err != nil {
		return util.LogError("не удалось отозвать сессии пользователя", err)
	}

	return nil
}

// DeleteExpired удаляет записи реестра, пережившие естественный срок действия
func (r *JWTRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expire_at < now()`

	result, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, util.LogError("не удалось удалить просроченные токены", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("не удалось получить число удалённых строк", err)
	}

	return rowsAffected, nil
}
