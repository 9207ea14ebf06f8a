package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"accounts-web-server/config"
	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/util"

	"github.com/lib/pq"
)

// код ошибки Postgres unique_violation
const pgUniqueViolation = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя.
// Уникальность email обеспечивается ограничением в БД, нарушение
// транслируется в apperrors.ErrDuplicateEmail.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash, status)
	VALUES ($1, $2, $3, $4)
	RETURNING uuid, email, password_hash, status, avatar_key, created_at
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash, model.UserStatusActive).
		StructScan(createdUser)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, user.Email)
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, status, avatar_key, created_at FROM users WHERE uuid = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, status, avatar_key, created_at FROM users WHERE email = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

// UpdateUser : обновляет поле email
func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2
		WHERE uuid = $1
	`
	result, err := r.DB.ExecContext(ctx, query, user.UUID, user.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, user.Email)
		}
		return util.LogError("[UserRepo] не удалось обновить пользователя", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePassword : меняет хэш пароля пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE uuid = $1`
	result, err := r.DB.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetAvatarKey : запоминает S3-ключ аватара пользователя
func (r *UserRepository) SetAvatarKey(ctx context.Context, uuid, avatarKey string) error {
	query := `UPDATE users SET avatar_key = $2 WHERE uuid = $1`
	result, err := r.DB.ExecContext(ctx, query, uuid, avatarKey)
	if err != nil {
		return util.LogError("[UserRepo] не удалось сохранить ключ аватара", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Deactivate : мягкое удаление, запись остаётся в БД со статусом inactive
func (r *UserRepository) Deactivate(ctx context.Context, uuid string) error {
	query := `UPDATE users SET status = $2 WHERE uuid = $1 AND status <> $2`
	result, err := r.DB.ExecContext(ctx, query, uuid, model.UserStatusInactive)
	if err != nil {
		return util.LogError("[UserRepo] не удалось деактивировать пользователя", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Exists : проверяет, существует ли пользователь по UUID
func (r *UserRepository) Exists(ctx context.Context, uuid string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE uuid = $1)`
	err := r.DB.GetContext(ctx, &exists, query, uuid)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования пользователя", err)
	}
	return exists, nil
}

// ListUsers : вывод списка пользователей с cursor-based пагинацией
func (r *UserRepository) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	query := `
        SELECT uuid, email, password_hash, status, avatar_key, created_at
        FROM users
        WHERE created_at > $1
        ORDER BY created_at ASC, uuid ASC
        LIMIT $2
    `

	var cursorTime time.Time
	var err error

	if cursor == "" {
		cursorTime = time.Time{}
	} else {
		cursorTime, err = time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: неверный формат курсора", apperrors.ErrValidation)
		}
	}

	var users []*model.User
	err = r.DB.SelectContext(ctx, &users, query, cursorTime, limit+1) // +1 для проверки наличия следующей страницы
	if err != nil {
		return nil, "", util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}

	var nextCursor string
	if len(users) > limit {
		users = users[:limit]
		nextCursor = users[len(users)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return users, nextCursor, nil
}
