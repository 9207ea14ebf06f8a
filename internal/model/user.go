package model

import (
	"database/sql"
	"time"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	UUID         string         `db:"uuid" json:"uuid"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Status       string         `db:"status" json:"status"`
	AvatarKey    sql.NullString `db:"avatar_key" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// IsActive : деактивированные пользователи не могут авторизоваться и обновлять токены
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
