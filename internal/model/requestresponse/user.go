package requestresponse

import "accounts-web-server/internal/model"

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"for example: invalid login or password"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// UserResponse : успешный ответ с данными пользователя
type UserResponse struct {
	Data struct {
		UUID      string `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
		Email     string `json:"email" example:"user@example.com"`
		Status    string `json:"status" example:"active"`
		CreatedAt string `json:"created_at" example:"2025-01-01T00:00:00Z"`
	} `json:"data"`
}

// UpdateUserRequest : тело запроса на обновление пользователя
type UpdateUserRequest struct {
	Email string `json:"email" example:"newmail@example.com"`
}

// UpdateUserResponse : успешный ответ
type UpdateUserResponse struct {
	Response struct {
		Email string `json:"email" example:"newmail@example.com"`
	} `json:"response"`
}

// UpdatePasswordRequest : тело запроса, старый пароль обязателен
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" example:"P@ssw0rd123"`
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd!"`
}

// UpdatePasswordResponse : успешный ответ
type UpdatePasswordResponse struct {
	Response struct {
		Updated bool `json:"updated" example:"true"`
	} `json:"response"`
}

// ListUsersResponse : успешный ответ
type ListUsersResponse struct {
	Data struct {
		Users      []*model.User `json:"users"`
		NextCursor string        `json:"next_cursor,omitempty"`
	} `json:"data"`
}

// AvatarURLResponse : presigned-ссылка на аватар
type AvatarURLResponse struct {
	Response struct {
		URL string `json:"url" example:"https://s3.example.com/avatars/..."`
	} `json:"response"`
}

// HealthResponse : ответ liveness-проверки
type HealthResponse struct {
	Status string            `json:"status" example:"healthy"`
	Checks map[string]string `json:"checks"`
}
