// Package apperrors содержит единую таксономию ошибок сервиса.
// Ошибки оборачиваются через fmt.Errorf("...: %w", err) и проверяются
// errors.Is на границе HTTP, а не сравнением текста.
package apperrors

import "errors"

var (
	// ErrValidation : некорректные входные данные (форма запроса, слабый пароль)
	ErrValidation = errors.New("ошибка валидации")

	// ErrInvalidCredentials : неверная пара логин/пароль.
	// Текст один для несуществующего email и неверного пароля.
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	// ErrTokenInvalid : токен не прошёл проверку подписи, типа или субъекта
	ErrTokenInvalid = errors.New("невалидный токен")

	// ErrTokenExpired : срок действия токена истёк
	ErrTokenExpired = errors.New("срок действия токена истёк")

	// ErrTokenRevoked : refresh-токен отозван (logout или ротация)
	ErrTokenRevoked = errors.New("токен отозван")

	// ErrDuplicateEmail : email уже зарегистрирован
	ErrDuplicateEmail = errors.New("email уже зарегистрирован")

	// ErrNotFound : запись не найдена
	ErrNotFound = errors.New("не найдено")

	// ErrUserInactive : пользователь деактивирован
	ErrUserInactive = errors.New("пользователь деактивирован")

	// ErrForbidden : доступ к чужому ресурсу
	ErrForbidden = errors.New("доступ запрещён")

	// ErrUnauthorized : запрос без валидного access-токена
	ErrUnauthorized = errors.New("пользователь не авторизован")
)
