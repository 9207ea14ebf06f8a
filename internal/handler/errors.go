package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model/requestresponse"
)

// writeError : единственное место, где ошибки сервисов превращаются в HTTP-статусы.
// Ошибки аутентификации отдаются с одинаковым общим текстом, внутренние ошибки
// логируются целиком на сервере и наружу не протекают.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		sendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		sendErrorResponse(w, http.StatusConflict, "email уже зарегистрирован")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		sendErrorResponse(w, http.StatusUnauthorized, "неверный логин или пароль")
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrUnauthorized):
		sendErrorResponse(w, http.StatusUnauthorized, "невалидный токен")
	case errors.Is(err, apperrors.ErrForbidden):
		sendErrorResponse(w, http.StatusForbidden, "доступ запрещён")
	case errors.Is(err, apperrors.ErrNotFound):
		sendErrorResponse(w, http.StatusNotFound, "не найдено")
	default:
		log.Printf("внутренняя ошибка: %v", err)
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}

// statusForError : тот же маппинг для HEAD-запросов, без тела
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON обрабатывает декодирование JSON и возвращает ответ об ошибке, если декодирование не удалось.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(400)
		json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
			Error: requestresponse.ErrorDetail{
				Code: 400,
				Text: "invalid request body",
			},
		})
		return err
	}
	return nil
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}
