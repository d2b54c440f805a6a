// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	services "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Fields: ошибки по отдельным полям запроса (опционально).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string                `json:"status"`
	Error  string                `json:"error,omitempty"`
	Fields []services.FieldError `json:"fields,omitempty"`
	Data   any                   `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var (
		errsMsgs []string
		fields   []services.FieldError
	)

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = "is a required field"
		case "email":
			msg = "must be a valid email"
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", err.Param())
		case "min":
			msg = fmt.Sprintf("must be at least %s characters", err.Param())
		case "oneof":
			msg = fmt.Sprintf("must be one of %s", strings.ReplaceAll(err.Param(), " ", ", "))
		default:
			msg = "is not valid"
		}
		errsMsgs = append(errsMsgs, fmt.Sprintf("field %s %s", err.Field(), msg))
		fields = append(fields, services.FieldError{Field: err.Field(), Message: msg})
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Fields: fields,
	}
}

// FromServiceError подбирает HTTP-статус и тело ответа для ошибки сервиса подписок.
// Неизвестные ошибки не раскрываются клиенту.
func FromServiceError(err error) (int, Response) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden, Error("permission denied")
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, Error("subscription not found")
	case errors.As(err, &vErr):
		return http.StatusBadRequest, Response{
			Status: StatusError,
			Error:  vErr.Error(),
			Fields: vErr.Errors,
		}
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}
