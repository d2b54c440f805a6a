package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound подписка с указанным ID не существует.
	ErrNotFound = errors.New("subscription not found")
	// ErrPermissionDenied участник не проходит проверку прав доступа.
	ErrPermissionDenied = errors.New("permission denied")
)

// FieldError описывает ошибку в одном поле запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError возвращается, если поля запроса некорректны. Значения не приводятся
// к допустимым молча: каждое нарушение попадает в Errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, "field "+fe.Field+" "+fe.Message)
	}
	return strings.Join(msgs, ", ")
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Errors: f}
}
