package models

import (
	"bytes"
	"encoding/json"
)

// Field поле частичного обновления. Отличает отсутствующий ключ от явного null:
// Set выставляется при любом значении ключа, включая null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// NewField возвращает присланное непустое значение.
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// NullField возвращает поле, присланное как null.
func NullField[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present сообщает, что пришло значение, отличное от null.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// UnmarshalJSON вызывается только для присутствующего ключа.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

// MarshalJSON сериализует значение или null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
