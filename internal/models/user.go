// Package models содержит доменные структуры сервиса: пользователя и его роль,
// подписку, частичное обновление подписки и результаты аналитики.
package models

import (
	"fmt"
	"time"
)

// Role роль пользователя в системе. Нулевое значение соответствует обычному пользователю,
// поэтому незаполненная роль никогда не даёт прав администратора.
type Role uint8

const (
	// RoleUser обычный пользователь, владелец собственных подписок.
	RoleUser Role = iota
	// RoleAdmin администратор, видит и изменяет все подписки.
	RoleAdmin
)

// ParseRole преобразует строковое представление роли в Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// MarshalText сериализует роль в JSON и кеш строкой.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText разбирает роль из строки.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Actor аутентифицированный участник, от имени которого выполняется операция.
type Actor struct {
	ID       string // UUID пользователя
	Username string
	Role     Role
}

// IsAdmin сообщает, является ли участник администратором.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// User представляет зарегистрированного пользователя системы.
// Хэш пароля в JSON не попадает.
type User struct {
	UUID         string    `json:"uid"`        // Уникальный идентификатор пользователя
	Email        string    `json:"email"`      // Электронная почта, используется для входа
	Username     string    `json:"username"`   // Имя пользователя (уникальное)
	PasswordHash string    `json:"-"`          // Хэш пароля пользователя
	Role         Role      `json:"role"`       // Роль пользователя, admin или user
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
}

// Session пара токенов, выданная при входе или обновлении, и пользователь, которому она принадлежит.
type Session struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

// Actor возвращает участника, соответствующего пользователю.
func (u User) Actor() Actor {
	return Actor{ID: u.UUID, Username: u.Username, Role: u.Role}
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin используется для приёма учётных данных из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyRefresh используется для приёма refresh токена из JSON-запроса.
type DummyRefresh struct {
	Refresh string `json:"refresh" validate:"required"`
}
