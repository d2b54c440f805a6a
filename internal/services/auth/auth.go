// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/password"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

var (
	// ErrInvalidCredentials неверная почта или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists пользователь с такой почтой или именем уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken refresh токен недействителен или пользователь удалён.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPermissionDenied операция доступна только администратору.
	ErrPermissionDenied = errors.New("permission denied")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по почте или repository.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по UUID или repository.ErrUserNotFound.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)

	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user".
// Назначить роль при регистрации нельзя.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	return s.register(ctx, email, username, rawPassword, models.RoleUser)
}

// Login проверяет пароль пользователя и выдаёт пару access/refresh токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.Session, error) {
	const op = "services.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	session, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// Refresh выдаёт новую пару токенов по refresh токену. Роль и имя берутся из базы,
// поэтому изменения учётной записи попадают в новый access токен.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	const op = "services.Refresh"
	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	session, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// ListUsers возвращает всех пользователей. Доступно только администратору.
func (s *AuthService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	const op = "services.ListUsers"
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *AuthService) issue(user *models.User) (*models.Session, error) {
	access, err := s.jwtMaker.GenerateToken(user.UUID, user.Username, user.Role.String())
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.UUID, user.Username, user.Role.String())
	if err != nil {
		return nil, err
	}
	return &models.Session{Access: access, Refresh: refresh, User: user}, nil
}

// ValidateToken проверяет JWT и возвращает участника, от имени которого выполняется запрос.
func (s *AuthService) ValidateToken(_ context.Context, token string) (models.Actor, error) {
	const op = "services.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Actor{
		ID:       claims.UserUID,
		Username: claims.Username,
		Role:     role,
	}, nil
}

// EnsureAdmin создает учётную запись администратора, если пользователя с такой почтой нет.
// Повторный вызов ничего не меняет. Возвращает true, если запись была создана.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, rawPassword string) (bool, error) {
	const op = "services.EnsureAdmin"
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.register(ctx, email, username, rawPassword, models.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *AuthService) register(ctx context.Context, email, username, rawPassword string, role models.Role) (string, error) {
	const op = "services.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if errors.Is(err, repository.ErrUserExists) {
		return "", ErrUserExists
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}
