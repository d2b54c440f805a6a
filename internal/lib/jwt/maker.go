// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Токен подписывается HS256 и несёт UUID, имя и роль пользователя; по ним
// middleware восстанавливает участника запроса без обращения к базе.
// Пара выдаётся из короткоживущего access и долгоживущего refresh токена,
// тип токена хранится в claim token_type.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается, если подпись или claims токена некорректны.
var ErrInvalidToken = errors.New("invalid token")

// Типы токенов в паре.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"uid"`      // UUID пользователя
	Username             string `json:"username"` // Имя пользователя
	Role                 string `json:"role"`     // Роль пользователя
	TokenType            string `json:"token_type"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(userUID, username, role string) (string, error)
	GenerateRefreshToken(userUID, username, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
	ParseRefreshToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа и времени жизни токена.
type MakerImpl struct {
	secretKey  string
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа
// и времени жизни access и refresh токенов.
func NewJWTMaker(secretKey string, ttl, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   ttl,
		refreshTTL: refreshTTL,
	}
}

// GenerateToken создает access токен пользователя, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(userUID, username, role string) (string, error) {
	const op = "jwt.GenerateToken"
	return j.sign(op, userUID, username, role, TokenTypeAccess, j.tokenTTL)
}

// GenerateRefreshToken создает refresh токен, по которому выдаётся новая пара.
func (j *MakerImpl) GenerateRefreshToken(userUID, username, role string) (string, error) {
	const op = "jwt.GenerateRefreshToken"
	return j.sign(op, userUID, username, role, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) sign(op, userUID, username, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserUID:   userUID,
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит access токен, проверяет подпись, алгоритм и срок действия.
// Refresh токен здесь не принимается.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	return j.parse(op, tokenStr, TokenTypeAccess)
}

// ParseRefreshToken парсит refresh токен.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseRefreshToken"
	return j.parse(op, tokenStr, TokenTypeRefresh)
}

func (j *MakerImpl) parse(op, tokenStr, tokenType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserUID == "" || claims.TokenType != tokenType {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
