package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bugtracker/internal/domain/model"
)

// Claims — полезная нагрузка сессионного токена.
// Переносит идентификатор, email, роль и статус учётной записи.
type Claims struct {
	// UserID — идентификатор пользователя
	UserID int `json:"id"`
	// Email — адрес электронной почты
	Email string `json:"email"`
	// Role — роль на момент выпуска токена
	Role model.Role `json:"role"`
	// Status — статус учётной записи на момент выпуска токена
	Status model.UserStatus `json:"status"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет подписанные токены (HS256).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт TokenManager с секретом и сроком действия токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает подписанный токен для пользователя.
func (m *TokenManager) Issue(u *model.User) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия токена, возвращает claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("проверка токена: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("невалидный токен")
	}

	return claims, nil
}
