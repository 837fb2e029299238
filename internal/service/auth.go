// auth.go — сервис аутентификации: вход по email/паролю и
// регистрация новых пользователей администратором.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bugtracker/internal/auth"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/repository"
)

// AuthService — сервис аутентификации.
type AuthService struct {
	store  repository.Store
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(store repository.Store, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет учётные данные и выдаёт подписанный токен.
// Неизвестный email — ErrNotFound, неверный пароль — ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.UserSummary, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email и пароль обязательны", ErrValidation)
	}

	u, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: пользователь с email %s не найден", ErrNotFound, email)
		}
		return "", nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !auth.CheckPassword(password, u.Password) {
		return "", nil, fmt.Errorf("%w: неверный пароль", ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Пользователь вошёл в систему",
		slog.Int("user_id", u.ID),
		slog.String("role", string(u.Role)),
	)

	summary := u.Summary()
	return token, &summary, nil
}

// RegisterInput — данные регистрации нового пользователя.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register создаёт нового пользователя. Доступно только администратору;
// регистрировать можно только разработчиков и тестировщиков.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, actor Actor) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: регистрация доступна только администратору", ErrForbidden)
	}
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: name, email, password и role обязательны", ErrValidation)
	}

	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if role == model.RoleAdmin {
		return nil, fmt.Errorf("%w: регистрация администраторов запрещена", ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     role,
		Status:   model.StatusActive,
	}

	err = s.store.RunInTx(ctx, func(tx repository.Store) error {
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: пользователь с email %s уже существует", ErrConflict, in.Email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	s.logger.Info("Зарегистрирован новый пользователь",
		slog.Int("user_id", u.ID),
		slog.String("role", string(u.Role)),
	)

	return u, nil
}
