// user.go — сервис администрирования пользователей.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bugtracker/internal/domain/model"
	"bugtracker/internal/repository"
)

// UserService — сервис управления пользователями.
type UserService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает всех пользователей, новые — первыми.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка пользователей: %w", err)
	}
	return users, nil
}

// GetByID возвращает пользователя по идентификатору.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// UpdateUserInput — частичное обновление пользователя.
// nil-поле означает «оставить существующее значение».
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *string
}

// Update обновляет имя, email и роль пользователя.
// Администратор не может сменить собственную роль на отличную от ADMIN.
func (s *UserService) Update(ctx context.Context, id int, in UpdateUserInput, actor Actor) (*model.User, error) {
	var role *model.Role
	if in.Role != nil {
		r, err := model.ParseRole(*in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if id == actor.ID && r != model.RoleAdmin {
			return nil, fmt.Errorf("%w: нельзя снять с себя роль администратора", ErrValidation)
		}
		role = &r
	}

	var u *model.User
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		u, err = tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if role != nil {
			u.Role = *role
		}

		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: email уже занят", ErrConflict)
		}
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}

	s.logger.Info("Пользователь обновлён", slog.Int("user_id", id))
	return u, nil
}

// ToggleStatus переключает статус учётной записи ACTIVE ↔ INACTIVE.
// Администратор не может отключить собственную учётную запись.
func (s *UserService) ToggleStatus(ctx context.Context, id int, actor Actor) (*model.User, error) {
	if id == actor.ID {
		return nil, fmt.Errorf("%w: нельзя отключить собственную учётную запись", ErrValidation)
	}

	var u *model.User
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		u, err = tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}

		u.Status = u.Status.Toggle()
		return tx.Users().UpdateStatus(ctx, u.ID, u.Status)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return nil, fmt.Errorf("переключение статуса пользователя: %w", err)
	}

	s.logger.Info("Статус пользователя переключён",
		slog.Int("user_id", id),
		slog.String("status", string(u.Status)),
	)
	return u, nil
}

// ListDevelopers возвращает краткие записи разработчиков для выбора
// при назначении. Доступно администратору и тестировщику.
func (s *UserService) ListDevelopers(ctx context.Context, actor Actor) ([]*model.UserSummary, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleTester {
		return nil, fmt.Errorf("%w: список разработчиков доступен администратору и тестировщику", ErrForbidden)
	}

	devs, err := s.store.Users().ListByRole(ctx, model.RoleDeveloper)
	if err != nil {
		return nil, fmt.Errorf("получение списка разработчиков: %w", err)
	}
	return devs, nil
}
