// bug.go — сервис жизненного цикла багов.
// Создание тестировщиком, частичное обновление, переходы статуса по
// таблице (роль, откуда, куда), мягкое удаление и выборки с учётом роли.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bugtracker/internal/domain/model"
	"bugtracker/internal/domain/workflow"
	"bugtracker/internal/repository"
)

// BugService — сервис багов.
type BugService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewBugService создаёт сервис багов.
func NewBugService(store repository.Store, logger *slog.Logger) *BugService {
	return &BugService{
		store:  store,
		logger: logger.With(slog.String("component", "bug_service")),
	}
}

// dueDateFormats — принимаемые форматы срока исправления.
var dueDateFormats = []string{time.RFC3339, "2006-01-02"}

// parseDueDate разбирает срок исправления.
func parseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("некорректная дата: %q", s)
}

// CreateBugInput — данные создания бага.
type CreateBugInput struct {
	Title       string
	Description string
	Priority    string
	ProjectID   *int
	AssignedTo  *int
	DueDate     string
}

// Create создаёт баг со статусом ASSIGNED. Доступно только тестировщику;
// проект обязан существовать, назначенный пользователь — быть
// разработчиком, срок — не в прошлом.
func (s *BugService) Create(ctx context.Context, in CreateBugInput, actor Actor) (*model.Bug, error) {
	if in.Title == "" || in.Priority == "" || in.ProjectID == nil || in.AssignedTo == nil || in.DueDate == "" {
		return nil, fmt.Errorf("%w: title, priority, projectId, assignedTo и dueDate обязательны", ErrValidation)
	}
	if actor.Role != model.RoleTester {
		return nil, fmt.Errorf("%w: создавать баги может только тестировщик", ErrForbidden)
	}

	priority, err := model.ParseBugPriority(in.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if dueDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: срок исправления не может быть в прошлом", ErrValidation)
	}

	b := &model.Bug{
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   *in.ProjectID,
		CreatedBy:   actor.ID,
		AssignedTo:  *in.AssignedTo,
		Priority:    priority,
		Status:      model.BugAssigned,
		DueDate:     dueDate,
	}

	err = s.store.RunInTx(ctx, func(tx repository.Store) error {
		// Удалённый проект считается отсутствующим
		if _, err := tx.Projects().GetActiveByID(ctx, *in.ProjectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: проект не существует", ErrValidation)
			}
			return fmt.Errorf("проверка проекта: %w", err)
		}
		if err := checkAssigneeIsDeveloper(ctx, tx.Users(), *in.AssignedTo); err != nil {
			return err
		}
		return tx.Bugs().Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Баг создан",
		slog.Int("bug_id", b.ID),
		slog.Int("project_id", b.ProjectID),
		slog.String("priority", string(b.Priority)),
	)
	return b, nil
}

// UpdateBugInput — частичное обновление бага.
// nil-поле означает «оставить существующее значение».
type UpdateBugInput struct {
	Title       *string
	Description *string
	Priority    *string
	AssignedTo  *int
	DueDate     *string
}

// UpdateDetails обновляет поля бага. Тестировщик правит только
// созданные им баги, разработчику операция запрещена. Срок при
// обновлении проверяется только на формат.
func (s *BugService) UpdateDetails(ctx context.Context, id int, in UpdateBugInput, actor Actor) (*model.Bug, error) {
	var b *model.Bug
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		b, err = tx.Bugs().GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch actor.Role {
		case model.RoleDeveloper:
			return fmt.Errorf("%w: разработчик не может править баг", ErrForbidden)
		case model.RoleTester:
			if b.CreatedBy != actor.ID {
				return fmt.Errorf("%w: править можно только собственные баги", ErrForbidden)
			}
		}

		if in.Priority != nil {
			priority, err := model.ParseBugPriority(*in.Priority)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			b.Priority = priority
		}
		if in.AssignedTo != nil {
			if err := checkAssigneeIsDeveloper(ctx, tx.Users(), *in.AssignedTo); err != nil {
				return err
			}
			b.AssignedTo = *in.AssignedTo
		}
		if in.DueDate != nil {
			dueDate, err := parseDueDate(*in.DueDate)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			b.DueDate = dueDate
		}
		if in.Title != nil {
			b.Title = *in.Title
		}
		if in.Description != nil {
			b.Description = *in.Description
		}

		return tx.Bugs().Update(ctx, b)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: баг не найден", ErrNotFound)
		}
		return nil, err
	}

	s.logger.Info("Баг обновлён", slog.Int("bug_id", id))
	return b, nil
}

// UpdateStatus переводит баг в следующий статус по таблице переходов.
// Разработчик ведёт назначенный ему баг до FIXED, тестировщик — созданный
// им баг до CLOSED. Возвращает обогащённое представление бага.
func (s *BugService) UpdateStatus(ctx context.Context, id int, status string, actor Actor) (*model.BugRow, error) {
	var row *model.BugRow
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		b, err := tx.Bugs().GetByID(ctx, id)
		if err != nil {
			return err
		}

		next, err := model.ParseBugStatus(status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		switch actor.Role {
		case model.RoleDeveloper:
			if b.AssignedTo != actor.ID {
				return fmt.Errorf("%w: баг назначен другому разработчику", ErrForbidden)
			}
		case model.RoleTester:
			if b.CreatedBy != actor.ID {
				return fmt.Errorf("%w: баг создан другим тестировщиком", ErrForbidden)
			}
		default:
			return fmt.Errorf("%w: роль %s не участвует в жизненном цикле бага", ErrForbidden, actor.Role)
		}

		if err := workflow.CheckBugTransition(actor.Role, b.Status, next); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		if err := tx.Bugs().UpdateStatus(ctx, id, next); err != nil {
			return err
		}

		row, err = tx.Bugs().GetRowByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: баг не найден", ErrNotFound)
		}
		return nil, err
	}

	s.logger.Info("Статус бага изменён",
		slog.Int("bug_id", id),
		slog.String("status", string(row.Status)),
	)
	return row, nil
}

// GetByID возвращает баг. Тестировщик видит только созданные им,
// разработчик — только назначенные ему, администратор — любые.
func (s *BugService) GetByID(ctx context.Context, id int, actor Actor) (*model.Bug, error) {
	b, err := s.store.Bugs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: баг не найден", ErrNotFound)
		}
		return nil, fmt.Errorf("получение бага: %w", err)
	}

	switch actor.Role {
	case model.RoleTester:
		if b.CreatedBy != actor.ID {
			return nil, fmt.Errorf("%w: просмотр чужого бага запрещён", ErrForbidden)
		}
	case model.RoleDeveloper:
		if b.AssignedTo != actor.ID {
			return nil, fmt.Errorf("%w: просмотр чужого бага запрещён", ErrForbidden)
		}
	}

	return b, nil
}

// Delete мягко удаляет баг. Доступно только администратору;
// отсутствующий или уже удалённый баг — NotFound.
func (s *BugService) Delete(ctx context.Context, id int, actor Actor) error {
	if actor.Role != model.RoleAdmin {
		return fmt.Errorf("%w: удалять баги может только администратор", ErrForbidden)
	}

	if err := s.store.Bugs().SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: баг не найден", ErrNotFound)
		}
		return fmt.Errorf("удаление бага: %w", err)
	}

	s.logger.Info("Баг удалён", slog.Int("bug_id", id))
	return nil
}

// List возвращает баги вызывающего: тестировщик — созданные им,
// разработчик — назначенные ему, администратор — все.
func (s *BugService) List(ctx context.Context, actor Actor) ([]*model.BugRow, error) {
	filter := repository.BugFilter{}
	switch actor.Role {
	case model.RoleTester:
		filter.CreatedBy = &actor.ID
	case model.RoleDeveloper:
		filter.AssignedTo = &actor.ID
	}

	bugs, err := s.store.Bugs().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение списка багов: %w", err)
	}
	return bugs, nil
}
