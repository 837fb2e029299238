// project.go — сервис жизненного цикла проектов.
// Создание, частичное обновление, переходы статуса TODO → DOING → DONE,
// мягкое удаление и выборки с учётом роли вызывающего.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bugtracker/internal/domain/model"
	"bugtracker/internal/domain/workflow"
	"bugtracker/internal/repository"
)

// ProjectService — сервис проектов.
type ProjectService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(store repository.Store, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger.With(slog.String("component", "project_service")),
	}
}

// checkAssigneeIsDeveloper проверяет, что назначаемый пользователь
// существует и имеет роль DEVELOPER.
func checkAssigneeIsDeveloper(ctx context.Context, users repository.UserRepository, id int) error {
	assignee, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: назначаемый пользователь не найден", ErrValidation)
		}
		return fmt.Errorf("проверка назначаемого пользователя: %w", err)
	}
	if assignee.Role != model.RoleDeveloper {
		return fmt.Errorf("%w: назначать можно только разработчика", ErrValidation)
	}
	return nil
}

// CreateProjectInput — данные создания проекта.
type CreateProjectInput struct {
	Name        string
	Description *string
	AssignedTo  *int
}

// Create создаёт проект со статусом TODO.
// Доступно администратору и тестировщику; назначенный пользователь
// обязан быть разработчиком.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput, actor Actor) (*model.Project, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleTester {
		return nil, fmt.Errorf("%w: создавать проекты могут администратор и тестировщик", ErrForbidden)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: название проекта обязательно", ErrValidation)
	}
	if in.AssignedTo == nil {
		return nil, fmt.Errorf("%w: назначенный разработчик обязателен", ErrValidation)
	}

	p := &model.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      model.StatusTodo,
		CreatedBy:   actor.ID,
		AssignedTo:  *in.AssignedTo,
	}

	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		if err := checkAssigneeIsDeveloper(ctx, tx.Users(), *in.AssignedTo); err != nil {
			return err
		}
		return tx.Projects().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Проект создан",
		slog.Int("project_id", p.ID),
		slog.Int("assigned_to", p.AssignedTo),
	)
	return p, nil
}

// UpdateProjectInput — частичное обновление проекта.
// nil-поле означает «оставить существующее значение».
type UpdateProjectInput struct {
	Name        *string
	Description *string
	AssignedTo  *int
}

// UpdateDetails обновляет название, описание и назначенного разработчика.
// Тестировщик может править только собственные проекты, разработчику
// операция запрещена.
func (s *ProjectService) UpdateDetails(ctx context.Context, id int, in UpdateProjectInput, actor Actor) (*model.Project, error) {
	var p *model.Project
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		p, err = tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch actor.Role {
		case model.RoleDeveloper:
			return fmt.Errorf("%w: разработчик не может править проект", ErrForbidden)
		case model.RoleTester:
			if p.CreatedBy != actor.ID {
				return fmt.Errorf("%w: править можно только собственные проекты", ErrForbidden)
			}
		}

		if in.AssignedTo != nil {
			if err := checkAssigneeIsDeveloper(ctx, tx.Users(), *in.AssignedTo); err != nil {
				return err
			}
			p.AssignedTo = *in.AssignedTo
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = in.Description
		}

		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: проект не найден", ErrNotFound)
		}
		return nil, err
	}

	s.logger.Info("Проект обновлён", slog.Int("project_id", id))
	return p, nil
}

// UpdateStatus переводит проект в следующий статус.
// Переход выполняет только назначенный разработчик, строго по цепочке
// TODO → DOING → DONE.
func (s *ProjectService) UpdateStatus(ctx context.Context, id int, status string, actor Actor) (*model.Project, error) {
	var p *model.Project
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		p, err = tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if actor.Role != model.RoleDeveloper {
			return fmt.Errorf("%w: статус проекта меняет только разработчик", ErrForbidden)
		}
		if p.AssignedTo != actor.ID {
			return fmt.Errorf("%w: статус меняет только назначенный разработчик", ErrForbidden)
		}

		next, err := model.ParseProjectStatus(status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err := workflow.CheckProjectTransition(p.Status, next); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		if err := tx.Projects().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		p.Status = next
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: проект не найден", ErrNotFound)
		}
		return nil, err
	}

	s.logger.Info("Статус проекта изменён",
		slog.Int("project_id", id),
		slog.String("status", string(p.Status)),
	)
	return p, nil
}

// GetByID возвращает проект. Тестировщик видит только собственные,
// разработчик — только назначенные ему, администратор — любые.
func (s *ProjectService) GetByID(ctx context.Context, id int, actor Actor) (*model.Project, error) {
	p, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: проект не найден", ErrNotFound)
		}
		return nil, fmt.Errorf("получение проекта: %w", err)
	}

	switch actor.Role {
	case model.RoleTester:
		if p.CreatedBy != actor.ID {
			return nil, fmt.Errorf("%w: просмотр чужого проекта запрещён", ErrForbidden)
		}
	case model.RoleDeveloper:
		if p.AssignedTo != actor.ID {
			return nil, fmt.Errorf("%w: просмотр чужого проекта запрещён", ErrForbidden)
		}
	}

	return p, nil
}

// Delete мягко удаляет проект. Доступно только администратору;
// отсутствующий или уже удалённый проект — NotFound.
func (s *ProjectService) Delete(ctx context.Context, id int, actor Actor) error {
	if actor.Role != model.RoleAdmin {
		return fmt.Errorf("%w: удалять проекты может только администратор", ErrForbidden)
	}

	if err := s.store.Projects().SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: проект не найден", ErrNotFound)
		}
		return fmt.Errorf("удаление проекта: %w", err)
	}

	s.logger.Info("Проект удалён", slog.Int("project_id", id))
	return nil
}

// List возвращает проекты вызывающего: тестировщик — созданные им,
// разработчик — назначенные ему, администратор — все.
func (s *ProjectService) List(ctx context.Context, actor Actor) ([]*model.ProjectRow, error) {
	filter := repository.ProjectFilter{}
	switch actor.Role {
	case model.RoleTester:
		filter.CreatedBy = &actor.ID
	case model.RoleDeveloper:
		filter.AssignedTo = &actor.ID
	}

	projects, err := s.store.Projects().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение списка проектов: %w", err)
	}
	return projects, nil
}

// ListRefs возвращает минимальные записи {id, name} всех проектов для
// выбора при создании бага. Доступно только тестировщику.
func (s *ProjectService) ListRefs(ctx context.Context, actor Actor) ([]*model.ProjectRef, error) {
	if actor.Role != model.RoleTester {
		return nil, fmt.Errorf("%w: список доступен только тестировщику", ErrForbidden)
	}

	refs, err := s.store.Projects().ListRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка проектов: %w", err)
	}
	return refs, nil
}
