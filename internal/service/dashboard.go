// dashboard.go — сервис сводки для администратора: счётчики
// пользователей, проектов и багов, разбивки по статусам и приоритетам,
// последние созданные записи.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"bugtracker/internal/domain/model"
	"bugtracker/internal/repository"
)

// latestLimit — сколько последних проектов и багов попадает в сводку.
const latestLimit = 5

// DashboardService — сервис сводки.
type DashboardService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewDashboardService создаёт сервис сводки.
func NewDashboardService(store repository.Store, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// DashboardSummary — сводка для администратора.
type DashboardSummary struct {
	TotalProjects   int                       `json:"totalProjects"`
	TotalBugs       int                       `json:"totalBugs"`
	TotalUsers      int                       `json:"totalUsers"`
	TotalAdmins     int                       `json:"totalAdmins"`
	TotalTesters    int                       `json:"totalTesters"`
	TotalDevelopers int                       `json:"totalDevelopers"`
	BugsByStatus    map[model.BugStatus]int   `json:"bugsByStatus"`
	BugsByPriority  map[model.BugPriority]int `json:"bugsByPriority"`
	LatestProjects  []*model.ProjectRow       `json:"latestProjects"`
	LatestBugs      []*model.BugRow           `json:"latestBugs"`
}

// Summary собирает сводку. Доступно только администратору.
func (s *DashboardService) Summary(ctx context.Context, actor Actor) (*DashboardSummary, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: сводка доступна только администратору", ErrForbidden)
	}

	result := &DashboardSummary{
		// Нулевые значения для всех статусов и приоритетов, чтобы
		// разбивки были полными даже при пустой базе.
		BugsByStatus: map[model.BugStatus]int{
			model.BugAssigned: 0, model.BugInProgress: 0, model.BugFixed: 0,
			model.BugTesting: 0, model.BugClosed: 0,
		},
		BugsByPriority: map[model.BugPriority]int{
			model.PriorityLow: 0, model.PriorityMedium: 0,
			model.PriorityHigh: 0, model.PriorityCritical: 0,
		},
		LatestProjects: []*model.ProjectRow{},
		LatestBugs:     []*model.BugRow{},
	}

	var err error
	if result.TotalProjects, err = s.store.Dashboard().CountProjects(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт проектов: %w", err)
	}
	if result.TotalBugs, err = s.store.Dashboard().CountBugs(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт багов: %w", err)
	}
	if result.TotalUsers, err = s.store.Dashboard().CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("подсчёт пользователей: %w", err)
	}

	byRole, err := s.store.Dashboard().CountUsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт пользователей по ролям: %w", err)
	}
	result.TotalAdmins = byRole[model.RoleAdmin]
	result.TotalTesters = byRole[model.RoleTester]
	result.TotalDevelopers = byRole[model.RoleDeveloper]

	byStatus, err := s.store.Dashboard().CountBugsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт багов по статусам: %w", err)
	}
	for status, n := range byStatus {
		result.BugsByStatus[status] = n
	}

	byPriority, err := s.store.Dashboard().CountBugsByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт багов по приоритетам: %w", err)
	}
	for priority, n := range byPriority {
		result.BugsByPriority[priority] = n
	}

	if projects, err := s.store.Dashboard().LatestProjects(ctx, latestLimit); err != nil {
		return nil, fmt.Errorf("последние проекты: %w", err)
	} else if projects != nil {
		result.LatestProjects = projects
	}
	if bugs, err := s.store.Dashboard().LatestBugs(ctx, latestLimit); err != nil {
		return nil, fmt.Errorf("последние баги: %w", err)
	} else if bugs != nil {
		result.LatestBugs = bugs
	}

	return result, nil
}
