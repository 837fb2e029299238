package repository

import (
	"context"
	"fmt"

	"bugtracker/internal/domain/model"
)

// DashboardRepository — агрегирующие read-only запросы для сводки администратора.
type DashboardRepository interface {
	// CountProjects возвращает количество живых проектов.
	CountProjects(ctx context.Context) (int, error)
	// CountBugs возвращает количество живых багов.
	CountBugs(ctx context.Context) (int, error)
	// CountUsers возвращает общее количество пользователей.
	CountUsers(ctx context.Context) (int, error)
	// CountUsersByRole возвращает количество пользователей по каждой роли.
	CountUsersByRole(ctx context.Context) (map[model.Role]int, error)
	// CountBugsByStatus возвращает количество живых багов по статусам.
	CountBugsByStatus(ctx context.Context) (map[model.BugStatus]int, error)
	// CountBugsByPriority возвращает количество живых багов по приоритетам.
	CountBugsByPriority(ctx context.Context) (map[model.BugPriority]int, error)
	// LatestProjects возвращает limit последних созданных живых проектов.
	LatestProjects(ctx context.Context, limit int) ([]*model.ProjectRow, error)
	// LatestBugs возвращает limit последних созданных живых багов.
	LatestBugs(ctx context.Context, limit int) ([]*model.BugRow, error)
}

// dashboardRepo — реализация DashboardRepository.
type dashboardRepo struct {
	db DBTX
}

// NewDashboardRepository создаёт репозиторий сводки.
func NewDashboardRepository(db DBTX) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта: %w", err)
	}
	return n, nil
}

func (r *dashboardRepo) CountProjects(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL`)
}

func (r *dashboardRepo) CountBugs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bugs WHERE deleted_at IS NULL`)
}

func (r *dashboardRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *dashboardRepo) CountUsersByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта пользователей по ролям: %w", err)
	}
	defer rows.Close()

	result := make(map[model.Role]int)
	for rows.Next() {
		var role model.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		result[role] = n
	}
	return result, rows.Err()
}

func (r *dashboardRepo) CountBugsByStatus(ctx context.Context) (map[model.BugStatus]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM bugs WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта багов по статусам: %w", err)
	}
	defer rows.Close()

	result := make(map[model.BugStatus]int)
	for rows.Next() {
		var status model.BugStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		result[status] = n
	}
	return result, rows.Err()
}

func (r *dashboardRepo) CountBugsByPriority(ctx context.Context) (map[model.BugPriority]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT priority, COUNT(*) FROM bugs WHERE deleted_at IS NULL GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта багов по приоритетам: %w", err)
	}
	defer rows.Close()

	result := make(map[model.BugPriority]int)
	for rows.Next() {
		var priority model.BugPriority
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		result[priority] = n
	}
	return result, rows.Err()
}

func (r *dashboardRepo) LatestProjects(ctx context.Context, limit int) ([]*model.ProjectRow, error) {
	query := `
		SELECT p.id, p.name, p.description, p.status,
			p.assigned_to, dev_user.name,
			p.created_by, creator_user.name,
			p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN users dev_user ON dev_user.id = p.assigned_to
		LEFT JOIN users creator_user ON creator_user.id = p.created_by
		WHERE p.deleted_at IS NULL
		ORDER BY p.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения последних проектов: %w", err)
	}
	defer rows.Close()

	var result []*model.ProjectRow
	for rows.Next() {
		p := &model.ProjectRow{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Status,
			&p.AssignedToID, &p.AssignedToName,
			&p.CreatedByID, &p.CreatedByName,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования проекта: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *dashboardRepo) LatestBugs(ctx context.Context, limit int) ([]*model.BugRow, error) {
	query := bugRowSelect + `
		WHERE b.deleted_at IS NULL
		ORDER BY b.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения последних багов: %w", err)
	}
	defer rows.Close()

	var result []*model.BugRow
	for rows.Next() {
		b := &model.BugRow{}
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Description, &b.Priority, &b.Status, &b.DueDate,
			&b.ProjectID, &b.ProjectName,
			&b.AssignedToID, &b.AssignedToName,
			&b.CreatedByID, &b.CreatedByName,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования бага: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
