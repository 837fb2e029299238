package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"bugtracker/internal/domain/model"
)

// ProjectFilter — фильтры выборки проектов.
// nil-поле означает отсутствие фильтра.
type ProjectFilter struct {
	// CreatedBy — только проекты, созданные этим пользователем.
	CreatedBy *int
	// AssignedTo — только проекты, назначенные этому пользователю.
	AssignedTo *int
}

// ProjectRepository — интерфейс доступа к таблице projects.
type ProjectRepository interface {
	// Create создаёт новый проект.
	Create(ctx context.Context, p *model.Project) error
	// GetByID возвращает проект по идентификатору, включая мягко удалённые.
	GetByID(ctx context.Context, id int) (*model.Project, error)
	// GetActiveByID возвращает проект по идентификатору, мягко удалённые
	// считаются отсутствующими.
	GetActiveByID(ctx context.Context, id int) (*model.Project, error)
	// Update обновляет название, описание и назначенного разработчика.
	Update(ctx context.Context, p *model.Project) error
	// UpdateStatus обновляет статус проекта.
	UpdateStatus(ctx context.Context, id int, status model.ProjectStatus) error
	// SoftDelete помечает проект удалённым (deleted_at).
	SoftDelete(ctx context.Context, id int) error
	// List возвращает живые проекты с именами разработчика и создателя.
	List(ctx context.Context, filter ProjectFilter) ([]*model.ProjectRow, error)
	// ListRefs возвращает минимальные записи {id, name} всех живых проектов.
	ListRefs(ctx context.Context) ([]*model.ProjectRef, error)
}

// projectRepo — реализация ProjectRepository.
type projectRepo struct {
	db DBTX
}

// NewProjectRepository создаёт репозиторий проектов.
func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepo{db: db}
}

// scanProject сканирует строку результата в модель Project.
func scanProject(row pgx.Row) (*model.Project, error) {
	p := &model.Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.CreatedBy, &p.AssignedTo,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	return p, err
}

const projectColumns = `id, name, description, status, created_by, assigned_to,
	created_at, updated_at, deleted_at`

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (name, description, status, created_by, assigned_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.Status, p.CreatedBy, p.AssignedTo,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания проекта: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id int) (*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения проекта: %w", err)
	}
	return p, nil
}

func (r *projectRepo) GetActiveByID(ctx context.Context, id int) (*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 AND deleted_at IS NULL`, projectColumns)
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения проекта: %w", err)
	}
	return p, nil
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, assigned_to = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.AssignedTo).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления проекта: %w", err)
	}
	return nil
}

func (r *projectRepo) UpdateStatus(ctx context.Context, id int, status model.ProjectStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) SoftDelete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) List(ctx context.Context, filter ProjectFilter) ([]*model.ProjectRow, error) {
	// Таблица users присоединяется дважды: отдельно для назначенного
	// разработчика и для создателя проекта.
	conditions := []string{"p.deleted_at IS NULL"}
	var args []any
	argNum := 1

	if filter.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_by = $%d", argNum))
		args = append(args, *filter.CreatedBy)
		argNum++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("p.assigned_to = $%d", argNum))
		args = append(args, *filter.AssignedTo)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.description, p.status,
			p.assigned_to, dev_user.name,
			p.created_by, creator_user.name,
			p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN users dev_user ON dev_user.id = p.assigned_to
		LEFT JOIN users creator_user ON creator_user.id = p.created_by
		WHERE %s
		ORDER BY p.created_at DESC`, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка проектов: %w", err)
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

func (r *projectRepo) ListRefs(ctx context.Context) ([]*model.ProjectRef, error) {
	query := `
		SELECT id, name
		FROM projects
		WHERE deleted_at IS NULL
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка проектов: %w", err)
	}
	defer rows.Close()

	var result []*model.ProjectRef
	for rows.Next() {
		ref := &model.ProjectRef{}
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования проекта: %w", err)
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}
