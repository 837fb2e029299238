package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"bugtracker/internal/domain/model"
)

// BugFilter — фильтры выборки багов.
// nil-поле означает отсутствие фильтра.
type BugFilter struct {
	// CreatedBy — только баги, созданные этим пользователем.
	CreatedBy *int
	// AssignedTo — только баги, назначенные этому пользователю.
	AssignedTo *int
}

// BugRepository — интерфейс доступа к таблице bugs.
type BugRepository interface {
	// Create создаёт новый баг.
	Create(ctx context.Context, b *model.Bug) error
	// GetByID возвращает баг по идентификатору, включая мягко удалённые.
	GetByID(ctx context.Context, id int) (*model.Bug, error)
	// GetRowByID возвращает баг с названием проекта и именами
	// разработчика и создателя.
	GetRowByID(ctx context.Context, id int) (*model.BugRow, error)
	// Update обновляет поля бага.
	Update(ctx context.Context, b *model.Bug) error
	// UpdateStatus обновляет статус бага.
	UpdateStatus(ctx context.Context, id int, status model.BugStatus) error
	// SoftDelete помечает баг удалённым (deleted_at).
	SoftDelete(ctx context.Context, id int) error
	// List возвращает живые баги с названием проекта и именами
	// разработчика и создателя.
	List(ctx context.Context, filter BugFilter) ([]*model.BugRow, error)
}

// bugRepo — реализация BugRepository.
type bugRepo struct {
	db DBTX
}

// NewBugRepository создаёт репозиторий багов.
func NewBugRepository(db DBTX) BugRepository {
	return &bugRepo{db: db}
}

// scanBug сканирует строку результата в модель Bug.
func scanBug(row pgx.Row) (*model.Bug, error) {
	b := &model.Bug{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.ProjectID, &b.CreatedBy, &b.AssignedTo,
		&b.Priority, &b.Status, &b.DueDate,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	)
	return b, err
}

const bugColumns = `id, title, description, project_id, created_by, assigned_to,
	priority, status, due_date, created_at, updated_at, deleted_at`

// bugRowSelect — обогащённая выборка: users присоединяется дважды,
// для назначенного разработчика и для создателя, projects — для названия.
const bugRowSelect = `
	SELECT b.id, b.title, b.description, b.priority, b.status, b.due_date,
		b.project_id, p.name,
		b.assigned_to, dev_user.name,
		b.created_by, creator_user.name,
		b.created_at, b.updated_at
	FROM bugs b
	LEFT JOIN projects p ON p.id = b.project_id
	LEFT JOIN users dev_user ON dev_user.id = b.assigned_to
	LEFT JOIN users creator_user ON creator_user.id = b.created_by`

// scanBugRow сканирует строку обогащённой выборки.
func scanBugRow(row pgx.Row) (*model.BugRow, error) {
	b := &model.BugRow{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.Priority, &b.Status, &b.DueDate,
		&b.ProjectID, &b.ProjectName,
		&b.AssignedToID, &b.AssignedToName,
		&b.CreatedByID, &b.CreatedByName,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *bugRepo) Create(ctx context.Context, b *model.Bug) error {
	query := `
		INSERT INTO bugs (title, description, project_id, created_by, assigned_to,
			priority, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		b.Title, b.Description, b.ProjectID, b.CreatedBy, b.AssignedTo,
		b.Priority, b.Status, b.DueDate,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания бага: %w", err)
	}
	return nil
}

func (r *bugRepo) GetByID(ctx context.Context, id int) (*model.Bug, error) {
	query := fmt.Sprintf(`SELECT %s FROM bugs WHERE id = $1`, bugColumns)
	b, err := scanBug(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения бага: %w", err)
	}
	return b, nil
}

func (r *bugRepo) GetRowByID(ctx context.Context, id int) (*model.BugRow, error) {
	query := bugRowSelect + ` WHERE b.id = $1`
	b, err := scanBugRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения бага: %w", err)
	}
	return b, nil
}

func (r *bugRepo) Update(ctx context.Context, b *model.Bug) error {
	query := `
		UPDATE bugs
		SET title = $2, description = $3, priority = $4, assigned_to = $5,
			due_date = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.Title, b.Description, b.Priority, b.AssignedTo, b.DueDate,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления бага: %w", err)
	}
	return nil
}

func (r *bugRepo) UpdateStatus(ctx context.Context, id int, status model.BugStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bugs SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса бага: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bugRepo) SoftDelete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bugs SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления бага: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bugRepo) List(ctx context.Context, filter BugFilter) ([]*model.BugRow, error) {
	conditions := []string{"b.deleted_at IS NULL"}
	var args []any
	argNum := 1

	if filter.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("b.created_by = $%d", argNum))
		args = append(args, *filter.CreatedBy)
		argNum++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("b.assigned_to = $%d", argNum))
		args = append(args, *filter.AssignedTo)
		argNum++
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY b.created_at DESC`, bugRowSelect, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка багов: %w", err)
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
