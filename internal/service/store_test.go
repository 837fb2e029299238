package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bugtracker/internal/domain/model"
	"bugtracker/internal/repository"
)

// fakeStore — хранилище в памяти для unit-тестов сервисного слоя.
// Транзакции не эмулируются: RunInTx просто выполняет fn на том же
// хранилище, порядок проверок и ошибки сервисов от этого не зависят.
type fakeStore struct {
	users    []*model.User
	projects []*model.Project
	bugs     []*model.Bug
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) Users() repository.UserRepository          { return &fakeUserRepo{s} }
func (s *fakeStore) Projects() repository.ProjectRepository    { return &fakeProjectRepo{s} }
func (s *fakeStore) Bugs() repository.BugRepository            { return &fakeBugRepo{s} }
func (s *fakeStore) Dashboard() repository.DashboardRepository { return &fakeDashboardRepo{s} }

func (s *fakeStore) RunInTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// addUser кладёт пользователя напрямую, минуя сервисные проверки.
func (s *fakeStore) addUser(name string, role model.Role) *model.User {
	u := &model.User{
		ID:        s.id(),
		Name:      name,
		Email:     fmt.Sprintf("%s-%d@example.com", role, s.nextID),
		Password:  "хэш",
		Role:      role,
		Status:    model.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.users = append(s.users, u)
	return u
}

// addProject кладёт проект напрямую.
func (s *fakeStore) addProject(createdBy, assignedTo int, status model.ProjectStatus) *model.Project {
	p := &model.Project{
		ID:         s.id(),
		Name:       fmt.Sprintf("Проект %d", s.nextID),
		Status:     status,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.projects = append(s.projects, p)
	return p
}

// addBug кладёт баг напрямую.
func (s *fakeStore) addBug(projectID, createdBy, assignedTo int, status model.BugStatus) *model.Bug {
	b := &model.Bug{
		ID:          s.id(),
		Title:       fmt.Sprintf("Баг %d", s.nextID),
		Description: "описание",
		ProjectID:   projectID,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
		Priority:    model.PriorityLow,
		Status:      status,
		DueDate:     time.Now().Add(24 * time.Hour),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.bugs = append(s.bugs, b)
	return b
}

func (s *fakeStore) userName(id int) *string {
	for _, u := range s.users {
		if u.ID == id {
			return &u.Name
		}
	}
	return nil
}

// --- fakeUserRepo ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	cp := *u
	r.s.users = append(r.s.users, &cp)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*model.User, error) {
	for _, u := range r.s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	result := make([]*model.User, len(r.s.users))
	for i, u := range r.s.users {
		cp := *u
		result[len(r.s.users)-1-i] = &cp
	}
	return result, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role model.Role) ([]*model.UserSummary, error) {
	var result []*model.UserSummary
	for _, u := range r.s.users {
		if u.Role == role {
			s := u.Summary()
			result = append(result, &s)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email && existing.ID != u.ID {
			return repository.ErrConflict
		}
	}
	for _, existing := range r.s.users {
		if existing.ID == u.ID {
			existing.Name = u.Name
			existing.Email = u.Email
			existing.Role = u.Role
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id int, status model.UserStatus) error {
	for _, u := range r.s.users {
		if u.ID == id {
			u.Status = status
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fakeProjectRepo ---

type fakeProjectRepo struct{ s *fakeStore }

func (r *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	cp := *p
	r.s.projects = append(r.s.projects, &cp)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id int) (*model.Project, error) {
	for _, p := range r.s.projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) GetActiveByID(_ context.Context, id int) (*model.Project, error) {
	for _, p := range r.s.projects {
		if p.ID == id && p.DeletedAt == nil {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	for _, existing := range r.s.projects {
		if existing.ID == p.ID {
			existing.Name = p.Name
			existing.Description = p.Description
			existing.AssignedTo = p.AssignedTo
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeProjectRepo) UpdateStatus(_ context.Context, id int, status model.ProjectStatus) error {
	for _, p := range r.s.projects {
		if p.ID == id {
			p.Status = status
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeProjectRepo) SoftDelete(_ context.Context, id int) error {
	for _, p := range r.s.projects {
		if p.ID == id && p.DeletedAt == nil {
			now := time.Now()
			p.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]*model.ProjectRow, error) {
	var result []*model.ProjectRow
	for _, p := range r.s.projects {
		if p.DeletedAt != nil {
			continue
		}
		if filter.CreatedBy != nil && p.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && p.AssignedTo != *filter.AssignedTo {
			continue
		}
		createdBy := p.CreatedBy
		result = append(result, &model.ProjectRow{
			ID: p.ID, Name: p.Name, Description: p.Description, Status: p.Status,
			AssignedToID: p.AssignedTo, AssignedToName: r.s.userName(p.AssignedTo),
			CreatedByID: &createdBy, CreatedByName: r.s.userName(p.CreatedBy),
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *fakeProjectRepo) ListRefs(_ context.Context) ([]*model.ProjectRef, error) {
	var result []*model.ProjectRef
	for _, p := range r.s.projects {
		if p.DeletedAt == nil {
			result = append(result, &model.ProjectRef{ID: p.ID, Name: p.Name})
		}
	}
	return result, nil
}

// --- fakeBugRepo ---

type fakeBugRepo struct{ s *fakeStore }

func (r *fakeBugRepo) Create(_ context.Context, b *model.Bug) error {
	b.ID = r.s.id()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	cp := *b
	r.s.bugs = append(r.s.bugs, &cp)
	return nil
}

func (r *fakeBugRepo) GetByID(_ context.Context, id int) (*model.Bug, error) {
	for _, b := range r.s.bugs {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBugRepo) row(b *model.Bug) *model.BugRow {
	var projectName *string
	for _, p := range r.s.projects {
		if p.ID == b.ProjectID {
			projectName = &p.Name
		}
	}
	return &model.BugRow{
		ID: b.ID, Title: b.Title, Description: b.Description,
		Priority: b.Priority, Status: b.Status, DueDate: b.DueDate,
		ProjectID: b.ProjectID, ProjectName: projectName,
		AssignedToID: b.AssignedTo, AssignedToName: r.s.userName(b.AssignedTo),
		CreatedByID: b.CreatedBy, CreatedByName: r.s.userName(b.CreatedBy),
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

func (r *fakeBugRepo) GetRowByID(_ context.Context, id int) (*model.BugRow, error) {
	for _, b := range r.s.bugs {
		if b.ID == id {
			return r.row(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBugRepo) Update(_ context.Context, b *model.Bug) error {
	for _, existing := range r.s.bugs {
		if existing.ID == b.ID {
			existing.Title = b.Title
			existing.Description = b.Description
			existing.Priority = b.Priority
			existing.AssignedTo = b.AssignedTo
			existing.DueDate = b.DueDate
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeBugRepo) UpdateStatus(_ context.Context, id int, status model.BugStatus) error {
	for _, b := range r.s.bugs {
		if b.ID == id {
			b.Status = status
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeBugRepo) SoftDelete(_ context.Context, id int) error {
	for _, b := range r.s.bugs {
		if b.ID == id && b.DeletedAt == nil {
			now := time.Now()
			b.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeBugRepo) List(_ context.Context, filter repository.BugFilter) ([]*model.BugRow, error) {
	var result []*model.BugRow
	for _, b := range r.s.bugs {
		if b.DeletedAt != nil {
			continue
		}
		if filter.CreatedBy != nil && b.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && b.AssignedTo != *filter.AssignedTo {
			continue
		}
		result = append(result, r.row(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// --- fakeDashboardRepo ---

type fakeDashboardRepo struct{ s *fakeStore }

func (r *fakeDashboardRepo) CountProjects(_ context.Context) (int, error) {
	n := 0
	for _, p := range r.s.projects {
		if p.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeDashboardRepo) CountBugs(_ context.Context) (int, error) {
	n := 0
	for _, b := range r.s.bugs {
		if b.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeDashboardRepo) CountUsers(_ context.Context) (int, error) {
	return len(r.s.users), nil
}

func (r *fakeDashboardRepo) CountUsersByRole(_ context.Context) (map[model.Role]int, error) {
	result := make(map[model.Role]int)
	for _, u := range r.s.users {
		result[u.Role]++
	}
	return result, nil
}

func (r *fakeDashboardRepo) CountBugsByStatus(_ context.Context) (map[model.BugStatus]int, error) {
	result := make(map[model.BugStatus]int)
	for _, b := range r.s.bugs {
		if b.DeletedAt == nil {
			result[b.Status]++
		}
	}
	return result, nil
}

func (r *fakeDashboardRepo) CountBugsByPriority(_ context.Context) (map[model.BugPriority]int, error) {
	result := make(map[model.BugPriority]int)
	for _, b := range r.s.bugs {
		if b.DeletedAt == nil {
			result[b.Priority]++
		}
	}
	return result, nil
}

func (r *fakeDashboardRepo) LatestProjects(ctx context.Context, limit int) ([]*model.ProjectRow, error) {
	rows, err := (&fakeProjectRepo{r.s}).List(ctx, repository.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeDashboardRepo) LatestBugs(ctx context.Context, limit int) ([]*model.BugRow, error) {
	rows, err := (&fakeBugRepo{r.s}).List(ctx, repository.BugFilter{})
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
