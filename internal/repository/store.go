package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store — доступ ко всем репозиториям с поддержкой транзакций.
// Сервисный слой работает только через этот интерфейс, что позволяет
// подменять хранилище в unit-тестах.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Bugs() BugRepository
	Dashboard() DashboardRepository
	// RunInTx выполняет fn на транзакционной копии хранилища.
	// При ошибке fn транзакция откатывается, при успехе — коммитится.
	RunInTx(ctx context.Context, fn func(Store) error) error
}

// pgStore — реализация Store поверх PostgreSQL.
// Вне транзакции db — это *pgxpool.Pool, внутри — pgx.Tx.
type pgStore struct {
	db     DBTX
	runner *TxRunner // nil внутри транзакции
}

// NewStore создаёт хранилище поверх пула подключений.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool, runner: NewTxRunner(pool)}
}

func (s *pgStore) Users() UserRepository          { return NewUserRepository(s.db) }
func (s *pgStore) Projects() ProjectRepository    { return NewProjectRepository(s.db) }
func (s *pgStore) Bugs() BugRepository            { return NewBugRepository(s.db) }
func (s *pgStore) Dashboard() DashboardRepository { return NewDashboardRepository(s.db) }

func (s *pgStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	// Вложенный вызов выполняется в уже открытой транзакции
	if s.runner == nil {
		return fn(s)
	}

	return s.runner.RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgStore{db: tx})
	})
}
