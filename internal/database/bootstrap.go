package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"bugtracker/internal/auth"
	"bugtracker/internal/config"
	"bugtracker/internal/domain/model"
)

// BootstrapAdmin создаёт учётную запись администратора при первом запуске.
// Если в базе уже есть пользователь с ролью ADMIN или параметры BT_ADMIN_*
// не заданы, ничего не делает.
func BootstrapAdmin(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		logger.Debug("Параметры администратора не заданы, начальная учётная запись не создаётся")
		return nil
	}

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, model.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("ошибка проверки наличия администратора: %w", err)
	}
	if count > 0 {
		logger.Debug("Администратор уже существует, пропускаем создание")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля администратора: %w", err)
	}

	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password, role, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		name, cfg.AdminEmail, hash, model.RoleAdmin, model.StatusActive,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания администратора: %w", err)
	}

	logger.Info("Создана начальная учётная запись администратора",
		slog.String("email", cfg.AdminEmail),
	)
	return nil
}
