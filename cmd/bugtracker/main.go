// Точка входа баг-трекера.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт начального администратора, собирает сервисный слой и API
// handlers, запускает HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bugtracker/internal/api/handlers"
	"bugtracker/internal/api/middleware"
	"bugtracker/internal/auth"
	"bugtracker/internal/config"
	"bugtracker/internal/database"
	"bugtracker/internal/repository"
	"bugtracker/internal/server"
	"bugtracker/internal/service"
)

func main() {
	// .env для локальной разработки; в проде переменные задаёт окружение
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Баг-трекер запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Начальный администратор (пропускается, если BT_ADMIN_EMAIL не задан)
	if err := database.BootstrapAdmin(ctx, pool, cfg, logger); err != nil {
		logger.Error("Ошибка создания начального администратора", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Хранилище и менеджер токенов
	store := repository.NewStore(pool)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	// 7. Services
	authSvc := service.NewAuthService(store, tokens, logger)
	userSvc := service.NewUserService(store, logger)
	projectSvc := service.NewProjectService(store, logger)
	bugSvc := service.NewBugService(store, logger)
	dashboardSvc := service.NewDashboardService(store, logger)

	// 8. API handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool))
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		authSvc,
		userSvc,
		projectSvc,
		bugSvc,
		dashboardSvc,
		logger,
	)

	// 9. JWT middleware и HTTP-сервер
	jwtAuth := middleware.NewJWTAuth(tokens, logger)
	srv := server.New(cfg, logger, apiHandler, jwtAuth)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
