// handler.go — основной обработчик API.
// Объединяет все доменные обработчики, делегирует запросы в сервисный
// слой и регистрирует маршруты на chi.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "bugtracker/internal/api/errors"
	"bugtracker/internal/api/middleware"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/service"
)

// APIHandler — основной обработчик API баг-трекера.
type APIHandler struct {
	health    *HealthHandler
	auth      *service.AuthService
	users     *service.UserService
	projects  *service.ProjectService
	bugs      *service.BugService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *service.AuthService,
	users *service.UserService,
	projects *service.ProjectService,
	bugs *service.BugService,
	dashboard *service.DashboardService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:    health,
		auth:      auth,
		users:     users,
		projects:  projects,
		bugs:      bugs,
		dashboard: dashboard,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// RegisterRoutes регистрирует все маршруты API на роутере.
// Аутентификация навешивается на уровне сервера; маршрутам /api/admin
// дополнительно требуется роль ADMIN.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/register", h.Register)
	r.Get("/api/auth/getDevelopers", h.GetDevelopers)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin))
		r.Get("/getUser", h.ListUsers)
		r.Get("/getUserById/{id}", h.GetUserByID)
		r.Patch("/update/{id}", h.UpdateUser)
		r.Patch("/status/{id}", h.ToggleUserStatus)
	})

	r.Route("/api/project", func(r chi.Router) {
		r.Post("/create", h.CreateProject)
		r.Get("/projectList", h.ProjectList)
		r.Get("/testerProjectList", h.TesterProjectList)
		r.Get("/getProjectById/{projectId}", h.GetProjectByID)
		r.Patch("/update/status/{projectId}", h.UpdateProjectStatus)
		r.Patch("/update/{projectId}", h.UpdateProject)
		r.Delete("/deleteProjectById/{projectId}", h.DeleteProject)
	})

	r.Route("/api/bug", func(r chi.Router) {
		r.Post("/create", h.CreateBug)
		r.Patch("/update/{bugId}", h.UpdateBug)
		r.Patch("/updateBugStatus/{bugId}", h.UpdateBugStatus)
		r.Get("/getBugList", h.BugList)
		r.Get("/getBugById/{bugId}", h.GetBugByID)
		r.Delete("/delete/{bugId}", h.DeleteBug)
	})

	r.Get("/api/dashboard/admin", h.AdminDashboard)

	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// actor извлекает субъекта запроса из claims в контексте.
// false — claims отсутствуют (запрос прошёл мимо JWT middleware).
func (h *APIHandler) actor(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return service.Actor{}, false
	}
	return service.Actor{ID: claims.UserID, Role: claims.Role}, true
}

// idParam извлекает числовой параметр пути.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		apierrors.ValidationError(w, "Некорректный идентификатор в пути запроса")
		return 0, false
	}
	return id, true
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
// Неклассифицированные ошибки логируются и уходят как 500 с исходным
// текстом.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		apierrors.InvalidTransition(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.InvalidCredentials(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	default:
		h.logger.Error("Внутренняя ошибка", "error", err)
		apierrors.InternalError(w, err.Error())
	}
}
