// users.go — обработчики /api/admin endpoints.
// Список пользователей, просмотр, обновление, переключение статуса.
// Роль ADMIN требуется на уровне маршрутов (RequireRole).
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "bugtracker/internal/api/errors"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/service"
)

// usersResponse — список пользователей.
type usersResponse struct {
	Message string        `json:"message"`
	Users   []*model.User `json:"users"`
}

// ListUsers — GET /api/admin/getUser.
// Возвращает всех пользователей, новые первыми.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}

	writeJSON(w, http.StatusOK, usersResponse{
		Message: "Список пользователей",
		Users:   users,
	})
}

// GetUserByID — GET /api/admin/getUserById/{id}.
func (h *APIHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Message: "Пользователь найден",
		User:    user,
	})
}

// updateUserRequest — тело запроса обновления пользователя.
// Отсутствующие поля не меняются.
type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// UpdateUser — PATCH /api/admin/update/{id}.
// Частично обновляет имя, email и роль пользователя.
// Администратор не может снять роль ADMIN с самого себя.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	user, err := h.users.Update(r.Context(), id, service.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Message: "Пользователь обновлён",
		User:    user,
	})
}

// ToggleUserStatus — PATCH /api/admin/status/{id}.
// Переключает статус учётной записи ACTIVE ⇄ INACTIVE.
// Собственную учётную запись деактивировать нельзя.
func (h *APIHandler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.ToggleStatus(r.Context(), id, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Message: "Статус пользователя изменён",
		User:    user,
	})
}
