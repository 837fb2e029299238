// auth.go — обработчики /api/auth endpoints.
// Вход, регистрация пользователей администратором, список разработчиков.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "bugtracker/internal/api/errors"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/service"
)

// loginRequest — тело запроса входа.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse — ответ успешного входа.
type loginResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *model.UserSummary `json:"user"`
}

// Login — POST /api/auth/login.
// Публичный endpoint: проверяет учётные данные и выпускает токен.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Вход выполнен",
		Token:   token,
		User:    user,
	})
}

// registerRequest — тело запроса регистрации.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// userResponse — ответ с одним пользователем.
type userResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Register — POST /api/auth/register.
// Создаёт пользователя с ролью TESTER или DEVELOPER.
// Доступ: ADMIN (проверяется в сервисе).
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		Message: "Пользователь зарегистрирован",
		User:    user,
	})
}

// developersResponse — список разработчиков для назначения.
type developersResponse struct {
	Message    string               `json:"message"`
	Developers []*model.UserSummary `json:"developers"`
}

// GetDevelopers — GET /api/auth/getDevelopers.
// Возвращает разработчиков для выбора исполнителя.
// Доступ: ADMIN или TESTER (проверяется в сервисе).
func (h *APIHandler) GetDevelopers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	developers, err := h.users.ListDevelopers(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if developers == nil {
		developers = []*model.UserSummary{}
	}

	writeJSON(w, http.StatusOK, developersResponse{
		Message:    "Список разработчиков",
		Developers: developers,
	})
}
