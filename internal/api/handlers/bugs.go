// bugs.go — обработчики /api/bug endpoints.
// Создание тестировщиком, частичное обновление, переходы статуса,
// списки с учётом роли и мягкое удаление багов.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "bugtracker/internal/api/errors"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/service"
)

// createBugRequest — тело запроса создания бага.
type createBugRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	ProjectID   *int   `json:"projectId"`
	AssignedTo  *int   `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}

// bugResponse — ответ с одним багом.
type bugResponse struct {
	Message string     `json:"message"`
	Bug     *model.Bug `json:"bug"`
}

// CreateBug — POST /api/bug/create.
// Создаёт баг в статусе ASSIGNED. Доступ: TESTER (проверяется в сервисе).
func (h *APIHandler) CreateBug(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req createBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	bug, err := h.bugs.Create(r.Context(), service.CreateBugInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bugResponse{
		Message: "Баг создан",
		Bug:     bug,
	})
}

// updateBugRequest — тело запроса обновления бага.
// Отсутствующие поля не меняются.
type updateBugRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	AssignedTo  *int    `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

// UpdateBug — PATCH /api/bug/update/{bugId}.
// Частичное обновление. Тестировщик правит только свои баги,
// разработчику операция запрещена.
func (h *APIHandler) UpdateBug(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "bugId")
	if !ok {
		return
	}

	var req updateBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	bug, err := h.bugs.UpdateDetails(r.Context(), id, service.UpdateBugInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bugResponse{
		Message: "Баг обновлён",
		Bug:     bug,
	})
}

// bugRowResponse — ответ с обогащённым представлением бага.
type bugRowResponse struct {
	Message string        `json:"message"`
	Bug     *model.BugRow `json:"bug"`
}

// UpdateBugStatus — PATCH /api/bug/updateBugStatus/{bugId}.
// Переводит баг по жизненному циклу: разработчик ведёт назначенный ему
// баг до FIXED, тестировщик — созданный им баг до CLOSED.
func (h *APIHandler) UpdateBugStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "bugId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	row, err := h.bugs.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bugRowResponse{
		Message: "Статус бага изменён",
		Bug:     row,
	})
}

// bugsResponse — список багов с обогащёнными полями.
type bugsResponse struct {
	Message string          `json:"message"`
	Bugs    []*model.BugRow `json:"bugs"`
}

// BugList — GET /api/bug/getBugList.
// Возвращает баги вызывающего: тестировщик — созданные им,
// разработчик — назначенные ему, администратор — все.
func (h *APIHandler) BugList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	bugs, err := h.bugs.List(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if bugs == nil {
		bugs = []*model.BugRow{}
	}

	writeJSON(w, http.StatusOK, bugsResponse{
		Message: "Список багов",
		Bugs:    bugs,
	})
}

// GetBugByID — GET /api/bug/getBugById/{bugId}.
// Видимость: создатель, назначенный разработчик, администратор.
func (h *APIHandler) GetBugByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "bugId")
	if !ok {
		return
	}

	bug, err := h.bugs.GetByID(r.Context(), id, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bugResponse{
		Message: "Баг найден",
		Bug:     bug,
	})
}

// DeleteBug — DELETE /api/bug/delete/{bugId}.
// Мягкое удаление. Доступ: ADMIN (проверяется в сервисе).
func (h *APIHandler) DeleteBug(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "bugId")
	if !ok {
		return
	}

	if err := h.bugs.Delete(r.Context(), id, actor); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Баг удалён"})
}
