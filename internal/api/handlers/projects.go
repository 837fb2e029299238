// projects.go — обработчики /api/project endpoints.
// Создание, списки с учётом роли, просмотр, частичное обновление,
// смена статуса и мягкое удаление проектов.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "bugtracker/internal/api/errors"
	"bugtracker/internal/domain/model"
	"bugtracker/internal/service"
)

// createProjectRequest — тело запроса создания проекта.
type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	AssignedTo  *int    `json:"assignedTo"`
}

// projectResponse — ответ с одним проектом.
type projectResponse struct {
	Message string         `json:"message"`
	Project *model.Project `json:"project"`
}

// CreateProject — POST /api/project/create.
// Создаёт проект в статусе TODO с назначенным разработчиком.
// Доступ: ADMIN или TESTER (проверяется в сервисе).
func (h *APIHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	project, err := h.projects.Create(r.Context(), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectResponse{
		Message: "Проект создан",
		Project: project,
	})
}

// projectsResponse — список проектов с обогащёнными полями.
type projectsResponse struct {
	Message  string              `json:"message"`
	Projects []*model.ProjectRow `json:"projects"`
}

// ProjectList — GET /api/project/projectList.
// Возвращает проекты вызывающего: тестировщик — созданные им,
// разработчик — назначенные ему, администратор — все.
func (h *APIHandler) ProjectList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []*model.ProjectRow{}
	}

	writeJSON(w, http.StatusOK, projectsResponse{
		Message:  "Список проектов",
		Projects: projects,
	})
}

// projectRefsResponse — краткий список проектов для формы создания бага.
type projectRefsResponse struct {
	Message  string              `json:"message"`
	Projects []*model.ProjectRef `json:"projects"`
}

// TesterProjectList — GET /api/project/testerProjectList.
// Возвращает все активные проекты (id и имя) для выбора при создании
// бага. Доступ: TESTER (проверяется в сервисе).
func (h *APIHandler) TesterProjectList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	refs, err := h.projects.ListRefs(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if refs == nil {
		refs = []*model.ProjectRef{}
	}

	writeJSON(w, http.StatusOK, projectRefsResponse{
		Message:  "Список проектов",
		Projects: refs,
	})
}

// GetProjectByID — GET /api/project/getProjectById/{projectId}.
// Видимость: создатель, назначенный разработчик, администратор.
func (h *APIHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "projectId")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(r.Context(), id, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		Message: "Проект найден",
		Project: project,
	})
}

// updateProjectRequest — тело запроса обновления проекта.
// Отсутствующие поля не меняются.
type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	AssignedTo  *int    `json:"assignedTo"`
}

// UpdateProject — PATCH /api/project/update/{projectId}.
// Частичное обновление. Тестировщик правит только свои проекты,
// разработчику операция запрещена.
func (h *APIHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "projectId")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	project, err := h.projects.UpdateDetails(r.Context(), id, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		Message: "Проект обновлён",
		Project: project,
	})
}

// updateStatusRequest — тело запроса смены статуса.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateProjectStatus — PATCH /api/project/update/status/{projectId}.
// Переводит проект по жизненному циклу TODO → DOING → DONE.
// Доступ: назначенный разработчик.
func (h *APIHandler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "projectId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	project, err := h.projects.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		Message: "Статус проекта изменён",
		Project: project,
	})
}

// messageResponse — ответ без полезной нагрузки.
type messageResponse struct {
	Message string `json:"message"`
}

// DeleteProject — DELETE /api/project/deleteProjectById/{projectId}.
// Мягкое удаление. Доступ: ADMIN (проверяется в сервисе).
func (h *APIHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "projectId")
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), id, actor); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Проект удалён"})
}
