// dashboard.go — обработчик /api/dashboard/admin.
package handlers

import (
	"net/http"

	"bugtracker/internal/service"
)

// dashboardResponse — сводка для администратора.
type dashboardResponse struct {
	Message string `json:"message"`
	*service.DashboardSummary
}

// AdminDashboard — GET /api/dashboard/admin.
// Возвращает счётчики, разбивки и последние записи.
// Доступ: ADMIN (проверяется в сервисе).
func (h *APIHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Message:          "Сводка",
		DashboardSummary: summary,
	})
}
