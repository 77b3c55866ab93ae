package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/clock"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"workforce-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type ActivityLogHandler struct {
	Service service.ActivityLogService
	Clock   clock.Clock
	Logger  *slog.Logger
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Post("/logs", h.create)
	r.Get("/logs", h.list)
}

// RegisterAdminRoutes mounts the destructive endpoints.
func (h ActivityLogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/logs/{id}", h.delete)
	r.Delete("/logs", h.clear)
}

func (h ActivityLogHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Action      string         `json:"action"`
		Description string         `json:"description"`
		Details     map[string]any `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	l, err := h.Service.Record(r.Context(), ports.NewActivityLog{
		UserID:      user.ID,
		Action:      req.Action,
		Description: req.Description,
		Details:     req.Details,
		CreatedAt:   h.Clock.Now(),
	})
	if err != nil {
		writeServiceError(w, h.Logger, err, "user not found", "failed to record activity")
		return
	}
	writeJSON(w, http.StatusCreated, activityLogJSON(*l))
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := h.Service.List(r.Context(), user.ID, user.Role, parsePage(r), searchQuery(r))
	if err != nil {
		writeServiceError(w, h.Logger, err, "", "failed to load activity logs")
		return
	}
	resp := make([]map[string]any, 0, len(page.Logs))
	for _, l := range page.Logs {
		resp = append(resp, activityLogJSON(l))
	}
	writePage(w, resp, page.Pagination)
}

func (h ActivityLogHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err, "activity log not found", "failed to delete activity log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h ActivityLogHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context()); err != nil {
		writeServiceError(w, h.Logger, err, "", "failed to clear activity logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func activityLogJSON(l domain.ActivityLog) map[string]any {
	details := l.Details
	if details == nil {
		details = map[string]any{}
	}
	out := map[string]any{
		"id":          l.ID,
		"userId":      l.UserID,
		"action":      l.Action,
		"description": l.Description,
		"details":     details,
		"createdAt":   l.CreatedAt.Format(time.RFC3339),
	}
	if l.User != nil {
		out["user"] = employeeSummaryJSON(*l.User)
	}
	return out
}
