package handler

import (
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler struct {
	Employees ports.EmployeeLookup
	Logger    *slog.Logger
}

func (h EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/employees/me", h.me)
	r.Get("/employees/{id}", h.get)
}

func (h EmployeeHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.write(w, r, user.ID)
}

func (h EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id != user.ID && !user.Role.IsManagement() {
		writeError(w, http.StatusForbidden, errForeignRecord.Error())
		return
	}
	h.write(w, r, id)
}

func (h EmployeeHandler) write(w http.ResponseWriter, r *http.Request, id int64) {
	e, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to load employee")
		return
	}
	writeJSON(w, http.StatusOK, employeeJSON(*e))
}

func employeeJSON(e domain.Employee) map[string]any {
	var salary any
	if e.BaseSalary != nil {
		salary = money(*e.BaseSalary)
	}
	return map[string]any{
		"id":               e.ID,
		"employeeCode":     e.EmployeeCode,
		"name":             e.Name,
		"email":            e.Email,
		"role":             string(e.Role),
		"position":         e.Position,
		"employmentStatus": string(e.EmploymentStatus),
		"baseSalary":       salary,
		"createdAt":        e.CreatedAt.Format(time.RFC3339),
	}
}
