package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"workforce-backend/internal/clock"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/server/authctx"
	"workforce-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler struct {
	Service  service.AttendanceService
	Clock    clock.Clock
	Location *time.Location
	Logger   *slog.Logger
}

func (h AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance/clock-in", h.clockIn)
	r.Post("/attendance/clock-out", h.clockOut)
	r.Get("/attendance/status", h.status)
	r.Get("/attendance/monthly", h.monthly)
	r.Get("/attendance", h.list)
}

func (h AttendanceHandler) clockIn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	employeeID, err := clockTarget(r, user)
	if err != nil {
		writeScopeError(w, err)
		return
	}
	rec, err := h.Service.ClockIn(r.Context(), employeeID, h.Clock.Now())
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to clock in")
		return
	}
	writeJSON(w, http.StatusCreated, h.attendanceJSON(*rec))
}

func (h AttendanceHandler) clockOut(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	employeeID, err := clockTarget(r, user)
	if err != nil {
		writeScopeError(w, err)
		return
	}
	rec, err := h.Service.ClockOut(r.Context(), employeeID, h.Clock.Now())
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to clock out")
		return
	}
	writeJSON(w, http.StatusOK, h.attendanceJSON(*rec))
}

func (h AttendanceHandler) status(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	employeeID, err := resolveEmployeeID(r, user, "employeeId")
	if err != nil {
		writeScopeError(w, err)
		return
	}
	st, err := h.Service.CurrentStatus(r.Context(), employeeID, h.Clock.Now())
	if err != nil {
		writeServiceError(w, h.Logger, err, "attendance not found", "failed to load attendance status")
		return
	}
	var totalHours any
	if st.TotalHours != nil {
		totalHours = *st.TotalHours
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         string(st.State),
		"checkInTime":    timeOrNil(st.CheckInTime),
		"checkOutTime":   timeOrNil(st.CheckOutTime),
		"totalHours":     totalHours,
		"elapsedSeconds": int64(st.Elapsed / time.Second),
		"progress":       st.Progress,
	})
}

func (h AttendanceHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	date, err := parseDateQuery(r, "date", h.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	filter := domain.AttendanceFilter{
		Date:   date,
		Search: searchQuery(r),
		Page:   parsePage(r),
	}
	if user.Role.IsManagement() {
		filter.EmployeeID, err = parseIDQuery(r, "employeeId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		self := user.ID
		filter.EmployeeID = &self
	}

	page, err := h.Service.History(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Logger, err, "attendance not found", "failed to load attendance")
		return
	}
	resp := make([]map[string]any, 0, len(page.Records))
	for _, rec := range page.Records {
		resp = append(resp, h.attendanceJSON(rec))
	}
	writePage(w, resp, page.Pagination)
}

func (h AttendanceHandler) monthly(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	year, month, err := parseMonthQuery(r, h.Clock.Now().In(h.location()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var employeeID *int64
	if user.Role.IsManagement() {
		employeeID, err = parseIDQuery(r, "employeeId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		self := user.ID
		employeeID = &self
	}

	items, err := h.Service.Monthly(r.Context(), year, month, h.location(), employeeID)
	if err != nil {
		writeServiceError(w, h.Logger, err, "attendance not found", "failed to load attendance")
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, h.attendanceJSON(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AttendanceHandler) attendanceJSON(a domain.AttendanceRecord) map[string]any {
	var totalHours any
	if a.TotalHours != nil {
		totalHours = *a.TotalHours
	}
	out := map[string]any{
		"id":           a.ID,
		"employeeId":   a.EmployeeID,
		"date":         a.Date.Format(dateLayout),
		"checkInTime":  a.CheckInTime.In(h.location()).Format(time.RFC3339),
		"checkOutTime": nil,
		"totalHours":   totalHours,
		"createdAt":    a.CreatedAt.Format(time.RFC3339),
	}
	if a.CheckOutTime != nil {
		out["checkOutTime"] = a.CheckOutTime.In(h.location()).Format(time.RFC3339)
	}
	if a.Employee != nil {
		out["employee"] = employeeSummaryJSON(*a.Employee)
	}
	return out
}

func (h AttendanceHandler) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// clockTarget lets management clock a named employee in or out from a shared terminal.
// The body is optional; without it the caller acts on their own record.
func clockTarget(r *http.Request, user authctx.CurrentUser) (int64, error) {
	var req struct {
		EmployeeID *int64 `json:"employeeId"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return 0, errors.New("invalid payload")
		}
	}
	if req.EmployeeID == nil || *req.EmployeeID == user.ID {
		return user.ID, nil
	}
	if *req.EmployeeID <= 0 {
		return 0, errors.New("invalid employeeId")
	}
	if !user.Role.IsManagement() {
		return 0, errForeignRecord
	}
	return *req.EmployeeID, nil
}

func employeeSummaryJSON(e domain.EmployeeSummary) map[string]any {
	return map[string]any{
		"id":           e.ID,
		"employeeCode": e.EmployeeCode,
		"name":         e.Name,
		"email":        e.Email,
		"role":         string(e.Role),
	}
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
