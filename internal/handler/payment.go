package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/clock"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	Service  service.PayrollService
	Clock    clock.Clock
	Location *time.Location
	Logger   *slog.Logger
}

func (h PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/payments/stats", h.stats)
	r.Get("/payments/statement", h.statement)
	r.Get("/payments", h.list)
}

func (h PaymentHandler) stats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	employeeID, err := resolveEmployeeID(r, user, "employeeId")
	if err != nil {
		writeScopeError(w, err)
		return
	}
	st, err := h.Service.Statistics(r.Context(), employeeID, h.Clock.Now())
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to load payment statistics")
		return
	}

	var status any
	if st.CurrentMonth.Status != nil {
		status = string(*st.CurrentMonth.Status)
	}
	var increase any
	if st.YearToDate.Increase != nil {
		increase = *st.YearToDate.Increase
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentMonth": map[string]any{
			"paid":      st.CurrentMonth.Paid,
			"amount":    money(st.CurrentMonth.Amount),
			"createdAt": timeOrNil(st.CurrentMonth.CreatedAt),
			"status":    status,
		},
		"yearToDate": map[string]any{
			"total":             money(st.YearToDate.Total),
			"average":           money(st.YearToDate.Average),
			"increase":          increase,
			"increaseAvailable": st.YearToDate.Increase != nil,
		},
		"lastYearTotal": money(st.LastYearTotal),
		"nextPayment": map[string]any{
			"estimated": st.NextPayment.Estimated.Format(time.RFC3339),
			"amount":    money(st.NextPayment.Amount),
		},
	})
}

func (h PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.paymentFilter(w, r)
	if !ok {
		return
	}
	page, err := h.Service.History(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Logger, err, "payment not found", "failed to load payments")
		return
	}
	resp := make([]map[string]any, 0, len(page.Records))
	for _, p := range page.Records {
		resp = append(resp, paymentJSON(p))
	}
	writePage(w, resp, page.Pagination)
}

func (h PaymentHandler) statement(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" && format != "excel" {
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
		return
	}
	filter, ok := h.paymentFilter(w, r)
	if !ok {
		return
	}
	items, err := h.Service.Statement(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Logger, err, "payment not found", "failed to export payments")
		return
	}

	suffix := h.Clock.Now().Format("20060102_150405")
	if filter.Year != nil {
		suffix = fmt.Sprintf("%d", *filter.Year)
		if filter.Month != nil {
			suffix = fmt.Sprintf("%d%02d", *filter.Year, int(*filter.Month))
		}
	}
	name := fmt.Sprintf("payments_%d_%s", filter.EmployeeID, suffix)

	switch format {
	case "csv":
		data, err := exportPaymentsCSV(items)
		if err != nil {
			writeServiceError(w, h.Logger, err, "", "failed to export payments")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
		_, _ = w.Write(data)
	default:
		data, err := exportPaymentsXLSX(items)
		if err != nil {
			writeServiceError(w, h.Logger, err, "", "failed to export payments")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", name))
		_, _ = w.Write(data)
	}
}

func (h PaymentHandler) paymentFilter(w http.ResponseWriter, r *http.Request) (domain.PaymentFilter, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return domain.PaymentFilter{}, false
	}
	employeeID, err := resolveEmployeeID(r, user, "employeeId")
	if err != nil {
		writeScopeError(w, err)
		return domain.PaymentFilter{}, false
	}
	year, err := parseIntQuery(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return domain.PaymentFilter{}, false
	}
	monthNum, err := parseIntQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return domain.PaymentFilter{}, false
	}
	filter := domain.PaymentFilter{
		EmployeeID: employeeID,
		Year:       year,
		Search:     searchQuery(r),
		Page:       parsePage(r),
	}
	if monthNum != nil {
		m := time.Month(*monthNum)
		filter.Month = &m
	}
	return filter, true
}
