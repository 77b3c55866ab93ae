package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/clock"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// PayrollHandler serves payroll previews and payment creation for management, and
// single payment lookups for the paid employee.
type PayrollHandler struct {
	Service  service.PayrollService
	Clock    clock.Clock
	Location *time.Location
	Logger   *slog.Logger
}

func (h PayrollHandler) RegisterManagementRoutes(r chi.Router) {
	r.Post("/payroll/preview", h.preview)
	r.Post("/payroll/process", h.process)
	r.Get("/payroll/overview", h.overview)
	r.Post("/payroll", h.create)
}

func (h PayrollHandler) RegisterRoutes(r chi.Router) {
	r.Get("/payroll/{id}", h.get)
}

type payrollRequest struct {
	EmployeeID     int64                `json:"employeeId"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod"`
	Status         domain.PaymentStatus `json:"status"`
	PaymentDate    string               `json:"paymentDate"`
	TransactionID  *string              `json:"transactionId"`
	PayPeriodStart string               `json:"payPeriodStart"`
	PayPeriodEnd   string               `json:"payPeriodEnd"`
	Description    string               `json:"description"`
	domain.PayrollComponents
}

func (h PayrollHandler) preview(w http.ResponseWriter, r *http.Request) {
	var req domain.PayrollComponents
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	writeJSON(w, http.StatusOK, totalsJSON(h.Service.ComputeNetPay(req)))
}

func (h PayrollHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req payrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in := service.PayrollInput{
		EmployeeID:    req.EmployeeID,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		TransactionID: req.TransactionID,
		Components:    req.PayrollComponents,
		Description:   req.Description,
	}
	for _, f := range []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"paymentDate", req.PaymentDate, &in.PaymentDate},
		{"payPeriodStart", req.PayPeriodStart, &in.PayPeriodStart},
		{"payPeriodEnd", req.PayPeriodEnd, &in.PayPeriodEnd},
	} {
		if f.value == "" {
			continue
		}
		t, err := parseDateValue(f.value, h.location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+f.name)
			return
		}
		*f.dst = t
	}

	rec, err := h.Service.CreatePayroll(r.Context(), user.ID, in, h.Clock.Now())
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to create payroll")
		return
	}
	writeJSON(w, http.StatusCreated, paymentJSON(*rec))
}

func (h PayrollHandler) process(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		EmployeeIDs []int64 `json:"employeeIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.ProcessPayroll(r.Context(), user.ID, req.EmployeeIDs, h.Clock.Now().In(h.location()))
	if err != nil {
		writeServiceError(w, h.Logger, err, "employee not found", "failed to process payroll")
		return
	}
	created := make([]map[string]any, 0, len(res.Created))
	for _, p := range res.Created {
		created = append(created, paymentJSON(p))
	}
	skipped := make([]map[string]any, 0, len(res.Skipped))
	for _, sk := range res.Skipped {
		skipped = append(skipped, map[string]any{"employeeId": sk.EmployeeID, "reason": sk.Reason})
	}
	status := http.StatusOK
	if len(created) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"payPeriodStart": res.Period.Start.Format(dateLayout),
		"payPeriodEnd":   res.Period.End.AddDate(0, 0, -1).Format(dateLayout),
		"created":        created,
		"skipped":        skipped,
	})
}

func (h PayrollHandler) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Service.Overview(r.Context(), h.Clock.Now().In(h.location()))
	if err != nil {
		writeServiceError(w, h.Logger, err, "payroll not found", "failed to load payroll overview")
		return
	}
	rows := make([]map[string]any, 0, len(ov.Rows))
	for _, row := range ov.Rows {
		var payment any
		if row.Payment != nil {
			payment = map[string]any{
				"id":          row.Payment.ID,
				"amount":      money(row.Payment.Amount),
				"status":      string(row.Payment.Status),
				"paymentDate": row.Payment.PaymentDate.Format(time.RFC3339),
			}
		}
		rows = append(rows, map[string]any{
			"employee":     employeeSummaryJSON(domain.EmployeeSummary{ID: row.Employee.ID, EmployeeCode: row.Employee.EmployeeCode, Name: row.Employee.Name, Email: row.Employee.Email, Role: row.Employee.Role}),
			"salary":       money(row.BaseSalary),
			"additions":    money(row.Additions),
			"totalPayroll": money(row.Total),
			"payment":      payment,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payPeriodStart":    ov.Period.Start.Format(dateLayout),
		"payPeriodEnd":      ov.Period.End.AddDate(0, 0, -1).Format(dateLayout),
		"employees":         rows,
		"nextPayrollDate":   ov.NextPayrollDate.Format(dateLayout),
		"totalEmployees":    ov.TotalEmployees,
		"totalWorkingHours": ov.TotalWorkingHours,
		"totalUnpaid":       money(ov.TotalUnpaid),
	})
}

func (h PayrollHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err, "payment not found", "failed to load payment")
		return
	}
	// Employees only see their own payments; report others as missing.
	if !user.Role.IsManagement() && rec.EmployeeID != user.ID {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, paymentJSON(*rec))
}

func (h PayrollHandler) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func totalsJSON(t domain.PayrollTotals) map[string]any {
	return map[string]any{
		"totalEarnings":   money(t.TotalEarnings),
		"totalDeductions": money(t.TotalDeductions),
		"netAmount":       money(t.NetAmount),
	}
}

func paymentJSON(p domain.PaymentRecord) map[string]any {
	out := map[string]any{
		"id":              p.ID,
		"employeeId":      p.EmployeeID,
		"amount":          money(p.Amount),
		"netAmount":       money(p.NetAmount),
		"taxDeductions":   money(p.TaxDeductions),
		"otherDeductions": money(p.OtherDeductions),
		"payPeriodStart":  p.PayPeriodStart.Format(dateLayout),
		"payPeriodEnd":    p.PayPeriodEnd.Format(dateLayout),
		"paymentDate":     p.PaymentDate.Format(time.RFC3339),
		"paymentMethod":   string(p.PaymentMethod),
		"status":          string(p.Status),
		"transactionId":   p.TransactionID,
		"reference":       p.Reference,
		"type":            p.Type,
		"description":     p.Description,
		"createdById":     p.CreatedByID,
		"createdAt":       p.CreatedAt.Format(time.RFC3339),
	}
	if p.Employee != nil {
		out["employee"] = employeeSummaryJSON(*p.Employee)
	}
	return out
}
