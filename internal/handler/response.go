package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/repository"
	"workforce-backend/internal/service"
	"github.com/shopspring/decimal"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	Data       any            `json:"data"`
	Pagination map[string]any `json:"pagination,omitempty"`
	Error      *apiError      `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeRawJSON(w, status, apiResponse{
		Status:  "ok",
		Message: "",
		Data:    payload,
	})
}

func writePage(w http.ResponseWriter, payload any, p domain.Pagination) {
	writeRawJSON(w, http.StatusOK, apiResponse{
		Status: "ok",
		Data:   payload,
		Pagination: map[string]any{
			"total":   p.Total,
			"pages":   p.Pages,
			"current": p.Current,
			"limit":   p.Limit,
		},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeServiceError maps domain failures to HTTP statuses. Unexpected errors are
// logged and reported with the generic fallback message only.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, service.ErrAlreadyClockedIn), errors.Is(err, service.ErrNoActiveClockIn):
		writeError(w, http.StatusConflict, rootMessage(err))
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		if log == nil {
			log = slog.Default()
		}
		log.Error(fallback, "err", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func rootMessage(err error) string {
	for _, target := range []error{service.ErrAlreadyClockedIn, service.ErrNoActiveClockIn} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// money renders a decimal as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
