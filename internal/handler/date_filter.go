package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"workforce-backend/internal/domain"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string, loc *time.Location) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseDateValue accepts a plain date or an RFC3339 timestamp.
func parseDateValue(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// parseMonthQuery reads year and month (1-12), or month alone as YYYY-MM.
// A missing year falls back to now's year.
func parseMonthQuery(r *http.Request, now time.Time) (int, time.Month, error) {
	q := r.URL.Query()
	monthStr := strings.TrimSpace(q.Get("month"))
	if monthStr == "" {
		return 0, 0, errors.New("month is required")
	}
	if strings.Contains(monthStr, "-") {
		t, err := time.Parse("2006-01", monthStr)
		if err != nil {
			return 0, 0, errors.New("invalid month format")
		}
		return t.Year(), t.Month(), nil
	}
	m, err := strconv.Atoi(monthStr)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	year := now.Year()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1 {
			return 0, 0, errors.New("invalid year")
		}
	}
	return year, time.Month(m), nil
}

// parseIntQuery returns nil for an absent value or the literal "all".
func parseIntQuery(r *http.Request, key string) (*int, error) {
	value := r.URL.Query().Get(key)
	if value == "" || value == "all" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseIDQuery(r *http.Request, key string) (*int64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid " + key)
	}
	return &id, nil
}

func parsePage(r *http.Request) domain.Page {
	p := domain.Page{}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}
	return p.Normalize()
}

// searchQuery reads the free-text filter from q, falling back to search.
func searchQuery(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("q"); v != "" {
		return v
	}
	return q.Get("search")
}
