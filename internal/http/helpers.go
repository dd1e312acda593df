package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expenseflow/internal/core"
	applog "expenseflow/internal/log"
	"expenseflow/internal/store"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the core error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage failure; its detail stays
// in the log, not the response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotAuthorized):
		writeError(w, r, http.StatusForbidden, core.ErrNotAuthorized.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, core.ErrNotFound.Error())
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, core.ErrInvalidTransition.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Storage failure", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "storage failure")
	}
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.Date{Time: parsedTime}, nil
}

// parseFilter builds a store filter from list query parameters. The
// default ordering depends on the caller's role: managers get the
// oldest-first approval queue, employees their newest-first history.
func parseFilter(r *http.Request, p core.Principal) (store.Filter, error) {
	f := store.Filter{Order: store.OrderDateAsc}
	if p.Role == core.RoleEmployee {
		f.Order = store.OrderDateDesc
	}

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, err := core.ParseStatus(v)
		if err != nil {
			return store.Filter{}, err
		}
		f.Status = status
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return store.Filter{}, err
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return store.Filter{}, err
		}
		f.To = d
	}
	switch q.Get("order") {
	case "":
	case "asc":
		f.Order = store.OrderDateAsc
	case "desc":
		f.Order = store.OrderDateDesc
	default:
		return store.Filter{}, fmt.Errorf("%w: order must be asc or desc", core.ErrValidation)
	}
	return f, nil
}
