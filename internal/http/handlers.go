package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expenseflow/internal/core"
	applog "expenseflow/internal/log"
	"expenseflow/internal/report"
)

type (
	submitRequest struct {
		Amount           string `json:"amount"`
		Category         string `json:"category"`
		Date             string `json:"date"`
		Description      string `json:"description"`
		ReceiptReference string `json:"receipt_reference,omitempty"`
	}

	expenseView struct {
		ID               int64  `json:"id"`
		Owner            string `json:"owner"`
		Amount           string `json:"amount"`
		Category         string `json:"category"`
		Date             string `json:"date"`
		Description      string `json:"description"`
		ReceiptReference string `json:"receipt_reference,omitempty"`
		Status           string `json:"status"`
	}

	trendBucketView struct {
		Month string `json:"month"`
		Total string `json:"total"`
	}

	dashboardView struct {
		MonthToDate   string            `json:"month_to_date"`
		PendingCount  int               `json:"pending_count"`
		ApprovedTotal string            `json:"approved_total"`
		RejectedTotal string            `json:"rejected_total"`
		Trend         []trendBucketView `json:"trend"`
		TrendMax      string            `json:"trend_max"`
	}
)

func viewOf(e core.Expense) expenseView {
	return expenseView{
		ID:               e.ID,
		Owner:            e.Owner,
		Amount:           e.Amount.Decimal(),
		Category:         string(e.Category),
		Date:             e.Date.Format("2006-01-02"),
		Description:      e.Description,
		ReceiptReference: e.ReceiptRef,
		Status:           string(e.Status),
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, p core.Principal) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	created, err := s.service.Submit(r.Context(), p, core.Expense{
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		ReceiptRef:  strings.TrimSpace(req.ReceiptReference),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.dashboard.Purge()

	writeJSON(w, r, http.StatusCreated, viewOf(created))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, p core.Principal) {
	f, err := parseFilter(r, p)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items, err := s.service.List(r.Context(), p, f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]expenseView, 0, len(items))
	for _, e := range items {
		views = append(views, viewOf(e))
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, p core.Principal) {
	s.decide(w, r, p, core.StatusApproved)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request, p core.Principal) {
	s.decide(w, r, p, core.StatusRejected)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, p core.Principal, status core.Status) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid expense id")
		return
	}

	decided, err := s.service.Decide(r.Context(), p, id, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.dashboard.Purge()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Claim decided",
		applog.FieldExpenseID, decided.ID,
		applog.FieldStatus, string(decided.Status),
		applog.FieldPrincipal, p.Username)

	writeJSON(w, r, http.StatusOK, viewOf(decided))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, p core.Principal) {
	asOf := core.Date{Time: time.Now().UTC()}
	if v := strings.TrimSpace(r.URL.Query().Get("as_of")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		asOf = d
	}

	// Dashboard figures are derived, so a short cache per principal
	// absorbs repeated polling. Any write purges it.
	key := fmt.Sprintf("%s|%s|%s|%d", p.Username, p.Role, asOf.Format("2006-01-02"), s.trendMonths)
	if summary, ok := s.dashboard.Get(key); ok {
		writeJSON(w, r, http.StatusOK, dashboardOf(summary))
		return
	}

	summary, err := s.reports.Dashboard(r.Context(), p, asOf, s.trendMonths)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.dashboard.Set(key, summary)

	writeJSON(w, r, http.StatusOK, dashboardOf(summary))
}

func dashboardOf(sum report.Summary) dashboardView {
	buckets := make([]trendBucketView, 0, len(sum.Trend.Buckets))
	for _, b := range sum.Trend.Buckets {
		buckets = append(buckets, trendBucketView{Month: b.Label, Total: b.Total.Decimal()})
	}
	return dashboardView{
		MonthToDate:   sum.MonthToDate.Decimal(),
		PendingCount:  sum.PendingCount,
		ApprovedTotal: sum.ApprovedTotal.Decimal(),
		RejectedTotal: sum.RejectedTotal.Decimal(),
		Trend:         buckets,
		TrendMax:      sum.Trend.Max.Decimal(),
	}
}
