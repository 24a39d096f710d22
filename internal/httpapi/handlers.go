package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/logger"
	"gitlab.com/yelinaung/backoffice/internal/models"
	"gitlab.com/yelinaung/backoffice/internal/report"
	"gitlab.com/yelinaung/backoffice/internal/repository"
)

const (
	defaultListLimit = 24
	maxListLimit     = 200
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

func periodFromURL(r *http.Request) (archive.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return archive.Period{}, fmt.Errorf("%w: bad year", archive.ErrInvalidPeriod)
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return archive.Period{}, fmt.Errorf("%w: bad month", archive.ErrInvalidPeriod)
	}
	p := archive.Period{Month: time.Month(month), Year: year}
	return p, p.Validate()
}

// loadArchive resolves the URL period and fetches its archive, writing the
// error response itself when it returns nil.
func (s *server) loadArchive(w http.ResponseWriter, r *http.Request) *models.MonthlyArchive {
	p, err := periodFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	a, err := s.Archives.GetByPeriod(r.Context(), int(p.Month), p.Year)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "archive not found")
		return nil
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("period", p.String()).Msg("Failed to load archive")
		writeError(w, http.StatusInternalServerError, "failed to load archive")
		return nil
	}
	return a
}

type archiveSummary struct {
	ID            string    `json:"id"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	TotalRevenue  string    `json:"total_revenue"`
	TotalExpenses string    `json:"total_expenses"`
	NetProfit     string    `json:"net_profit"`
	ExpenseCount  int       `json:"expense_count"`
	InvoiceCount  int       `json:"invoice_count"`
	ArchivedAt    time.Time `json:"archived_at"`
}

func (s *server) listArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := s.Archives.List(r.Context(), parseLimit(r))
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list archives")
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}

	out := make([]archiveSummary, 0, len(archives))
	for i := range archives {
		a := &archives[i]
		out = append(out, archiveSummary{
			ID:            a.ID,
			Month:         a.Month,
			Year:          a.Year,
			TotalRevenue:  a.TotalRevenue.StringFixed(2),
			TotalExpenses: a.TotalExpenses.StringFixed(2),
			NetProfit:     a.NetProfit.StringFixed(2),
			ExpenseCount:  len(a.Expenses),
			InvoiceCount:  len(a.Invoices),
			ArchivedAt:    a.ArchivedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) getArchive(w http.ResponseWriter, r *http.Request) {
	if a := s.loadArchive(w, r); a != nil {
		writeJSON(w, http.StatusOK, a)
	}
}

func (s *server) archiveReport(w http.ResponseWriter, r *http.Request) {
	a := s.loadArchive(w, r)
	if a == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.ArchiveFilename(a.Month, a.Year, "txt")))
	_, _ = w.Write([]byte(report.ArchiveText(a)))
}

func (s *server) archiveCSV(w http.ResponseWriter, r *http.Request) {
	a := s.loadArchive(w, r)
	if a == nil {
		return
	}
	data, err := report.ArchiveCSV(a)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to build archive CSV")
		writeError(w, http.StatusInternalServerError, "failed to build CSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ArchiveFilename(a.Month, a.Year, "csv")))
	_, _ = w.Write(data)
}

func (s *server) archiveChart(w http.ResponseWriter, r *http.Request) {
	a := s.loadArchive(w, r)
	if a == nil {
		return
	}
	data, err := report.ArchiveChart(a)
	if errors.Is(err, report.ErrNoExpenses) {
		writeError(w, http.StatusNotFound, "archive has no expenses")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to render archive chart")
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

type runResponse struct {
	Period         string   `json:"period"`
	Status         string   `json:"status"`
	Step           string   `json:"step"`
	ArchiveID      string   `json:"archive_id,omitempty"`
	ExpensesPruned int64    `json:"expenses_pruned"`
	InvoicesPruned int64    `json:"invoices_pruned"`
	Errors         []string `json:"errors,omitempty"`
}

// runArchive archives ?year=&month=, or the previous month when both are
// absent. Unlike the scheduler it is not limited to day 1.
func (s *server) runArchive(w http.ResponseWriter, r *http.Request) {
	p := archive.PreviousPeriod(s.now())
	q := r.URL.Query()
	if q.Has("year") || q.Has("month") {
		year, yErr := strconv.Atoi(q.Get("year"))
		month, mErr := strconv.Atoi(q.Get("month"))
		if yErr != nil || mErr != nil {
			writeError(w, http.StatusBadRequest, "year and month must both be integers")
			return
		}
		p = archive.Period{Month: time.Month(month), Year: year}
	}

	result, err := s.Runner.RunForPeriod(r.Context(), p)
	if result == nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := runResponse{
		Period:         result.Period.String(),
		Status:         string(result.Status),
		Step:           string(result.Step),
		ExpensesPruned: result.ExpensesPruned,
		InvoicesPruned: result.InvoicesPruned,
	}
	if result.Archive != nil {
		resp.ArchiveID = result.Archive.ID
	}
	if result.Err != nil {
		resp.Errors = append(resp.Errors, result.Err.Error())
	}
	for _, e := range result.PruneErrors {
		resp.Errors = append(resp.Errors, e.Error())
	}

	status := http.StatusOK
	switch result.Status {
	case archive.StatusArchived, archive.StatusPartial:
		status = http.StatusCreated
	case archive.StatusFailed:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

type dashboardResponse struct {
	Period  string               `json:"period"`
	Summary report.Summary       `json:"summary"`
	Clients []report.ClientTotal `json:"clients"`
}

// dashboard reports live totals for the current month.
func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	p := archive.Period{Month: now.Month(), Year: now.Year()}
	start, end := p.DateRange()

	expenses, err := s.Expenses.ListByDateRange(r.Context(), start, end)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list expenses for dashboard")
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	invoices, err := s.Invoices.ListByDateRange(r.Context(), start, end)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list invoices for dashboard")
		writeError(w, http.StatusInternalServerError, "failed to load invoices")
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Period:  p.String(),
		Summary: report.MonthlyTotals(expenses, invoices, start, end),
		Clients: report.ClientSpend(invoices),
	})
}

func (s *server) overdueBudgets(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	budgets, err := s.Budgets.ListWithDelivery(r.Context(), time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list budgets")
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	overdue := report.OverdueDeliveries(budgets, now)
	if overdue == nil {
		overdue = []models.Budget{}
	}
	writeJSON(w, http.StatusOK, overdue)
}

func (s *server) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.Clients.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list clients")
		writeError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Products.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list products")
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) listActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Activity.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list activity")
		writeError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}
