// Package httpapi exposes archives, reports and the manual archive trigger
// over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ArchiveReader reads stored archives.
type ArchiveReader interface {
	GetByPeriod(ctx context.Context, month, year int) (*models.MonthlyArchive, error)
	List(ctx context.Context, limit int) ([]models.MonthlyArchive, error)
}

// ExpenseLister reads live expenses.
type ExpenseLister interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Expense, error)
}

// InvoiceLister reads live invoices.
type InvoiceLister interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Invoice, error)
}

// BudgetLister reads budgets with a delivery date.
type BudgetLister interface {
	ListWithDelivery(ctx context.Context, until time.Time) ([]models.Budget, error)
}

// ClientLister reads the customer register.
type ClientLister interface {
	List(ctx context.Context) ([]models.Client, error)
}

// ProductLister reads the product catalogue.
type ProductLister interface {
	List(ctx context.Context) ([]models.Product, error)
}

// ActivityLister reads the activity log.
type ActivityLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// ArchiveRunner runs an archival pass on demand.
type ArchiveRunner interface {
	RunForPeriod(ctx context.Context, p archive.Period) (*archive.Result, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Archives ArchiveReader
	Expenses ExpenseLister
	Invoices InvoiceLister
	Budgets  BudgetLister
	Clients  ClientLister
	Products ProductLister
	Activity ActivityLister
	Runner   ArchiveRunner
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is where "today" and "this month" are evaluated. Defaults to UTC.
	Location *time.Location
}

type server struct {
	Deps
}

func (s *server) now() time.Time {
	return s.Now().In(s.Location)
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	s := &server{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.With(RequireRole(RoleAdmin, RoleStaff)).Group(func(r chi.Router) {
			r.Get("/archives", s.listArchives)
			r.Get("/archives/{year}/{month}", s.getArchive)
			r.Get("/archives/{year}/{month}/report.txt", s.archiveReport)
			r.Get("/archives/{year}/{month}/export.csv", s.archiveCSV)
			r.Get("/archives/{year}/{month}/chart.png", s.archiveChart)
			r.Get("/dashboard", s.dashboard)
			r.Get("/budgets/overdue", s.overdueBudgets)
			r.Get("/clients", s.listClients)
			r.Get("/products", s.listProducts)
		})

		r.With(RequireRole(RoleAdmin)).Group(func(r chi.Router) {
			r.Post("/archives/run", s.runArchive)
			r.Get("/activity", s.listActivity)
		})
	})

	return otelhttp.NewHandler(r, "backoffice",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
