package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/archive/mocks"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

type fakeBudgets struct {
	budgets []models.Budget
	err     error
	until   time.Time
}

func (f *fakeBudgets) ListWithDelivery(_ context.Context, until time.Time) ([]models.Budget, error) {
	f.until = until
	return f.budgets, f.err
}

type fakeCatalog struct {
	clients  []models.Client
	products []models.Product
	err      error
}

type fakeClients struct{ c *fakeCatalog }

func (f fakeClients) List(context.Context) ([]models.Client, error) { return f.c.clients, f.c.err }

type fakeProducts struct{ c *fakeCatalog }

func (f fakeProducts) List(context.Context) ([]models.Product, error) { return f.c.products, f.c.err }

type testEnv struct {
	store   *mocks.Store
	budgets *fakeBudgets
	catalog *fakeCatalog
	handler http.Handler
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := mocks.NewStore()
	budgets := &fakeBudgets{}
	catalog := &fakeCatalog{}
	runner := archive.New(store.ArchiveTable(), store.ExpenseTable(), store.InvoiceTable(),
		archive.WithActivityLog(store.ActivityTable()))

	return &testEnv{
		store:   store,
		budgets: budgets,
		catalog: catalog,
		handler: NewRouter(Deps{
			Archives: store.ArchiveTable(),
			Expenses: store.ExpenseTable(),
			Invoices: store.InvoiceTable(),
			Budgets:  budgets,
			Clients:  fakeClients{catalog},
			Products: fakeProducts{catalog},
			Activity: store.ActivityTable(),
			Runner:   runner,
			Now:      func() time.Time { return fixedNow },
		}),
	}
}

func (e *testEnv) do(method, path, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req.Header.Set(RoleHeader, role)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedFebruary() {
	e.store.AddExpense(models.Expense{Title: "Tinta", Category: "Papelaria", Value: decimal.NewFromInt(100), Date: day(2024, 2, 10)})
	e.store.AddExpense(models.Expense{Title: "Frete", Value: decimal.NewFromInt(50), Date: day(2024, 2, 20)})
	e.store.AddInvoice(models.Invoice{Title: "Kit festa", ClientName: "Maria", Value: decimal.NewFromInt(300), Date: day(2024, 2, 15)})
}

func (e *testEnv) archiveFebruary(t *testing.T) {
	t.Helper()
	e.seedFebruary()
	rec := e.do(http.MethodPost, "/api/archives/run?year=2024&month=2", RoleAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestRoles(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing role is unauthorized", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/archives", "").Code)
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/archives", "guest").Code)
	})

	t.Run("staff can read", func(t *testing.T) {
		require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/archives", RoleStaff).Code)
	})

	t.Run("role is case-insensitive", func(t *testing.T) {
		require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/archives", " Admin ").Code)
	})

	t.Run("staff cannot trigger archive", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/archives/run", RoleStaff).Code)
		require.NotContains(t, env.store.Calls(), "archives.exists")
	})

	t.Run("staff cannot read activity", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/activity", RoleStaff).Code)
	})
}

func TestRunArchive(t *testing.T) {
	t.Run("archives explicit period", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedFebruary()

		rec := env.do(http.MethodPost, "/api/archives/run?year=2024&month=2", RoleAdmin)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp runResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "2024-02", resp.Period)
		require.Equal(t, string(archive.StatusArchived), resp.Status)
		require.Equal(t, int64(2), resp.ExpensesPruned)
		require.Equal(t, int64(1), resp.InvoicesPruned)
		require.NotEmpty(t, resp.ArchiveID)
	})

	t.Run("defaults to previous month regardless of day", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedFebruary()

		rec := env.do(http.MethodPost, "/api/archives/run", RoleAdmin)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), `"period":"2024-02"`)
	})

	t.Run("second run reports already archived", func(t *testing.T) {
		env := newTestEnv(t)
		env.archiveFebruary(t)

		rec := env.do(http.MethodPost, "/api/archives/run?year=2024&month=2", RoleAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"already_archived"`)
		require.Len(t, env.store.Archives(), 1)
	})

	t.Run("invalid period is bad request", func(t *testing.T) {
		env := newTestEnv(t)
		require.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/archives/run?year=2024&month=13", RoleAdmin).Code)
		require.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/archives/run?year=2024", RoleAdmin).Code)
		require.Zero(t, env.store.CallCount())
	})

	t.Run("write failure is server error", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedFebruary()
		env.store.CreateError = errors.New("disk full")

		rec := env.do(http.MethodPost, "/api/archives/run?year=2024&month=2", RoleAdmin)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), `"step":"write"`)
		require.Contains(t, rec.Body.String(), "disk full")
		require.Len(t, env.store.Expenses(), 2)
	})
}

func TestArchiveReads(t *testing.T) {
	env := newTestEnv(t)
	env.archiveFebruary(t)

	t.Run("lists summaries", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/archives", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []archiveSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		require.Equal(t, "150.00", got[0].NetProfit)
		require.Equal(t, 2, got[0].ExpenseCount)
	})

	t.Run("gets archive JSON", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/archives/2024/2", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.MonthlyArchive
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, 2, got.Month)
		require.Len(t, got.Expenses, 2)
		require.True(t, decimal.NewFromInt(300).Equal(got.TotalRevenue))
	})

	t.Run("missing archive is not found", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/archives/2024/1", RoleStaff).Code)
	})

	t.Run("bad period is bad request", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/archives/2024/0", RoleStaff).Code)
		require.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/archives/abc/2", RoleStaff).Code)
	})

	t.Run("renders text report", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/archives/2024/2/report.txt", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		require.Contains(t, rec.Body.String(), "Relatório Mensal - Fevereiro/2024")
	})

	t.Run("exports CSV", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/archives/2024/2/export.csv", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio_fevereiro_2024.csv")
		require.Equal(t, 4, strings.Count(rec.Body.String(), "\n"))
	})

	t.Run("renders chart", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/archives/2024/2/chart.png", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddExpense(models.Expense{Value: decimal.NewFromInt(40), Date: day(2024, 3, 2)})
	env.store.AddInvoice(models.Invoice{ClientName: "Ana", Value: decimal.NewFromInt(100), Date: day(2024, 3, 5)})
	env.store.AddInvoice(models.Invoice{ClientName: "Ana", Value: decimal.NewFromInt(20), Date: day(2024, 3, 9)})
	env.store.AddInvoice(models.Invoice{ClientName: "Bia", Value: decimal.NewFromInt(999), Date: day(2024, 2, 9)})

	rec := env.do(http.MethodGet, "/api/dashboard", RoleStaff)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "2024-03", got.Period)
	require.True(t, decimal.NewFromInt(120).Equal(got.Summary.Revenue))
	require.True(t, decimal.NewFromInt(80).Equal(got.Summary.NetProfit))
	require.Len(t, got.Clients, 1)
	require.Equal(t, "Ana", got.Clients[0].ClientName)
}

func TestOverdueBudgets(t *testing.T) {
	env := newTestEnv(t)
	past := day(2024, 3, 1)
	env.budgets.budgets = []models.Budget{
		{ID: "late", Status: models.BudgetStatusPending, DeliveryDate: &past},
		{ID: "done", Status: models.BudgetStatusFinished, DeliveryDate: &past},
	}

	rec := env.do(http.MethodGet, "/api/budgets/overdue", RoleStaff)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, day(2024, 3, 10), env.budgets.until)

	var got []models.Budget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "late", got[0].ID)

	t.Run("store failure is server error", func(t *testing.T) {
		env.budgets.err = errors.New("down")
		require.Equal(t, http.StatusInternalServerError, env.do(http.MethodGet, "/api/budgets/overdue", RoleStaff).Code)
	})
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	t.Run("empty lists are arrays", func(t *testing.T) {
		for _, path := range []string{"/api/clients", "/api/products"} {
			rec := env.do(http.MethodGet, path, RoleStaff)
			require.Equal(t, http.StatusOK, rec.Code, path)
			require.JSONEq(t, "[]", rec.Body.String(), path)
		}
	})

	t.Run("lists clients and products", func(t *testing.T) {
		env.catalog.clients = []models.Client{{ID: "c1", Name: "Maria"}}
		env.catalog.products = []models.Product{{ID: "p1", Name: "Caneca", Price: decimal.NewFromInt(25)}}

		var clients []models.Client
		rec := env.do(http.MethodGet, "/api/clients", RoleAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
		require.Equal(t, "Maria", clients[0].Name)

		var products []models.Product
		rec = env.do(http.MethodGet, "/api/products", RoleStaff)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
		require.True(t, decimal.NewFromInt(25).Equal(products[0].Price))
	})

	t.Run("requires a role", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/clients", "").Code)
	})

	t.Run("store failure is server error", func(t *testing.T) {
		env.catalog.err = errors.New("down")
		require.Equal(t, http.StatusInternalServerError, env.do(http.MethodGet, "/api/clients", RoleStaff).Code)
		require.Equal(t, http.StatusInternalServerError, env.do(http.MethodGet, "/api/products", RoleStaff).Code)
	})
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/activity", RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	env.archiveFebruary(t)
	rec = env.do(http.MethodGet, "/api/activity?limit=5", RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.ActivityLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, models.ActionArchive, got[0].Action)
	require.Equal(t, "2024-02", got[0].EntityName)
}
