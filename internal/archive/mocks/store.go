// Package mocks provides in-memory stores for testing the archive pipeline.
package mocks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"gitlab.com/yelinaung/backoffice/internal/models"
	"gitlab.com/yelinaung/backoffice/internal/repository"
)

// Store holds live expenses, live invoices and archives in memory and
// records every call in order.
type Store struct {
	mu sync.RWMutex

	expenses []models.Expense
	invoices []models.Invoice
	archives []models.MonthlyArchive
	activity []models.ActivityLog
	calls    []string
	nextID   int

	// ExistsError allows simulating ExistsForPeriod failures.
	ExistsError error
	// ListExpensesError allows simulating expense read failures.
	ListExpensesError error
	// ListInvoicesError allows simulating invoice read failures.
	ListInvoicesError error
	// CreateError allows simulating archive insert failures.
	CreateError error
	// DeleteExpensesError allows simulating expense prune failures.
	DeleteExpensesError error
	// DeleteInvoicesError allows simulating invoice prune failures.
	DeleteInvoicesError error
	// ActivityError allows simulating activity log failures.
	ActivityError error
	// SkipExistenceCheck makes ExistsForPeriod always report false, to
	// reproduce a racing writer that the unique key must catch.
	SkipExistenceCheck bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// AddExpense inserts a live expense, assigning an ID when empty.
func (s *Store) AddExpense(e models.Expense) models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.newID("exp")
	}
	s.expenses = append(s.expenses, e)
	return e
}

// AddInvoice inserts a live invoice, assigning an ID when empty.
func (s *Store) AddInvoice(inv models.Invoice) models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = s.newID("inv")
	}
	s.invoices = append(s.invoices, inv)
	return inv
}

func (s *Store) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Store) record(call string) {
	s.calls = append(s.calls, call)
}

// Calls returns the recorded call names in order.
func (s *Store) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calls)
}

// CallCount returns the number of recorded calls.
func (s *Store) CallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// Expenses returns the live expenses.
func (s *Store) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenses)
}

// Invoices returns the live invoices.
func (s *Store) Invoices() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.invoices)
}

// Archives returns the stored archives.
func (s *Store) Archives() []models.MonthlyArchive {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.archives)
}

// ActivityEntries returns the recorded activity log.
func (s *Store) ActivityEntries() []models.ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.activity)
}

// ExpenseTable returns a view implementing the expense store.
func (s *Store) ExpenseTable() *ExpenseTable { return &ExpenseTable{s: s} }

// InvoiceTable returns a view implementing the invoice store.
func (s *Store) InvoiceTable() *InvoiceTable { return &InvoiceTable{s: s} }

// ArchiveTable returns a view implementing the archive store.
func (s *Store) ArchiveTable() *ArchiveTable { return &ArchiveTable{s: s} }

// ActivityTable returns a view implementing the activity recorder.
func (s *Store) ActivityTable() *ActivityTable { return &ActivityTable{s: s} }

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// ExpenseTable is the expense view of Store.
type ExpenseTable struct{ s *Store }

// ListByDateRange returns live expenses dated within [start, end].
func (t *ExpenseTable) ListByDateRange(_ context.Context, start, end time.Time) ([]models.Expense, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("expenses.list")
	if t.s.ListExpensesError != nil {
		return nil, t.s.ListExpensesError
	}
	var out []models.Expense
	for _, e := range t.s.expenses {
		if inRange(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteByIDs removes the listed expenses.
func (t *ExpenseTable) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("expenses.delete")
	if t.s.DeleteExpensesError != nil {
		return 0, t.s.DeleteExpensesError
	}
	before := len(t.s.expenses)
	t.s.expenses = slices.DeleteFunc(t.s.expenses, func(e models.Expense) bool {
		return slices.Contains(ids, e.ID)
	})
	return int64(before - len(t.s.expenses)), nil
}

// InvoiceTable is the invoice view of Store.
type InvoiceTable struct{ s *Store }

// ListByDateRange returns live invoices dated within [start, end].
func (t *InvoiceTable) ListByDateRange(_ context.Context, start, end time.Time) ([]models.Invoice, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("invoices.list")
	if t.s.ListInvoicesError != nil {
		return nil, t.s.ListInvoicesError
	}
	var out []models.Invoice
	for _, inv := range t.s.invoices {
		if inRange(inv.Date, start, end) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// DeleteByIDs removes the listed invoices.
func (t *InvoiceTable) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("invoices.delete")
	if t.s.DeleteInvoicesError != nil {
		return 0, t.s.DeleteInvoicesError
	}
	before := len(t.s.invoices)
	t.s.invoices = slices.DeleteFunc(t.s.invoices, func(inv models.Invoice) bool {
		return slices.Contains(ids, inv.ID)
	})
	return int64(before - len(t.s.invoices)), nil
}

// ArchiveTable is the archive view of Store. Like the real table it refuses
// a second archive for the same period.
type ArchiveTable struct{ s *Store }

// ExistsForPeriod reports whether an archive exists for the period.
func (t *ArchiveTable) ExistsForPeriod(_ context.Context, month, year int) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("archives.exists")
	if t.s.ExistsError != nil {
		return false, t.s.ExistsError
	}
	if t.s.SkipExistenceCheck {
		return false, nil
	}
	return t.s.hasArchive(month, year), nil
}

func (s *Store) hasArchive(month, year int) bool {
	for _, a := range s.archives {
		if a.Month == month && a.Year == year {
			return true
		}
	}
	return false
}

// Create stores an archive, returning repository.ErrArchiveExists for a
// duplicate period.
func (t *ArchiveTable) Create(_ context.Context, archive *models.MonthlyArchive) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("archives.create")
	if t.s.CreateError != nil {
		return t.s.CreateError
	}
	if t.s.hasArchive(archive.Month, archive.Year) {
		return fmt.Errorf("failed to create archive: %w", repository.ErrArchiveExists)
	}
	archive.ID = t.s.newID("arc")
	archive.ArchivedAt = time.Now()
	t.s.archives = append(t.s.archives, *archive)
	return nil
}

// ActivityTable is the activity log view of Store.
type ActivityTable struct{ s *Store }

// Create appends an activity entry.
func (t *ActivityTable) Create(_ context.Context, entry *models.ActivityLog) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("activity.create")
	if t.s.ActivityError != nil {
		return t.s.ActivityError
	}
	entry.ID = t.s.newID("log")
	entry.Timestamp = time.Now()
	t.s.activity = append(t.s.activity, *entry)
	return nil
}

// GetByPeriod returns the archive for a period or repository.ErrNotFound.
func (t *ArchiveTable) GetByPeriod(_ context.Context, month, year int) (*models.MonthlyArchive, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("archives.get")
	for i := range t.s.archives {
		if t.s.archives[i].Month == month && t.s.archives[i].Year == year {
			a := t.s.archives[i]
			return &a, nil
		}
	}
	return nil, fmt.Errorf("failed to get archive: %w", repository.ErrNotFound)
}

// List returns archives newest period first.
func (t *ArchiveTable) List(_ context.Context, limit int) ([]models.MonthlyArchive, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("archives.list")
	out := slices.Clone(t.s.archives)
	slices.SortFunc(out, func(a, b models.MonthlyArchive) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return b.Month - a.Month
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListRecent returns activity entries newest first.
func (t *ActivityTable) ListRecent(_ context.Context, limit int) ([]models.ActivityLog, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.record("activity.list")
	out := slices.Clone(t.s.activity)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
