package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const invoiceColumns = `id, title, client_id, client_name, value, date, budget_id, status, created_at, updated_at`

// InvoiceRepository handles invoice database operations.
type InvoiceRepository struct {
	db database.PGXDB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db database.PGXDB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create adds a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (title, client_id, client_name, value, date, budget_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, invoice.Title, invoice.ClientID, invoice.ClientName, invoice.Value,
		invoice.Date, invoice.BudgetID, invoice.Status,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, fmt.Errorf("failed to get invoice %s: %w", id, ErrNotFound)
	}
	return &invoices[0], nil
}

// ListByDateRange retrieves invoices whose date falls within [start, end],
// both bounds inclusive.
func (r *InvoiceRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Invoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE date >= $1 AND date <= $2
		ORDER BY date, created_at, id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by date range: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// UpdateStatus changes the status of an invoice.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update invoice %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an invoice by ID.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// DeleteByIDs removes the given invoices and returns the number of deleted rows.
func (r *InvoiceRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoices: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanInvoices(rows rowScanner) ([]models.Invoice, error) {
	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		var value pgtype.Numeric

		if err := rows.Scan(
			&inv.ID, &inv.Title, &inv.ClientID, &inv.ClientName, &value,
			&inv.Date, &inv.BudgetID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		inv.Value = models.ParseAmount(value)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}
