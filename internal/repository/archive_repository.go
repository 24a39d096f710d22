package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const archiveColumns = `id, month, year, total_revenue, total_expenses, net_profit, expenses, invoices, archived_at`

// ArchiveRepository persists monthly archive snapshots.
type ArchiveRepository struct {
	db database.PGXDB
}

// NewArchiveRepository creates a new ArchiveRepository.
func NewArchiveRepository(db database.PGXDB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// ExistsForPeriod reports whether an archive exists for month/year.
func (r *ArchiveRepository) ExistsForPeriod(ctx context.Context, month, year int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM monthly_archives WHERE month = $1 AND year = $2)
	`, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check archive existence: %w", err)
	}
	return exists, nil
}

// Create inserts a new archive. Returns ErrArchiveExists when the period is
// already archived.
func (r *ArchiveRepository) Create(ctx context.Context, archive *models.MonthlyArchive) error {
	expenses := archive.Expenses
	if expenses == nil {
		expenses = []models.Expense{}
	}
	invoices := archive.Invoices
	if invoices == nil {
		invoices = []models.Invoice{}
	}

	expensesJSON, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("failed to encode archived expenses: %w", err)
	}
	invoicesJSON, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("failed to encode archived invoices: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO monthly_archives (month, year, total_revenue, total_expenses, net_profit, expenses, invoices)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, archived_at
	`, archive.Month, archive.Year, archive.TotalRevenue, archive.TotalExpenses, archive.NetProfit,
		expensesJSON, invoicesJSON,
	).Scan(&archive.ID, &archive.ArchivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create archive %02d/%d: %w", archive.Month, archive.Year, ErrArchiveExists)
		}
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// GetByPeriod retrieves the archive for month/year.
func (r *ArchiveRepository) GetByPeriod(ctx context.Context, month, year int) (*models.MonthlyArchive, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+archiveColumns+` FROM monthly_archives WHERE month = $1 AND year = $2
	`, month, year)

	archive, err := scanArchive(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get archive %02d/%d: %w", month, year, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return archive, nil
}

// List returns archives newest period first.
func (r *ArchiveRepository) List(ctx context.Context, limit int) ([]models.MonthlyArchive, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+archiveColumns+`
		FROM monthly_archives
		ORDER BY year DESC, month DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	defer rows.Close()

	var archives []models.MonthlyArchive
	for rows.Next() {
		archive, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive: %w", err)
		}
		archives = append(archives, *archive)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archives: %w", err)
	}
	return archives, nil
}

func scanArchive(row pgx.Row) (*models.MonthlyArchive, error) {
	var archive models.MonthlyArchive
	var expensesJSON, invoicesJSON []byte

	if err := row.Scan(
		&archive.ID, &archive.Month, &archive.Year,
		&archive.TotalRevenue, &archive.TotalExpenses, &archive.NetProfit,
		&expensesJSON, &invoicesJSON, &archive.ArchivedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(expensesJSON, &archive.Expenses); err != nil {
		return nil, fmt.Errorf("failed to decode archived expenses: %w", err)
	}
	if err := json.Unmarshal(invoicesJSON, &archive.Invoices); err != nil {
		return nil, fmt.Errorf("failed to decode archived invoices: %w", err)
	}
	return &archive, nil
}
