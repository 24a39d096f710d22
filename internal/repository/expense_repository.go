package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const expenseColumns = `id, title, category, description, value, date, created_at, updated_at`

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (title, category, description, value, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, expense.Title, nilIfEmpty(expense.Category), nilIfEmpty(expense.Description),
		expense.Value, expense.Date,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	rows, err := r.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("failed to get expense %s: %w", id, ErrNotFound)
	}
	return &expenses[0], nil
}

// ListByDateRange retrieves expenses whose date falls within [start, end],
// both bounds inclusive.
func (r *ExpenseRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE date >= $1 AND date <= $2
		ORDER BY date, created_at, id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by date range: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// Update modifies an existing expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE expenses SET
			title = $2,
			category = $3,
			description = $4,
			value = $5,
			date = $6,
			updated_at = NOW()
		WHERE id = $1
	`, expense.ID, expense.Title, nilIfEmpty(expense.Category), nilIfEmpty(expense.Description),
		expense.Value, expense.Date)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update expense %s: %w", expense.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an expense by ID.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// DeleteByIDs removes the given expenses and returns the number of deleted rows.
func (r *ExpenseRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanExpenses scans expense rows. NULL and NaN values are coerced to zero.
func scanExpenses(rows rowScanner) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		var category, description *string
		var value pgtype.Numeric

		if err := rows.Scan(
			&exp.ID, &exp.Title, &category, &description, &value,
			&exp.Date, &exp.CreatedAt, &exp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		exp.Category = derefString(category)
		exp.Description = derefString(description)
		exp.Value = models.ParseAmount(value)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
