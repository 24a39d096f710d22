package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const budgetColumns = `id, title, client_id, client_name, date, delivery_date, status, total, created_at, updated_at`

// BudgetRepository handles price quotes and their line items.
type BudgetRepository struct {
	db database.PGXDB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db database.PGXDB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a budget with its items in one transaction. When Total is
// zero it is computed from the item subtotals.
func (r *BudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	if budget.Status == "" {
		budget.Status = models.BudgetStatusPending
	}
	if budget.Total.IsZero() {
		total := decimal.Zero
		for _, item := range budget.Items {
			total = total.Add(item.Subtotal())
		}
		budget.Total = total
	}

	return database.RunInTx(ctx, r.db, func(db database.PGXDB) error {
		return r.insertBudget(ctx, db, budget)
	})
}

func (r *BudgetRepository) insertBudget(ctx context.Context, db database.PGXDB, budget *models.Budget) error {
	err := db.QueryRow(ctx, `
		INSERT INTO budgets (title, client_id, client_name, date, delivery_date, status, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, budget.Title, budget.ClientID, budget.ClientName, budget.Date, budget.DeliveryDate,
		budget.Status, budget.Total,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	for i := range budget.Items {
		item := &budget.Items[i]
		item.BudgetID = budget.ID
		err := db.QueryRow(ctx, `
			INSERT INTO budget_items (budget_id, product_name, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.BudgetID, item.ProductName, item.Quantity, item.Price, item.Subtotal()).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create budget item: %w", err)
		}
	}
	return nil
}

// GetWithItems retrieves a budget and its line items.
func (r *BudgetRepository) GetWithItems(ctx context.Context, id string) (*models.Budget, error) {
	budget, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get budget %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, budget_id, product_name, quantity, price
		FROM budget_items
		WHERE budget_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.BudgetItem
		if err := rows.Scan(&item.ID, &item.BudgetID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		budget.Items = append(budget.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget items: %w", err)
	}
	return budget, nil
}

// UpdateStatus changes the status of a budget.
func (r *BudgetRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE budgets SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update budget status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update budget %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListWithDelivery returns budgets that have a delivery date on or before
// the given day, soonest first.
func (r *BudgetRepository) ListWithDelivery(ctx context.Context, until time.Time) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE delivery_date IS NOT NULL AND delivery_date <= $1
		ORDER BY delivery_date, id
	`, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets by delivery date: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(
		&b.ID, &b.Title, &b.ClientID, &b.ClientName, &b.Date, &b.DeliveryDate,
		&b.Status, &b.Total, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
