// Package models defines the domain entities for the back-office.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency all amounts are recorded in.
const DefaultCurrency = "BRL"

// Budget statuses as stored by the quote screens.
const (
	BudgetStatusPending  = "Aguardando"
	BudgetStatusApproved = "Aprovado"
	BudgetStatusFinished = "Finalizado"
)

// Invoice statuses.
const (
	InvoiceStatusPending = "Pendente"
	InvoiceStatusPaid    = "Pago"
)

// Activity log actions.
const (
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionArchive = "archive"
)

// Activity log entity types.
const (
	EntityBudget  = "orcamento"
	EntityInvoice = "fatura"
	EntityExpense = "despesa"
	EntityArchive = "relatorio"
)

// Client is a customer that budgets and invoices may reference.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a catalogue entry quoted on budget lines.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BudgetItem is a single line of a price quote.
type BudgetItem struct {
	ID          string          `json:"id"`
	BudgetID    string          `json:"budget_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal returns price times quantity.
func (i BudgetItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Budget is a price quote ("orçamento") which may later become an invoice.
type Budget struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	ClientID     *string         `json:"client_id,omitempty"`
	ClientName   string          `json:"client_name"`
	Date         time.Time       `json:"date"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Items        []BudgetItem    `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Expense is a recorded outgoing cost. Category is free text and is often
// used to hold a client label.
type Expense struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Value       decimal.Decimal `json:"value"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Invoice is a recorded incoming payment, optionally linked to the budget
// that generated it.
type Invoice struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	ClientID   *string         `json:"client_id,omitempty"`
	ClientName string          `json:"client_name"`
	Value      decimal.Decimal `json:"value"`
	Date       time.Time       `json:"date"`
	BudgetID   *string         `json:"linked_budget_id,omitempty"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MonthlyArchive is the persisted snapshot of one closed month.
type MonthlyArchive struct {
	ID            string          `json:"id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Expenses      []Expense       `json:"expenses"`
	Invoices      []Invoice       `json:"invoices"`
	ArchivedAt    time.Time       `json:"archived_at"`
}

// ExpenseIDs returns the IDs of the archived expenses.
func (a *MonthlyArchive) ExpenseIDs() []string {
	ids := make([]string, 0, len(a.Expenses))
	for i := range a.Expenses {
		ids = append(ids, a.Expenses[i].ID)
	}
	return ids
}

// InvoiceIDs returns the IDs of the archived invoices.
func (a *MonthlyArchive) InvoiceIDs() []string {
	ids := make([]string, 0, len(a.Invoices))
	for i := range a.Invoices {
		ids = append(ids, a.Invoices[i].ID)
	}
	return ids
}

// ActivityLog records who did what to which entity.
type ActivityLog struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id,omitempty"`
	EntityName  string    `json:"entity_name,omitempty"`
	Description string    `json:"description,omitempty"`
	UserName    string    `json:"user_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
