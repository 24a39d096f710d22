package archive

import (
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

// Totals are the computed figures of one archived month.
type Totals struct {
	Revenue   decimal.Decimal
	Expenses  decimal.Decimal
	NetProfit decimal.Decimal
}

// Aggregate sums a month's expenses and invoices. Expense values count by
// absolute value; invoice values are summed as stored, so a negative invoice
// nets against revenue as a credit note.
func Aggregate(expenses []models.Expense, invoices []models.Invoice) Totals {
	t := Totals{Revenue: decimal.Zero, Expenses: decimal.Zero}
	for i := range expenses {
		t.Expenses = t.Expenses.Add(expenses[i].Value.Abs())
	}
	for i := range invoices {
		t.Revenue = t.Revenue.Add(invoices[i].Value)
	}
	t.NetProfit = t.Revenue.Sub(t.Expenses)
	return t
}
