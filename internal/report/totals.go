package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

// Summary holds dashboard figures for a set of live rows.
type Summary struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	InvoiceCount int             `json:"invoice_count"`
	ExpenseCount int             `json:"expense_count"`
}

// MonthlyTotals sums the rows dated within [start, end], the same way a
// monthly archive does.
func MonthlyTotals(expenses []models.Expense, invoices []models.Invoice, start, end time.Time) Summary {
	s := Summary{Revenue: decimal.Zero, Expenses: decimal.Zero}
	for i := range expenses {
		if within(expenses[i].Date, start, end) {
			s.Expenses = s.Expenses.Add(expenses[i].Value.Abs())
			s.ExpenseCount++
		}
	}
	for i := range invoices {
		if within(invoices[i].Date, start, end) {
			s.Revenue = s.Revenue.Add(invoices[i].Value)
			s.InvoiceCount++
		}
	}
	s.NetProfit = s.Revenue.Sub(s.Expenses)
	return s
}

func within(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// ClientTotal is the invoiced amount of one client.
type ClientTotal struct {
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
	Invoices   int             `json:"invoices"`
}

// ClientSpend totals invoices per client, largest first.
func ClientSpend(invoices []models.Invoice) []ClientTotal {
	idx := make(map[string]int)
	var out []ClientTotal
	for i := range invoices {
		name := invoices[i].ClientName
		if name == "" {
			name = noClientLabel
		}
		j, ok := idx[name]
		if !ok {
			j = len(out)
			idx[name] = j
			out = append(out, ClientTotal{ClientName: name, Total: decimal.Zero})
		}
		out[j].Total = out[j].Total.Add(invoices[i].Value)
		out[j].Invoices++
	}
	slices.SortStableFunc(out, func(a, b ClientTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return out
}

// OverdueDeliveries returns budgets whose delivery date is before today and
// which are not finished. Dates are compared by calendar day in now's
// location.
func OverdueDeliveries(budgets []models.Budget, now time.Time) []models.Budget {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var out []models.Budget
	for _, b := range budgets {
		if b.DeliveryDate == nil || b.Status == models.BudgetStatusFinished {
			continue
		}
		d := *b.DeliveryDate
		delivery := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if delivery.Before(today) {
			out = append(out, b)
		}
	}
	return out
}
