package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

// ErrNoExpenses is returned when there is nothing to chart.
var ErrNoExpenses = errors.New("no expenses to chart")

// CategoryTotal is the summed expense value of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// ArchiveChart renders a pie chart of the archive's expenses per category.
// Returns PNG image bytes.
func ArchiveChart(a *models.MonthlyArchive) ([]byte, error) {
	if len(a.Expenses) == 0 {
		return nil, ErrNoExpenses
	}

	totals := ExpensesByCategory(a.Expenses)
	values := make([]float64, 0, len(totals))
	names := make([]string, 0, len(totals))
	for _, ct := range totals {
		names = append(names, ct.Category)
		values = append(values, ct.Total.InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Despesas - %s/%d", MonthName(time.Month(a.Month)), a.Year),
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// ExpensesByCategory groups expenses by category, largest total first.
// Values count by absolute amount and an empty category is "Sem Cliente".
func ExpensesByCategory(expenses []models.Expense) []CategoryTotal {
	byName := make(map[string]decimal.Decimal)
	for i := range expenses {
		name := expenseLabel(&expenses[i])
		byName[name] = byName[name].Add(expenses[i].Value.Abs())
	}

	out := make([]CategoryTotal, 0, len(byName))
	for name, total := range byName {
		out = append(out, CategoryTotal{Category: name, Total: total})
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
