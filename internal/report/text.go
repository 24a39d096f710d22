package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const noClientLabel = "Sem Cliente"

// ArchiveText renders a monthly archive as a plain-text report.
func ArchiveText(a *models.MonthlyArchive) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Relatório Mensal - %s/%d\n\n", MonthName(time.Month(a.Month)), a.Year)
	b.WriteString("Resumo Financeiro:\n")
	fmt.Fprintf(&b, "Total de Receitas: %s\n", FormatBRL(a.TotalRevenue))
	fmt.Fprintf(&b, "Total de Despesas: %s\n", FormatBRL(a.TotalExpenses))
	fmt.Fprintf(&b, "Lucro Líquido: %s\n", FormatBRL(a.NetProfit))

	b.WriteString("\nFaturas:\n")
	if len(a.Invoices) == 0 {
		b.WriteString("Nenhuma fatura registrada neste mês.\n")
	}
	for i := range a.Invoices {
		inv := &a.Invoices[i]
		fmt.Fprintf(&b, "%s - %s - %s - %s\n", inv.Title, inv.ClientName, FormatBRL(inv.Value), FormatDate(inv.Date))
	}

	b.WriteString("\nDespesas:\n")
	if len(a.Expenses) == 0 {
		b.WriteString("Nenhuma despesa registrada neste mês.\n")
	}
	for i := range a.Expenses {
		e := &a.Expenses[i]
		fmt.Fprintf(&b, "%s - %s - %s - %s\n", e.Title, expenseLabel(e), FormatBRL(e.Value), FormatDate(e.Date))
	}

	return b.String()
}

func expenseLabel(e *models.Expense) string {
	if e.Category == "" {
		return noClientLabel
	}
	return e.Category
}

// BudgetText renders a budget as a plain-text quote sheet.
func BudgetText(budget *models.Budget) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Orçamento: %s\n", budget.Title)
	fmt.Fprintf(&b, "Cliente: %s\n", budget.ClientName)
	fmt.Fprintf(&b, "Data: %s\n", FormatDate(budget.Date))
	if budget.DeliveryDate != nil {
		fmt.Fprintf(&b, "Entrega: %s\n", FormatDate(*budget.DeliveryDate))
	}
	fmt.Fprintf(&b, "Status: %s\n\n", budget.Status)

	b.WriteString("Itens:\n")
	total := decimal.Zero
	for _, item := range budget.Items {
		sub := item.Subtotal()
		total = total.Add(sub)
		fmt.Fprintf(&b, "%dx %s - %s = %s\n", item.Quantity, item.ProductName, FormatBRL(item.Price), FormatBRL(sub))
	}
	if len(budget.Items) == 0 {
		b.WriteString("Nenhum item.\n")
	}
	if !budget.Total.IsZero() {
		total = budget.Total
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", FormatBRL(total))

	return b.String()
}
