package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func februaryArchive() *models.MonthlyArchive {
	return &models.MonthlyArchive{
		ID:            "arc-1",
		Month:         2,
		Year:          2024,
		TotalRevenue:  dec("300"),
		TotalExpenses: dec("150"),
		NetProfit:     dec("150"),
		Expenses: []models.Expense{
			{ID: "e1", Title: "Tinta", Category: "Maria", Value: dec("100"), Date: day(2024, 2, 10)},
			{ID: "e2", Title: "Frete", Value: dec("50"), Date: day(2024, 2, 20)},
		},
		Invoices: []models.Invoice{
			{ID: "i1", Title: "Kit festa", ClientName: "Maria", Value: dec("300"), Date: day(2024, 2, 15), Status: models.InvoiceStatusPaid},
		},
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"1.5", "R$ 1,50"},
		{"999.99", "R$ 999,99"},
		{"1000", "R$ 1.000,00"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-75.5", "-R$ 75,50"},
		{"-0.001", "R$ 0,00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, FormatBRL(dec(tt.in)))
		})
	}
}

func TestMonthName(t *testing.T) {
	require.Equal(t, "Janeiro", MonthName(time.January))
	require.Equal(t, "Março", MonthName(time.March))
	require.Equal(t, "Dezembro", MonthName(time.December))
	require.Empty(t, MonthName(0))
	require.Empty(t, MonthName(13))
}

func TestArchiveFilename(t *testing.T) {
	require.Equal(t, "relatorio_fevereiro_2024.csv", ArchiveFilename(2, 2024, "csv"))
	require.Equal(t, "relatorio_março_2023.txt", ArchiveFilename(3, 2023, "txt"))
}

func TestArchiveText(t *testing.T) {
	t.Run("renders summary and both lists", func(t *testing.T) {
		text := ArchiveText(februaryArchive())
		require.Contains(t, text, "Relatório Mensal - Fevereiro/2024")
		require.Contains(t, text, "Total de Receitas: R$ 300,00")
		require.Contains(t, text, "Total de Despesas: R$ 150,00")
		require.Contains(t, text, "Lucro Líquido: R$ 150,00")
		require.Contains(t, text, "Kit festa - Maria - R$ 300,00 - 15/02/2024")
		require.Contains(t, text, "Tinta - Maria - R$ 100,00 - 10/02/2024")
		require.Contains(t, text, "Frete - Sem Cliente - R$ 50,00 - 20/02/2024")
	})

	t.Run("renders empty lists", func(t *testing.T) {
		text := ArchiveText(&models.MonthlyArchive{Month: 1, Year: 2024})
		require.Contains(t, text, "Nenhuma fatura registrada neste mês.")
		require.Contains(t, text, "Nenhuma despesa registrada neste mês.")
		require.Contains(t, text, "Lucro Líquido: R$ 0,00")
	})
}

func TestBudgetText(t *testing.T) {
	delivery := day(2024, 3, 10)
	text := BudgetText(&models.Budget{
		Title:        "Festa",
		ClientName:   "Carla",
		Date:         day(2024, 3, 1),
		DeliveryDate: &delivery,
		Status:       models.BudgetStatusPending,
		Items: []models.BudgetItem{
			{ProductName: "Caneca", Quantity: 10, Price: dec("12.50")},
			{ProductName: "Camiseta", Quantity: 2, Price: dec("40")},
		},
	})
	require.Contains(t, text, "Orçamento: Festa")
	require.Contains(t, text, "Entrega: 10/03/2024")
	require.Contains(t, text, "10x Caneca - R$ 12,50 = R$ 125,00")
	require.Contains(t, text, "Total: R$ 205,00")
}

func TestArchiveCSV(t *testing.T) {
	t.Parallel()

	data, err := ArchiveCSV(februaryArchive())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, []string{"Tipo", "ID", "Data", "Título", "Cliente/Categoria", "Valor", "Status"}, records[0])
	require.Equal(t, []string{"fatura", "i1", "2024-02-15", "Kit festa", "Maria", "300.00", "Pago"}, records[1])
	require.Equal(t, []string{"despesa", "e1", "2024-02-10", "Tinta", "Maria", "100.00", ""}, records[2])
	require.Equal(t, "despesa", records[3][0])
}

func TestArchiveCSV_Empty(t *testing.T) {
	t.Parallel()

	data, err := ArchiveCSV(&models.MonthlyArchive{Month: 1, Year: 2024})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestArchiveChart(t *testing.T) {
	t.Run("renders PNG", func(t *testing.T) {
		data, err := ArchiveChart(februaryArchive())
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	})

	t.Run("fails without expenses", func(t *testing.T) {
		_, err := ArchiveChart(&models.MonthlyArchive{Month: 2, Year: 2024})
		require.ErrorIs(t, err, ErrNoExpenses)
	})
}

func TestExpensesByCategory(t *testing.T) {
	got := ExpensesByCategory([]models.Expense{
		{Category: "Papel", Value: dec("10")},
		{Category: "Tinta", Value: dec("30")},
		{Category: "Papel", Value: dec("-25")},
		{Value: dec("5")},
	})
	require.Len(t, got, 3)
	require.Equal(t, "Papel", got[0].Category)
	require.True(t, dec("35").Equal(got[0].Total))
	require.Equal(t, "Tinta", got[1].Category)
	require.Equal(t, "Sem Cliente", got[2].Category)
}

func TestMonthlyTotals(t *testing.T) {
	start, end := day(2024, 2, 1), day(2024, 2, 29)
	s := MonthlyTotals(
		[]models.Expense{
			{Value: dec("100"), Date: day(2024, 2, 1)},
			{Value: dec("-50"), Date: day(2024, 2, 29)},
			{Value: dec("999"), Date: day(2024, 3, 1)},
		},
		[]models.Invoice{
			{Value: dec("300"), Date: day(2024, 2, 15)},
			{Value: dec("999"), Date: day(2024, 1, 31)},
		},
		start, end,
	)
	require.True(t, dec("150").Equal(s.Expenses))
	require.True(t, dec("300").Equal(s.Revenue))
	require.True(t, dec("150").Equal(s.NetProfit))
	require.Equal(t, 2, s.ExpenseCount)
	require.Equal(t, 1, s.InvoiceCount)
}

func TestClientSpend(t *testing.T) {
	got := ClientSpend([]models.Invoice{
		{ClientName: "Ana", Value: dec("50")},
		{ClientName: "Bruno", Value: dec("200")},
		{ClientName: "Ana", Value: dec("100")},
		{Value: dec("10")},
	})
	require.Len(t, got, 3)
	require.Equal(t, "Bruno", got[0].ClientName)
	require.Equal(t, "Ana", got[1].ClientName)
	require.True(t, dec("150").Equal(got[1].Total))
	require.Equal(t, 2, got[1].Invoices)
	require.Equal(t, "Sem Cliente", got[2].ClientName)
}

func TestOverdueDeliveries(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	past := day(2024, 3, 9)
	today := day(2024, 3, 10)
	future := day(2024, 3, 11)

	budgets := []models.Budget{
		{ID: "late", Status: models.BudgetStatusPending, DeliveryDate: &past},
		{ID: "done", Status: models.BudgetStatusFinished, DeliveryDate: &past},
		{ID: "today", Status: models.BudgetStatusPending, DeliveryDate: &today},
		{ID: "future", Status: models.BudgetStatusApproved, DeliveryDate: &future},
		{ID: "undated", Status: models.BudgetStatusPending},
	}

	got := OverdueDeliveries(budgets, now)
	require.Len(t, got, 1)
	require.Equal(t, "late", got[0].ID)
}
