package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"gitlab.com/yelinaung/backoffice/internal/models"
)

const (
	kindInvoice = "fatura"
	kindExpense = "despesa"
)

// ArchiveCSV exports both snapshot lists of an archive as one CSV file.
// Invoices come first; expense values are written as stored.
func ArchiveCSV(a *models.MonthlyArchive) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Tipo", "ID", "Data", "Título", "Cliente/Categoria", "Valor", "Status"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range a.Invoices {
		inv := &a.Invoices[i]
		row := []string{
			kindInvoice,
			inv.ID,
			inv.Date.Format("2006-01-02"),
			inv.Title,
			inv.ClientName,
			inv.Value.StringFixed(2),
			inv.Status,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	for i := range a.Expenses {
		e := &a.Expenses[i]
		row := []string{
			kindExpense,
			e.ID,
			e.Date.Format("2006-01-02"),
			e.Title,
			e.Category,
			e.Value.StringFixed(2),
			"",
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
