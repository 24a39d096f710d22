//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/models"
	"gitlab.com/yelinaung/backoffice/internal/report"
)

func main() {
	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }
	archive := &models.MonthlyArchive{
		Month: 2,
		Year:  2024,
		Expenses: []models.Expense{
			{Title: "Tinta sublimática", Category: "Insumos", Value: decimal.NewFromFloat(150.50), Date: day(3)},
			{Title: "Canecas brancas", Category: "Insumos", Value: decimal.NewFromFloat(130.50), Date: day(7)},
			{Title: "Frete", Category: "Transporte", Value: decimal.NewFromFloat(60.00), Date: day(12)},
			{Title: "Energia", Category: "Contas", Value: decimal.NewFromFloat(120.00), Date: day(15)},
			{Title: "Papel", Value: decimal.NewFromFloat(25.00), Date: day(20)},
		},
	}

	chartData, err := report.ArchiveChart(archive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	name := report.ArchiveFilename(archive.Month, archive.Year, "png")
	if err := os.WriteFile(name, chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Created %s - example archive expense chart\n", name)
}
