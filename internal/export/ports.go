// Package export builds monthly spreadsheet reports from cached data.
package export

import (
	"context"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// ReportWriter is the outbound port for report destinations.
	ReportWriter interface {
		// WriteMonthlyReport publishes a report and returns a
		// destination-specific reference to it.
		WriteMonthlyReport(ctx context.Context, report MonthlyReport) (ref string, err error)
	}

	ReportRow struct {
		Date        core.Date
		Description string
		Category    string
		Type        core.TransactionType
		Amount      decimal.Decimal
	}

	MonthlyReport struct {
		Year    int
		Month   int // 1-12
		Rows    []ReportRow
		Income  decimal.Decimal
		Expense decimal.Decimal
		Balance decimal.Decimal
	}
)
