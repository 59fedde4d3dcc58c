package export

import (
	"sort"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// BuildMonthlyReport assembles the report for one month from cached
// transactions and categories. Pure aggregation over already-fetched
// data; amounts stay unrounded until the writer formats them.
func BuildMonthlyReport(year, month int, transactions []core.Transaction, categories []core.Category) MonthlyReport {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	report := MonthlyReport{
		Year:    year,
		Month:   month,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	for _, t := range transactions {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		report.Rows = append(report.Rows, ReportRow{
			Date:        t.Date,
			Description: t.Description,
			Category:    names[t.CategoryID],
			Type:        t.Type,
			Amount:      t.Amount,
		})
		switch t.Type {
		case core.Receita:
			report.Income = report.Income.Add(t.Amount)
		case core.Despesa:
			report.Expense = report.Expense.Add(t.Amount)
		}
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Date.Before(report.Rows[j].Date.Time)
	})

	report.Balance = report.Income.Sub(report.Expense)
	return report
}
