package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"carteira/internal/core"
	"carteira/internal/export"
	applog "carteira/internal/log"
	"carteira/internal/recurrence"
	"carteira/internal/store"

	"github.com/shopspring/decimal"
)

type overviewView struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Balance         decimal.Decimal `json:"balance"`
	BalanceDisplay  string          `json:"balanceDisplay"`
	Transactions    int             `json:"transactions"`
	Subscriptions   summaryView     `json:"subscriptions"`
	AccountBalances decimal.Decimal `json:"accountBalances"`
}

// handleDashboardOverview aggregates one month of cached transactions
// with the recurring commitments summary.
func (s *Server) handleDashboardOverview(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	today := core.Today(time.Now())

	key := fmt.Sprintf("%04d-%02d:t%d:a%d:s%d", year, month,
		s.stores.Transactions.Generation(),
		s.stores.Accounts.Generation(),
		s.stores.Subscriptions.Generation())
	if view, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	income := decimal.Zero
	expense := decimal.Zero
	count := 0
	for _, t := range s.stores.Transactions.Snapshot() {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		count++
		switch t.Type {
		case core.Receita:
			income = income.Add(t.Amount)
		case core.Despesa:
			expense = expense.Add(t.Amount)
		}
	}

	accounts := decimal.Zero
	for _, a := range s.stores.Accounts.Snapshot() {
		accounts = accounts.Add(a.Balance)
	}

	balance := income.Sub(expense)
	view := overviewView{
		Year:            year,
		Month:           month,
		Income:          income,
		Expense:         expense,
		Balance:         balance,
		BalanceDisplay:  core.FormatBRL(balance),
		Transactions:    count,
		Subscriptions:   summaryToView(recurrence.Summarize(today, s.stores.Subscriptions.Snapshot())),
		AccountBalances: accounts,
	}
	s.overviewCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusNotImplemented, "no report destination configured")
		return
	}

	year, month := parseYearMonth(r)
	report := export.BuildMonthlyReport(year, month,
		s.stores.Transactions.Snapshot(),
		s.stores.Categories.Snapshot())

	ref, err := s.reports.WriteMonthlyReport(r.Context(), report)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed exporting report",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		writeError(w, http.StatusBadGateway, "report export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": month,
		"rows":  len(report.Rows),
		"ref":   ref,
	})
}

// handleRefresh re-fetches every store from the backend. A concurrent
// local mutation makes the refresh stale, which maps to 409 so the
// caller can retry.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusNotImplemented, "no backend configured for refresh")
		return
	}

	if err := s.stores.RefreshAll(r.Context(), s.refresher); err != nil {
		if errors.Is(err, store.ErrStaleRefresh) {
			writeError(w, http.StatusConflict, "cache changed during refresh, retry")
			return
		}
		writeBackendError(w, r, "refresh stores", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
