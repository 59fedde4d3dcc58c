// Package memory is the in-process report destination used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"carteira/internal/export"
)

type Store struct {
	mu      sync.Mutex
	reports []export.MonthlyReport
}

func New() *Store {
	return &Store{}
}

// WriteMonthlyReport keeps the report and returns a synthetic reference.
func (s *Store) WriteMonthlyReport(_ context.Context, report export.MonthlyReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []export.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]export.MonthlyReport, len(s.reports))
	copy(out, s.reports)
	return out
}
