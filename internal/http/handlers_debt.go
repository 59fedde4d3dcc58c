package http

import (
	"net/http"
	"strconv"
	"time"

	"carteira/internal/api"
	"carteira/internal/core"
	"carteira/internal/installment"
	"carteira/internal/storage"

	"github.com/shopspring/decimal"
)

type debtRequest struct {
	DebtorID             int64                     `json:"debtorId"`
	Description          string                    `json:"description"`
	TotalAmount          decimal.Decimal           `json:"totalAmount"`
	DueDate              *core.Date                `json:"dueDate"`
	IsInstallmentPlan    bool                      `json:"isInstallmentPlan"`
	InstallmentCount     int                       `json:"installmentCount"`
	InstallmentFrequency core.InstallmentFrequency `json:"installmentFrequency"`
	FirstInstallmentDate *core.Date                `json:"firstInstallmentDate"`
}

// toCore translates the wire flags into the payment-mode variant. The
// flags never travel past this point.
func (req debtRequest) toCore() core.Debt {
	debt := core.Debt{
		DebtorID:    req.DebtorID,
		Description: sanitizeInput(req.Description),
		TotalAmount: req.TotalAmount,
	}
	if req.IsInstallmentPlan {
		plan := core.InstallmentPlan{
			Count:     req.InstallmentCount,
			Frequency: req.InstallmentFrequency,
		}
		if req.FirstInstallmentDate != nil {
			plan.FirstDate = *req.FirstInstallmentDate
		}
		debt.Mode = plan
	} else {
		mode := core.OneOff{}
		if req.DueDate != nil {
			mode.DueDate = *req.DueDate
		}
		debt.Mode = mode
	}
	return debt
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	today := core.Today(time.Now())
	debts := s.stores.Debts.Snapshot()

	if v := r.URL.Query().Get("debtorId"); v != "" {
		debtorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid debtorId")
			return
		}
		filtered := debts[:0:0]
		for _, d := range debts {
			if d.DebtorID == debtorID {
				filtered = append(filtered, d)
			}
		}
		debts = filtered
	}

	views := make([]debtView, 0, len(debts))
	for _, d := range debts {
		views = append(views, debtToView(today, d))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	debt := req.toCore()
	if err := debt.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Installment plans get their schedule computed locally so the app
	// can show it before the backend confirms.
	if plan, ok := debt.Mode.(core.InstallmentPlan); ok {
		installments, err := installment.Plan(debt.TotalAmount, plan.Count, plan.Frequency, plan.FirstDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		debt.Installments = installments
	}

	today := core.Today(time.Now())
	created, err := s.backend.CreateDebt(r.Context(), debt)
	if err == nil {
		s.stores.Debts.Append(created)
		writeJSON(w, http.StatusCreated, debtToView(today, created))
		return
	}

	if api.Unreachable(err) && s.outbox != nil {
		outboxID, qErr := s.queueOffline(r.Context(), storage.EntityDebts, storage.OpCreate, api.WireDebt(debt))
		if qErr != nil {
			writeError(w, http.StatusServiceUnavailable, qErr.Error())
			return
		}
		s.stores.Debts.Append(debt)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"debt":     debtToView(today, debt),
			"outboxId": outboxID,
		})
		return
	}

	writeBackendError(w, r, "create debt", err)
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	today := core.Today(time.Now())

	debt, ok := s.stores.Debts.Find(func(d core.Debt) bool { return d.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}

	views := make([]installmentView, 0, len(debt.Installments))
	for _, inst := range debt.Installments {
		views = append(views, installmentToView(today, inst))
	}
	p := installment.Progress(debt.Installments)
	writeJSON(w, http.StatusOK, map[string]any{
		"installments": views,
		"progress":     progressView{Paid: p.Paid, Total: p.Total, Percentage: p.Percentage},
	})
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	number := int(pathInt(r, "number"))
	now := time.Now()
	today := core.Today(now)

	debt, ok := s.stores.Debts.Find(func(d core.Debt) bool { return d.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}

	idx := -1
	for i, inst := range debt.Installments {
		if inst.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "installment not found")
		return
	}

	paid, err := installment.MarkPaid(debt.Installments[idx], now)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if err := s.backend.MarkInstallmentPaid(r.Context(), id, number, today); err != nil {
		if api.Unreachable(err) && s.outbox != nil {
			updated := debt
			updated.Installments = append([]core.Installment(nil), debt.Installments...)
			updated.Installments[idx] = paid
			if _, qErr := s.queueOffline(r.Context(), storage.EntityDebts, storage.OpUpdate, api.WireDebt(updated)); qErr != nil {
				writeError(w, http.StatusServiceUnavailable, qErr.Error())
				return
			}
			s.stores.Debts.Update(func(d core.Debt) bool { return d.ID == id }, updated)
			writeJSON(w, http.StatusAccepted, installmentToView(today, paid))
			return
		}
		writeBackendError(w, r, "mark installment paid", err)
		return
	}

	debt.Installments = append([]core.Installment(nil), debt.Installments...)
	debt.Installments[idx] = paid
	s.stores.Debts.Update(func(d core.Debt) bool { return d.ID == id }, debt)
	writeJSON(w, http.StatusOK, installmentToView(today, paid))
}

// handleCreatePayment records a partial payment against a debt.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")

	var req struct {
		Amount   decimal.Decimal `json:"amount"`
		PaidDate *core.Date      `json:"paidDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount.Sign() <= 0 {
		writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error())
		return
	}

	if _, ok := s.stores.Debts.Find(func(d core.Debt) bool { return d.ID == id }); !ok {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}

	paidDate := core.Today(time.Now())
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}

	if err := s.backend.CreatePayment(r.Context(), id, req.Amount, paidDate); err != nil {
		if api.Unreachable(err) && s.outbox != nil {
			outboxID, qErr := s.queueOffline(r.Context(), storage.EntityPayments, storage.OpCreate, api.WirePayment(id, req.Amount, paidDate))
			if qErr != nil {
				writeError(w, http.StatusServiceUnavailable, qErr.Error())
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]any{"outboxId": outboxID})
			return
		}
		writeBackendError(w, r, "create payment", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type previewRequest struct {
	TotalAmount decimal.Decimal           `json:"totalAmount"`
	Count       int                       `json:"count"`
	Frequency   core.InstallmentFrequency `json:"frequency"`
	FirstDate   core.Date                 `json:"firstDate"`
}

// handlePreviewInstallments plans a schedule without creating anything.
func (s *Server) handlePreviewInstallments(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	installments, err := installment.Plan(req.TotalAmount, req.Count, req.Frequency, req.FirstDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	today := core.Today(time.Now())
	views := make([]installmentView, 0, len(installments))
	for _, inst := range installments {
		views = append(views, installmentToView(today, inst))
	}
	writeJSON(w, http.StatusOK, views)
}
