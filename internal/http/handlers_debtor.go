package http

import (
	"net/http"

	"carteira/internal/api"
	"carteira/internal/core"
	"carteira/internal/storage"
)

func (s *Server) handleListDebtors(w http.ResponseWriter, r *http.Request) {
	debtors := s.stores.Debtors.Snapshot()
	views := make([]debtorView, 0, len(debtors))
	for _, d := range debtors {
		views = append(views, debtorToView(d))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateDebtor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	debtor := core.Debtor{
		Name:  sanitizeInput(req.Name),
		Phone: sanitizeInput(req.Phone),
		Email: sanitizeInput(req.Email),
	}
	if err := debtor.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.backend.CreateDebtor(r.Context(), debtor)
	if err == nil {
		s.stores.Debtors.Append(created)
		writeJSON(w, http.StatusCreated, debtorToView(created))
		return
	}

	if api.Unreachable(err) && s.outbox != nil {
		outboxID, qErr := s.queueOffline(r.Context(), storage.EntityDebtors, storage.OpCreate, api.WireDebtor(debtor))
		if qErr != nil {
			writeError(w, http.StatusServiceUnavailable, qErr.Error())
			return
		}
		s.stores.Debtors.Append(debtor)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"debtor":   debtorToView(debtor),
			"outboxId": outboxID,
		})
		return
	}

	writeBackendError(w, r, "create debtor", err)
}

func (s *Server) handleDeleteDebtor(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")

	debtor, ok := s.stores.Debtors.Find(func(d core.Debtor) bool { return d.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "debtor not found")
		return
	}

	// A debtor with open debts cannot be removed.
	if _, hasDebt := s.stores.Debts.Find(func(d core.Debt) bool { return d.DebtorID == id }); hasDebt {
		writeError(w, http.StatusConflict, "debtor has open debts")
		return
	}

	if err := s.backend.DeleteDebtor(r.Context(), id); err != nil {
		if api.Unreachable(err) && s.outbox != nil {
			if _, qErr := s.queueOffline(r.Context(), storage.EntityDebtors, storage.OpDelete, api.WireDebtor(debtor)); qErr != nil {
				writeError(w, http.StatusServiceUnavailable, qErr.Error())
				return
			}
			s.stores.Debtors.Remove(func(d core.Debtor) bool { return d.ID == id })
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeBackendError(w, r, "delete debtor", err)
		return
	}

	s.stores.Debtors.Remove(func(d core.Debtor) bool { return d.ID == id })
	w.WriteHeader(http.StatusNoContent)
}
