package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"carteira/internal/api"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/recurrence"
	"carteira/internal/storage"

	"github.com/shopspring/decimal"
)

type subscriptionRequest struct {
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Frequency   core.Frequency       `json:"frequency"`
	StartDate   core.Date            `json:"startDate"`
	EndDate     *core.Date           `json:"endDate"`
	CategoryID  int64                `json:"categoryId"`
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	today := core.Today(time.Now())
	subs := s.stores.Subscriptions.Snapshot()

	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriptionToView(today, sub))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubscriptionSummary(w http.ResponseWriter, r *http.Request) {
	today := core.Today(time.Now())

	key := fmt.Sprintf("g%d:%s", s.stores.Subscriptions.Generation(), today.Format("2006-01-02"))
	if view, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view := summaryToView(recurrence.Summarize(today, s.stores.Subscriptions.Snapshot()))
	s.summaryCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := core.Subscription{
		Description:     sanitizeInput(req.Description),
		Amount:          req.Amount,
		Type:            req.Type,
		Frequency:       req.Frequency,
		StartDate:       req.StartDate,
		IsActive:        true,
		NextPaymentDate: req.StartDate,
		CategoryID:      req.CategoryID,
	}
	if req.EndDate != nil {
		sub.EndDate = *req.EndDate
	}
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	today := core.Today(time.Now())
	created, err := s.backend.CreateSubscription(r.Context(), sub)
	if err == nil {
		s.stores.Subscriptions.Append(created)
		writeJSON(w, http.StatusCreated, subscriptionToView(today, created))
		return
	}

	if api.Unreachable(err) && s.outbox != nil {
		outboxID, qErr := s.queueOffline(r.Context(), storage.EntitySubscriptions, storage.OpCreate, api.WireSubscription(sub))
		if qErr != nil {
			writeError(w, http.StatusServiceUnavailable, qErr.Error())
			return
		}
		s.stores.Subscriptions.Append(sub)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"subscription": subscriptionToView(today, sub),
			"outboxId":     outboxID,
		})
		return
	}

	writeBackendError(w, r, "create subscription", err)
}

func (s *Server) handleSetSubscriptionActive(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")

	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, ok := s.stores.Subscriptions.Find(func(s core.Subscription) bool { return s.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	if err := s.backend.SetSubscriptionActive(r.Context(), id, req.Active); err != nil {
		if api.Unreachable(err) && s.outbox != nil {
			sub.IsActive = req.Active
			if _, qErr := s.queueOffline(r.Context(), storage.EntitySubscriptions, storage.OpUpdate, api.WireSubscription(sub)); qErr != nil {
				writeError(w, http.StatusServiceUnavailable, qErr.Error())
				return
			}
			s.stores.Subscriptions.Update(func(s core.Subscription) bool { return s.ID == id }, sub)
			writeJSON(w, http.StatusAccepted, subscriptionToView(core.Today(time.Now()), sub))
			return
		}
		writeBackendError(w, r, "toggle subscription", err)
		return
	}

	sub.IsActive = req.Active
	s.stores.Subscriptions.Update(func(s core.Subscription) bool { return s.ID == id }, sub)
	writeJSON(w, http.StatusOK, subscriptionToView(core.Today(time.Now()), sub))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")

	sub, ok := s.stores.Subscriptions.Find(func(s core.Subscription) bool { return s.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	if err := s.backend.DeleteSubscription(r.Context(), id); err != nil {
		if api.Unreachable(err) && s.outbox != nil {
			if _, qErr := s.queueOffline(r.Context(), storage.EntitySubscriptions, storage.OpDelete, api.WireSubscription(sub)); qErr != nil {
				writeError(w, http.StatusServiceUnavailable, qErr.Error())
				return
			}
			s.stores.Subscriptions.Remove(func(s core.Subscription) bool { return s.ID == id })
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeBackendError(w, r, "delete subscription", err)
		return
	}

	s.stores.Subscriptions.Remove(func(s core.Subscription) bool { return s.ID == id })
	w.WriteHeader(http.StatusNoContent)
}

// writeBackendError maps backend rejections onto their original status
// and everything else onto 502.
func writeBackendError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Backend call failed",
		applog.FieldOperation, op,
		applog.FieldError, err)
	writeError(w, http.StatusBadGateway, "backend unavailable")
}
