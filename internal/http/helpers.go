package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carteira/internal/amqp"
	applog "carteira/internal/log"
	"carteira/internal/storage"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathInt reads a numeric path variable. The route patterns already
// constrain these to digits, so failures here mean a routing bug.
func pathInt(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return v
}

// parseYearMonth extracts year and month from query parameters, falling
// back to the current month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, month
}

// sanitizeInput trims whitespace and strips control characters from
// user-entered text.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// queueOffline stores a mutation in the outbox and notifies the worker.
// A failed publish is only logged; the worker drains the outbox on a
// schedule regardless.
func (s *Server) queueOffline(ctx context.Context, entity, op string, payload any) (string, error) {
	if s.outbox == nil {
		return "", fmt.Errorf("no outbox configured")
	}
	entry, err := storage.NewOutboxEntry(entity, op, payload)
	if err != nil {
		return "", err
	}
	if err := s.outbox.Enqueue(ctx, entry); err != nil {
		return "", fmt.Errorf("enqueue %s %s: %w", entity, op, err)
	}
	logger := applog.FromContext(ctx)
	if s.publisher != nil {
		msg := amqp.NewChangeMessage(entity, op, entry.ID)
		if err := s.publisher.PublishChange(ctx, msg); err != nil {
			logger.WarnContext(ctx, "Failed publishing change message",
				applog.FieldEntity, entity,
				applog.FieldOperation, op,
				applog.FieldOutboxID, entry.ID,
				applog.FieldError, err)
		}
	}
	logger.InfoContext(ctx, "Mutation queued offline",
		applog.FieldEntity, entity,
		applog.FieldOperation, op,
		applog.FieldOutboxID, entry.ID)
	return entry.ID, nil
}
