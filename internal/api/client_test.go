package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 5*time.Second)
}

func TestListSubscriptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subscriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"description":"Streaming","amount":29.9,"type":"DESPESA","frequency":"MONTHLY",
			 "startDate":"2024-01-01","endDate":null,"isActive":true,"nextPaymentDate":"2024-07-01"},
			{"id":2,"description":"Rent income","amount":1500,"type":"RECEITA","frequency":"MONTHLY",
			 "startDate":"2023-05-01","endDate":"2025-05-01","isActive":false,"nextPaymentDate":"2024-06-01"}
		]`))
	})

	subs, err := client.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "Streaming", subs[0].Description)
	assert.True(t, subs[0].Amount.Equal(decimal.RequireFromString("29.9")))
	assert.Equal(t, core.Despesa, subs[0].Type)
	assert.True(t, subs[0].EndDate.IsZero())
	assert.True(t, subs[0].IsActive)

	assert.Equal(t, core.Receita, subs[1].Type)
	assert.Equal(t, core.NewDate(2025, 5, 1), subs[1].EndDate)
	assert.False(t, subs[1].IsActive)
}

func TestCreateDebtInstallmentPlanPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/debts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":10,"debtorId":3,"description":"Loan","totalAmount":1200,
			"isInstallmentPlan":true,"installmentCount":3,"installmentFrequency":"MONTHLY",
			"firstInstallmentDate":"2024-01-31"}`))
	})

	debt := core.Debt{
		DebtorID:    3,
		Description: "Loan",
		TotalAmount: decimal.NewFromInt(1200),
		Mode: core.InstallmentPlan{
			Count:     3,
			Frequency: core.InstallmentMonthly,
			FirstDate: core.NewDate(2024, 1, 31),
		},
	}

	created, err := client.CreateDebt(context.Background(), debt)
	require.NoError(t, err)

	// The tagged variant travels as the backend's flag shape.
	assert.Equal(t, true, got["isInstallmentPlan"])
	assert.Equal(t, float64(3), got["installmentCount"])
	assert.Equal(t, "MONTHLY", got["installmentFrequency"])
	assert.Equal(t, "2024-01-31", got["firstInstallmentDate"])
	assert.NotContains(t, got, "dueDate")

	assert.Equal(t, int64(10), created.ID)
	plan, ok := created.Mode.(core.InstallmentPlan)
	require.True(t, ok, "mode should round-trip as InstallmentPlan")
	assert.Equal(t, 3, plan.Count)
}

func TestCreateDebtOneOffPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":11,"debtorId":3,"description":"Dinner","totalAmount":80,"dueDate":"2024-04-01"}`))
	})

	debt := core.Debt{
		DebtorID:    3,
		Description: "Dinner",
		TotalAmount: decimal.NewFromInt(80),
		Mode:        core.OneOff{DueDate: core.NewDate(2024, 4, 1)},
	}

	created, err := client.CreateDebt(context.Background(), debt)
	require.NoError(t, err)

	assert.Equal(t, "2024-04-01", got["dueDate"])
	assert.NotContains(t, got, "isInstallmentPlan")

	_, ok := created.Mode.(core.OneOff)
	assert.True(t, ok, "mode should round-trip as OneOff")
}

func TestCreateDebtRejectsInvalidLocally(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid debt must not reach the backend")
	})

	debt := core.Debt{
		DebtorID:    3,
		Description: "Loan",
		TotalAmount: decimal.NewFromInt(100),
		Mode:        core.InstallmentPlan{Count: 49, Frequency: core.InstallmentMonthly, FirstDate: core.NewDate(2024, 1, 1)},
	}
	_, err := client.CreateDebt(context.Background(), debt)
	assert.ErrorIs(t, err, core.ErrInvalidInstallmentCount)
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"amount must be positive"}`))
	})

	_, err := client.ListDebtors(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "amount must be positive", apiErr.Message)
}

func TestLoginStoresToken(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/login":
			_, _ = w.Write([]byte(`{"token":"fresh-token"}`))
		case "/accounts":
			assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[{"id":1,"name":"Checking","balance":100.5}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	token, err := client.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("100.5")))
	assert.Equal(t, 2, calls)
}

func TestCreatePaymentRejectsNonPositive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payment must not reach the backend")
	})
	err := client.CreatePayment(context.Background(), 1, decimal.Zero, core.NewDate(2024, 1, 1))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}
