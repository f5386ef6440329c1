package transactionhandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/interfaces"
	"github.com/ruteri/registration-form/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const accountNumber = "191026-143005-001"

var fixedNow = time.Date(2026, 10, 19, 14, 30, 5, 123_000_000, time.UTC)

func testAccount() *interfaces.Account {
	return &interfaces.Account{
		ID:            "0b8f6e7a-4c1d-4f5e-9a7b-2d3c4e5f6a7b",
		AccountNumber: accountNumber,
		FullName:      "Juan Santos Dela Cruz",
		PIN:           interfaces.DefaultAccountPIN,
		Status:        interfaces.AccountStatusActive,
		Balance:       100,
	}
}

type fixture struct {
	handler *Handler
	mux     http.Handler
	tokens  *auth.TokenIssuer
	store   interfaces.AccountStore
}

func setup(t *testing.T, store interfaces.AccountStore) *fixture {
	t.Helper()
	if store == nil {
		mem := storage.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, mem.Create(context.Background(), testAccount()))
		store = mem
	}

	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	handler := NewHandler(store, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler.now = func() time.Time { return fixedNow }

	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return &fixture{handler: handler, mux: mux, tokens: tokens, store: store}
}

func (f *fixture) token(t *testing.T, account string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(account)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, authorization, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestAuthorization(t *testing.T) {
	f := setup(t, nil)
	valid := f.token(t, accountNumber)
	revoked := f.token(t, accountNumber)
	require.NoError(t, f.tokens.Revoke(revoked))

	tests := []struct {
		name    string
		path    string
		auth    string
		code    int
		message string
	}{
		{"no header", accountNumber, "", http.StatusUnauthorized, MsgBadAuthHeader},
		{"not bearer", accountNumber, "Basic " + valid, http.StatusUnauthorized, MsgBadAuthHeader},
		{"garbage token", accountNumber, "Bearer garbage", http.StatusUnauthorized, MsgInvalidToken},
		{"revoked token", accountNumber, "Bearer " + revoked, http.StatusUnauthorized, MsgInvalidToken},
		{"other account", "191026-143005-002", "Bearer " + valid, http.StatusForbidden, MsgAccountMismatch},
		{"unknown account", "191026-143005-009", "Bearer " + f.token(t, "191026-143005-009"), http.StatusNotFound, MsgAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := f.do(t, http.MethodGet, api.BalancePath+"/"+tt.path, tt.auth, "")
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.message, resp["message"])

			w, resp = f.do(t, http.MethodPost, api.CashInPath+"/"+tt.path, tt.auth, `{"amount": 50}`)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, resp["message"])
		})
	}

	got, err := f.store.Fetch(context.Background(), accountNumber)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Balance, "rejected requests leave the balance alone")
}

func TestHandleBalance(t *testing.T) {
	f := setup(t, nil)

	w, resp := f.do(t, http.MethodGet, api.BalancePath+"/"+accountNumber, "Bearer "+f.token(t, accountNumber), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, MsgBalanceRetrieved, resp["message"])
	assert.Equal(t, map[string]any{
		"accountNumber": accountNumber,
		"fullName":      "Juan Santos Dela Cruz",
		"balance":       100.0,
		"status":        "Active",
		"timestamp":     "October 19, 2026 2:30 PM",
	}, resp["data"])
}

func TestHandleCashIn(t *testing.T) {
	f := setup(t, nil)
	bearer := "Bearer " + f.token(t, accountNumber)
	path := api.CashInPath + "/" + accountNumber

	w, resp := f.do(t, http.MethodPost, path, bearer, `{"amount": 150.5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgCashInSuccessful, resp["message"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, 250.5, data["newBalance"])
	assert.Equal(t, "TXN-20261019-143005-123-01", data["transactionNumber"])
	assert.Equal(t, "October 19, 2026 2:30 PM", data["timestamp"])

	// numeric strings are accepted
	w, resp = f.do(t, http.MethodPost, path, bearer, `{"amount": " 49.5 "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = resp["data"].(map[string]any)
	assert.Equal(t, 300.0, data["newBalance"])
	assert.Equal(t, "TXN-20261019-143005-123-02", data["transactionNumber"])

	got, err := f.store.Fetch(context.Background(), accountNumber)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Balance)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, 150.5, got.Transactions[0].Amount)
	assert.Equal(t, "TXN-20261019-143005-123-02", got.Transactions[1].Number)

	w, resp = f.do(t, http.MethodGet, api.BalancePath+"/"+accountNumber, bearer, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 300.0, resp["data"].(map[string]any)["balance"])
}

func TestHandleCashIn_InvalidAmount(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{``, MsgInvalidAmount},
		{`{}`, MsgInvalidAmount},
		{`{"amount": null}`, MsgInvalidAmount},
		{`{"amount": "lots"}`, MsgInvalidAmount},
		{`{"amount": true}`, MsgInvalidAmount},
		{`{"amount": "NaN"}`, MsgInvalidAmount},
		{`{"amount": 0}`, MsgAmountNotPositive},
		{`{"amount": -20}`, MsgAmountNotPositive},
		{`{"amount": "-0.01"}`, MsgAmountNotPositive},
	}

	f := setup(t, nil)
	bearer := "Bearer " + f.token(t, accountNumber)
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w, resp := f.do(t, http.MethodPost, api.CashInPath+"/"+accountNumber, bearer, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, resp["message"])
		})
	}

	got, err := f.store.Fetch(context.Background(), accountNumber)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Balance)
	assert.Empty(t, got.Transactions)
}

func TestHandleCashIn_StoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"conflict", interfaces.ErrAccountConflict, http.StatusConflict},
		{"failure", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &storage.MockAccountStore{StoreName: "mock"}
			store.On("Fetch", mock.Anything, accountNumber).Return(testAccount(), nil)
			store.On("Update", mock.Anything, mock.MatchedBy(func(a *interfaces.Account) bool {
				return a.Balance == 110 && len(a.Transactions) == 1
			})).Return(tt.err).Once()

			f := setup(t, store)
			w, _ := f.do(t, http.MethodPost, api.CashInPath+"/"+accountNumber, "Bearer "+f.token(t, accountNumber), `{"amount": 10}`)
			assert.Equal(t, tt.code, w.Code)
			store.AssertExpectations(t)
		})
	}
}

func TestHandleCashIn_Concurrent(t *testing.T) {
	f := setup(t, nil)
	bearer := "Bearer " + f.token(t, accountNumber)

	const n = 20
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, api.CashInPath+"/"+accountNumber, strings.NewReader(`{"amount": 5}`))
			req.Header.Set("Authorization", bearer)
			w := httptest.NewRecorder()
			f.mux.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	got, err := f.store.Fetch(context.Background(), accountNumber)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Balance)
	assert.Len(t, got.Transactions, n)
}

func TestNextTransactionNumber(t *testing.T) {
	h := NewHandler(nil, nil, nil)
	day1 := time.Date(2026, 10, 19, 23, 59, 59, 999_000_000, time.UTC)

	assert.Equal(t, "TXN-20261019-235959-999-01", h.nextTransactionNumber(day1))
	assert.Equal(t, "TXN-20261019-235959-999-02", h.nextTransactionNumber(day1))
	// the counter restarts every day
	assert.Equal(t, "TXN-20261020-000000-000-01", h.nextTransactionNumber(day1.Add(time.Millisecond)))
}
