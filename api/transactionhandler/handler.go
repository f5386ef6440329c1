package transactionhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/interfaces"
)

const maxBodySize = 4 << 10

// Messages returned by the transaction endpoints.
const (
	MsgBadAuthHeader     = "Missing or invalid Authorization header."
	MsgInvalidToken      = "Invalid or expired token."
	MsgAccountMismatch   = "Unauthorized access: account mismatch."
	MsgAccountNotFound   = "Account not found."
	MsgInvalidAmount     = "Invalid amount provided."
	MsgAmountNotPositive = "Amount must be greater than zero."
	MsgAccountChanged    = "Account was modified by another request. Please try again."
	MsgBalanceRetrieved  = "Balance retrieved successfully."
	MsgCashInSuccessful  = "Cash-in successful."
)

type ctxKey struct{}

// Handler serves balance and cash-in requests for logged-in account
// holders. Every request carries a bearer token issued for the account
// number in its path.
type Handler struct {
	store  interfaces.AccountStore
	tokens *auth.TokenIssuer
	log    *slog.Logger

	// now is replaced in tests.
	now func() time.Time

	// mu serializes cash-ins so read-modify-write on a balance is not
	// interleaved, and guards the daily transaction counter.
	mu       sync.Mutex
	day      string
	dayCount int
}

func NewHandler(store interfaces.AccountStore, tokens *auth.TokenIssuer, log *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// RegisterRoutes configures the HTTP router with transaction endpoints.
// It registers the following routes:
//   - GET /api/v3/transactions/balance/{account_number} - Current balance
//   - POST /api/v3/transactions/cashin/{account_number} - Add to the balance
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAccountToken)
		r.Get(api.BalancePath+"/{account_number}", h.HandleBalance)
		r.Post(api.CashInPath+"/{account_number}", h.HandleCashIn)
	})
}

// requireAccountToken admits requests whose bearer token was issued for the
// account number in the path.
func (h *Handler) requireAccountToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, MsgBadAuthHeader)
			return
		}

		subject, err := h.tokens.Validate(token)
		if err != nil {
			h.log.Debug("Rejected token", "err", err)
			h.writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}

		accountNumber := chi.URLParam(r, "account_number")
		if subject != accountNumber {
			h.log.Warn("Token used for another account",
				slog.String("token_account", subject),
				slog.String("account_number", accountNumber))
			h.writeError(w, http.StatusForbidden, MsgAccountMismatch)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, accountNumber)))
	})
}

func accountFromContext(ctx context.Context) string {
	accountNumber, _ := ctx.Value(ctxKey{}).(string)
	return accountNumber
}

// HandleBalance returns the balance of the authenticated account.
//
// Status codes:
//   - 200 OK: body is api.BalanceResponse
//   - 401 Unauthorized: Missing, invalid, expired or revoked token
//   - 403 Forbidden: Token belongs to another account
//   - 404 Not Found: No account with this number
//   - 500 Internal Server Error: The store failed
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.fetch(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, api.BalanceResponse{
		Success: true,
		Message: MsgBalanceRetrieved,
		Data: api.BalanceData{
			AccountNumber: account.AccountNumber,
			FullName:      account.FullName,
			Balance:       account.Balance,
			Status:        account.Status,
			Timestamp:     h.now().Format(api.DisplayTimeLayout),
		},
	})
}

// HandleCashIn adds a positive amount to the authenticated account's balance
// and records the transaction on the account.
//
// Status codes:
//   - 200 OK: body is api.CashInResponse
//   - 400 Bad Request: Amount missing, not a number or not positive
//   - 401, 403, 404: as for HandleBalance
//   - 409 Conflict: The account changed in the store during the update
//   - 500 Internal Server Error: The store failed
func (h *Handler) HandleCashIn(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	account, ok := h.fetch(w, r)
	if !ok {
		return
	}

	amount, err := decodeAmount(r.Body)
	if err != nil {
		h.log.Debug("Rejected cash-in amount", "err", err)
		h.writeError(w, http.StatusBadRequest, MsgInvalidAmount)
		return
	}
	if amount <= 0 {
		h.writeError(w, http.StatusBadRequest, MsgAmountNotPositive)
		return
	}

	now := h.now()
	txn := interfaces.Transaction{
		Number:    h.nextTransactionNumber(now),
		Amount:    amount,
		Timestamp: now.UTC(),
	}
	account.Balance += amount
	account.Transactions = append(account.Transactions, txn)

	err = h.store.Update(r.Context(), account)
	if errors.Is(err, interfaces.ErrAccountConflict) {
		h.writeError(w, http.StatusConflict, MsgAccountChanged)
		return
	}
	if err != nil {
		h.log.Error("Failed to update account", "err", err, "accountNumber", account.AccountNumber)
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during cash-in: %v", err))
		return
	}

	h.log.Info("Cash-in applied",
		slog.String("account_number", account.AccountNumber),
		slog.String("transaction_number", txn.Number),
		slog.Float64("amount", amount))

	h.writeJSON(w, http.StatusOK, api.CashInResponse{
		Success: true,
		Message: MsgCashInSuccessful,
		Data: api.CashInData{
			AccountNumber:     account.AccountNumber,
			FullName:          account.FullName,
			NewBalance:        account.Balance,
			TransactionNumber: txn.Number,
			Status:            account.Status,
			Timestamp:         now.Format(api.DisplayTimeLayout),
		},
	})
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*interfaces.Account, bool) {
	accountNumber := accountFromContext(r.Context())

	account, err := h.store.Fetch(r.Context(), accountNumber)
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		h.writeError(w, http.StatusNotFound, MsgAccountNotFound)
		return nil, false
	}
	if err != nil {
		h.log.Error("Failed to fetch account", "err", err, "accountNumber", accountNumber)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch account")
		return nil, false
	}
	return account, true
}

// nextTransactionNumber formats TXN-yyyyMMdd-HHmmss-SSS-NN, where NN counts
// the transactions of the day served by this handler. Callers hold h.mu.
func (h *Handler) nextTransactionNumber(now time.Time) string {
	day := now.Format("20060102")
	if day != h.day {
		h.day = day
		h.dayCount = 0
	}
	h.dayCount++
	return fmt.Sprintf("TXN-%s-%03d-%02d", now.Format("20060102-150405"), now.Nanosecond()/int(time.Millisecond), h.dayCount)
}

// decodeAmount reads the amount of a cash-in body. It may be a JSON number
// or a numeric string.
func decodeAmount(body io.Reader) (float64, error) {
	var req api.CashInRequest
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&req); err != nil {
		return 0, err
	}
	if len(req.Amount) == 0 {
		return 0, errors.New("amount is missing")
	}

	var value any
	dec := json.NewDecoder(bytes.NewReader(req.Amount))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return 0, err
	}

	var amount float64
	var err error
	switch v := value.(type) {
	case json.Number:
		amount, err = v.Float64()
	case string:
		amount, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		err = fmt.Errorf("amount has type %T", value)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, errors.New("amount is not finite")
	}
	return amount, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Success: false, Message: message})
}
