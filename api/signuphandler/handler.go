package signuphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/idcatalog"
	"github.com/ruteri/registration-form/interfaces"
	"github.com/ruteri/registration-form/registration"
)

// maxBodySize bounds a registration request body.
const maxBodySize = 64 << 10

// Handler serves the users API. It accepts registrations in either payload
// convention, validates them against the ID catalog and creates an account
// record for each accepted registration. Account holders log in with their
// account number and PIN to get a bearer token.
type Handler struct {
	store   interfaces.AccountStore
	catalog *idcatalog.Catalog
	tokens  *auth.TokenIssuer
	log     *slog.Logger

	// now is replaced in tests.
	now func() time.Time

	// createMu serializes count-then-create so account numbers stay unique.
	createMu sync.Mutex
}

// NewHandler creates a new HTTP request handler for the users API.
//
// Parameters:
//   - store: Account store that receives created accounts
//   - catalog: ID type catalog used for validation; nil means idcatalog.Default()
//   - tokens: Issuer of login tokens; nil means a random-key issuer
//   - log: Structured logger for operational insights
func NewHandler(store interfaces.AccountStore, catalog *idcatalog.Catalog, tokens *auth.TokenIssuer, log *slog.Logger) *Handler {
	if catalog == nil {
		catalog = idcatalog.Default()
	}
	if tokens == nil {
		tokens = auth.NewTokenIssuer(nil, auth.DefaultTokenTTL)
	}
	return &Handler{
		store:   store,
		catalog: catalog,
		tokens:  tokens,
		log:     log,
		now:     time.Now,
	}
}

// RegisterRoutes configures the HTTP router with users endpoints.
// It registers the following routes:
//   - POST /api/v3/users - Register, snake-case clients
//   - POST /api/v3/users/signup - Register, camel-case clients
//   - POST /api/v3/users/login - Exchange account number and PIN for a token
//   - POST /api/v3/users/logout - Revoke a token
//   - GET /api/v3/users/{account_number} - Look up a created account
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(api.UsersPath, h.HandleSignup)
	r.Post(api.SignupPath, h.HandleSignup)
	r.Post(api.LoginPath, h.HandleLogin)
	r.Post(api.LogoutPath, h.HandleLogout)
	r.Get(api.UsersPath+"/{account_number}", h.HandleGetAccount)
}

// HandleSignup processes a registration.
//
// Status codes:
//   - 200 OK: Account created, body is api.SignupResponse
//   - 400 Bad Request: Malformed JSON or validation failure
//   - 500 Internal Server Error: The account could not be stored
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.log.Error("Failed to read request body", "err", err)
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	state, convention, err := api.DecodePayload(body)
	if err != nil {
		h.log.Debug("Rejected malformed registration", "err", err)
		h.writeError(w, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	if err := registration.Validate(h.catalog, state); err != nil {
		h.log.Debug("Rejected invalid registration",
			"err", err,
			slog.String("convention", string(convention)))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.createAccount(r, state)
	if err != nil {
		h.log.Error("Failed to create account", "err", err)
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during signup: %v", err))
		return
	}

	h.log.Info("Account created",
		slog.String("account_number", account.AccountNumber),
		slog.String("convention", string(convention)))

	h.writeJSON(w, http.StatusOK, toResponse(account))
}

// HandleGetAccount returns a created account without its PIN.
//
// Status codes:
//   - 200 OK: body is api.SignupResponse
//   - 404 Not Found: No account with this number
//   - 500 Internal Server Error: The store failed
func (h *Handler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := r.PathValue("account_number")

	account, err := h.store.Fetch(r.Context(), accountNumber)
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		h.writeError(w, http.StatusNotFound, "Account not found.")
		return
	}
	if err != nil {
		h.log.Error("Failed to fetch account", "err", err, "accountNumber", accountNumber)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch account")
		return
	}

	h.writeJSON(w, http.StatusOK, toResponse(account))
}

func (h *Handler) createAccount(r *http.Request, state interfaces.FormState) (*interfaces.Account, error) {
	h.createMu.Lock()
	defer h.createMu.Unlock()

	count, err := h.store.Count(r.Context())
	if err != nil {
		return nil, fmt.Errorf("could not count accounts: %w", err)
	}

	fullName := state.FullName()
	if fullName == "" {
		fullName = interfaces.UnnamedAccountHolder
	}

	now := h.now()
	account := &interfaces.Account{
		ID:            uuid.NewString(),
		AccountNumber: AccountNumber(now, count+1),
		FullName:      fullName,
		PIN:           interfaces.DefaultAccountPIN,
		Status:        interfaces.AccountStatusActive,
		Balance:       0,
		CreatedAt:     now.UTC(),
		User:          state,
	}

	if err := h.store.Create(r.Context(), account); err != nil {
		return nil, err
	}
	return account, nil
}

// AccountNumber formats an account number as ddMMyy-HHmmss-NNN.
func AccountNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", t.Format("020106-150405"), seq)
}

func toResponse(a *interfaces.Account) api.SignupResponse {
	return api.SignupResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		FullName:      a.FullName,
		Status:        a.Status,
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
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
