package signuphandler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/interfaces"
)

// Messages returned by the session endpoints.
const (
	MsgCredentialsRequired = "Account number and PIN are required."
	MsgAccountNotFound     = "Account not found."
	MsgIncorrectPIN        = "Incorrect PIN. Please try again."
	MsgAccountInactive     = "Something went wrong with your account. Please contact customer service for assistance."
	MsgLoginSuccessful     = "Login successful."
	MsgBadAuthHeader       = "Missing or invalid Authorization header."
	MsgTokenExpired        = "Token is invalid or already expired."
	MsgLoggedOut           = "Logged out successfully. Session expired."
)

type loginBody struct {
	api.LoginRequest
	AccountNumberSnake string `json:"account_number"`
	PINSnake           string `json:"pin_number"`
}

// HandleLogin exchanges an account number and PIN for a bearer token.
//
// Status codes:
//   - 200 OK: body is api.LoginResponse
//   - 400 Bad Request: Account number or PIN missing
//   - 401 Unauthorized: Wrong PIN
//   - 403 Forbidden: Account is not active
//   - 404 Not Found: No account with this number
//   - 500 Internal Server Error: The store failed
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err == nil && len(raw) > 0 {
		err = json.Unmarshal(raw, &body)
	}
	if err != nil {
		h.log.Debug("Rejected malformed login", "err", err)
		h.writeError(w, http.StatusBadRequest, MsgCredentialsRequired)
		return
	}

	accountNumber := firstNonEmpty(body.AccountNumber, body.AccountNumberSnake)
	pin := firstNonEmpty(body.PIN, body.PINSnake)
	if accountNumber == "" || pin == "" {
		h.writeError(w, http.StatusBadRequest, MsgCredentialsRequired)
		return
	}

	account, err := h.store.Fetch(r.Context(), accountNumber)
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		h.writeError(w, http.StatusNotFound, MsgAccountNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to fetch account for login", "err", err, "accountNumber", accountNumber)
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during login: %v", err))
		return
	}

	if subtle.ConstantTimeCompare([]byte(account.PIN), []byte(pin)) != 1 {
		h.log.Info("Login with incorrect PIN", slog.String("account_number", accountNumber))
		h.writeError(w, http.StatusUnauthorized, MsgIncorrectPIN)
		return
	}

	if !account.IsActive() {
		h.log.Info("Login to inactive account",
			slog.String("account_number", accountNumber),
			slog.String("status", account.Status))
		h.writeError(w, http.StatusForbidden, MsgAccountInactive)
		return
	}

	token, _, err := h.tokens.Issue(account.AccountNumber)
	if err != nil {
		h.log.Error("Failed to issue token", "err", err)
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during login: %v", err))
		return
	}

	h.log.Info("Account logged in", slog.String("account_number", accountNumber))
	h.writeJSON(w, http.StatusOK, api.LoginResponse{
		Success:       true,
		Message:       MsgLoginSuccessful,
		Token:         token,
		AccountNumber: account.AccountNumber,
		FullName:      account.FullName,
		Status:        account.Status,
	})
}

// HandleLogout revokes the bearer token of the request.
//
// Status codes:
//   - 200 OK: body is api.LogoutResponse
//   - 400 Bad Request: No bearer token
//   - 401 Unauthorized: Token invalid, expired or already revoked
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, MsgBadAuthHeader)
		return
	}

	if err := h.tokens.Revoke(token); err != nil {
		h.log.Debug("Rejected logout", "err", err)
		h.writeError(w, http.StatusUnauthorized, MsgTokenExpired)
		return
	}

	h.writeJSON(w, http.StatusOK, api.LogoutResponse{
		Success:   true,
		Message:   MsgLoggedOut,
		Timestamp: h.now().Format(api.DisplayTimeLayout),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
