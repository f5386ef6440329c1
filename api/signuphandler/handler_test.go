package signuphandler

import (
	"bytes"
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
	"github.com/google/uuid"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/api/clients"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/interfaces"
	"github.com/ruteri/registration-form/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 5, 0, time.UTC)

func validForm() interfaces.FormState {
	return interfaces.FormState{
		FirstName:    "Juan",
		MiddleName:   "Santos",
		LastName:     "Dela Cruz",
		Barangay:     "San Isidro",
		Province:     "Laguna",
		ZipCode:      "4027",
		ContactNo:    "09171234567",
		EmailAddress: "juan@example.com",
		SelectedID:   "tin",
		IDNumber:     "123-456-789",
	}
}

func setupHandler(t *testing.T, store interfaces.AccountStore) (*Handler, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(store, nil, auth.NewTokenIssuer([]byte("test-secret"), time.Hour), logger)
	handler.now = func() time.Time { return fixedNow }

	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return handler, mux
}

func post(t *testing.T, mux http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func encode(t *testing.T, convention api.Convention, state interfaces.FormState) []byte {
	t.Helper()
	payload, err := convention.Encode(state)
	require.NoError(t, err)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestHandleSignup(t *testing.T) {
	store := storage.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, mux := setupHandler(t, store)

	w := post(t, mux, api.UsersPath, encode(t, api.SnakeCase, validForm()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "191026-143005-001", resp.AccountNumber)
	assert.Equal(t, "Juan Santos Dela Cruz", resp.FullName)
	assert.Equal(t, "Active", resp.Status)
	assert.Equal(t, 0.0, resp.Balance)
	assert.Equal(t, "2026-10-19T14:30:05Z", resp.CreatedAt)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
	assert.NotContains(t, w.Body.String(), "pin")

	stored, err := store.Fetch(context.Background(), resp.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, "0000", stored.PIN)
	assert.Equal(t, validForm(), stored.User)

	// camel-case clients post to the signup path
	w = post(t, mux, api.SignupPath, encode(t, api.CamelCase, validForm()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "191026-143005-002", resp.AccountNumber)

	stored, err = store.Fetch(context.Background(), resp.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, validForm(), stored.User)
}

func TestHandleSignup_Rejections(t *testing.T) {
	badID := validForm()
	badID.IDNumber = "123456789"
	missing := validForm()
	missing.Province = "  "
	unknown := validForm()
	unknown.SelectedID = "library_card"

	tests := []struct {
		name    string
		body    []byte
		message string
	}{
		{"malformed json", []byte(`{"firstname":`), "Invalid registration payload"},
		{"non-string value", []byte(`{"firstname": 12}`), "Invalid registration payload"},
		{"missing field", encode(t, api.SnakeCase, missing), "Please fill up all required fields."},
		{"bad id format", encode(t, api.CamelCase, badID), "Your tin must follow this format: e.g. 123-456-789"},
		{"unknown id type", encode(t, api.SnakeCase, unknown), "Please select a valid ID type."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &storage.MockAccountStore{StoreName: "mock"}
			_, mux := setupHandler(t, store)

			w := post(t, mux, api.UsersPath, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleSignup_StorageFailure(t *testing.T) {
	store := &storage.MockAccountStore{StoreName: "mock"}
	store.On("Count", mock.Anything).Return(0, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	_, mux := setupHandler(t, store)

	w := post(t, mux, api.UsersPath, encode(t, api.SnakeCase, validForm()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk full")

	store = &storage.MockAccountStore{StoreName: "mock"}
	store.On("Count", mock.Anything).Return(0, interfaces.ErrBackendUnavailable)
	_, mux = setupHandler(t, store)

	w = post(t, mux, api.UsersPath, encode(t, api.SnakeCase, validForm()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleSignup_UnnamedUser(t *testing.T) {
	store := &storage.MockAccountStore{StoreName: "mock"}
	store.On("Count", mock.Anything).Return(41, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(a *interfaces.Account) bool {
		return a.FullName == "Unnamed User" && a.AccountNumber == "191026-143005-042"
	})).Return(nil).Once()
	handler, _ := setupHandler(t, store)

	// Validation requires a first and last name, so exercise the fallback directly.
	req := httptest.NewRequest(http.MethodPost, api.UsersPath, nil)
	account, err := handler.createAccount(req, interfaces.FormState{FirstName: " ", LastName: ""})
	require.NoError(t, err)
	assert.Equal(t, "Unnamed User", account.FullName)
	store.AssertExpectations(t)
}

func TestHandleSignup_ConcurrentNumbering(t *testing.T) {
	store := storage.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, mux := setupHandler(t, store)

	const n = 20
	body := encode(t, api.SnakeCase, validForm())
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, api.UsersPath, bytes.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestHandleGetAccount(t *testing.T) {
	store := storage.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, mux := setupHandler(t, store)

	w := post(t, mux, api.UsersPath, encode(t, api.SnakeCase, validForm()))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, api.UsersPath+"/191026-143005-001", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Juan Santos Dela Cruz", resp.FullName)
	assert.False(t, strings.Contains(w.Body.String(), "0000"))

	req = httptest.NewRequest(http.MethodGet, api.UsersPath+"/191026-143005-999", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountNumber(t *testing.T) {
	assert.Equal(t, "191026-143005-001", AccountNumber(fixedNow, 1))
	assert.Equal(t, "191026-143005-1000", AccountNumber(fixedNow, 1000))
	assert.True(t, interfaces.ValidAccountNumber(AccountNumber(time.Now(), 7)))
}

// The form client and the signup API agree on both conventions end to end.
func TestSignupClientRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, mux := setupHandler(t, store)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	for _, convention := range []api.Convention{api.SnakeCase, api.CamelCase} {
		payload, err := convention.Encode(validForm())
		require.NoError(t, err)
		client := clients.NewSignupClient(srv.URL, convention.DefaultPath())
		require.NoError(t, client.Signup(context.Background(), payload))
	}

	client := clients.NewSignupClient(srv.URL, "/api/v3/unknown")
	err := client.Signup(context.Background(), map[string]string{})
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
