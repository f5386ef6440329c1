package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ruteri/registration-form/api"
	"github.com/stretchr/testify/mock"
)

// maxErrorBody bounds how much of a non-2xx response body is kept for diagnostics.
const maxErrorBody = 4096

// SignupClient implements api.SignupProvider for HTTP-based communication
// with the signup API.
type SignupClient struct {
	// ServerAddr is the base URL of the signup API, e.g. http://localhost:8080
	ServerAddr string

	// Path is the endpoint path, e.g. /api/v3/users. Defaults to api.UsersPath.
	Path string

	// HTTPClient is used to issue requests. Defaults to http.DefaultClient,
	// so the transport defaults apply and no timeout is configured here.
	HTTPClient *http.Client
}

// NewSignupClient creates a client posting to serverAddr+path.
func NewSignupClient(serverAddr, path string) *SignupClient {
	return &SignupClient{
		ServerAddr: serverAddr,
		Path:       path,
	}
}

// URL returns the full endpoint URL.
func (c *SignupClient) URL() string {
	path := c.Path
	if path == "" {
		path = api.UsersPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(c.ServerAddr, "/") + path
}

// Signup sends payload as JSON in a single POST. There are no retries.
// A 2xx response is a success and its body is discarded; any other status
// returns *api.StatusError. Errors without a response are wrapped as is.
func (c *SignupClient) Signup(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not encode signup payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request signup endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &api.StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(respBody)),
	}
}

// MockSignupProvider implements a mock api.SignupProvider for testing.
type MockSignupProvider struct {
	mock.Mock
}

// Signup implements the SignupProvider interface for testing.
// The behavior is determined by how the mock is configured in tests.
func (m *MockSignupProvider) Signup(ctx context.Context, payload any) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
