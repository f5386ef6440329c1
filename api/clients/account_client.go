package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ruteri/registration-form/api"
)

// AccountClient logs in to the users API and calls the transaction
// endpoints with the returned token.
type AccountClient struct {
	ServerAddr string
	HTTPClient *http.Client

	token string
}

func NewAccountClient(serverAddr string) *AccountClient {
	return &AccountClient{ServerAddr: serverAddr}
}

// Login exchanges credentials for a token, which is kept for later calls.
func (c *AccountClient) Login(ctx context.Context, accountNumber, pin string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	err := c.do(ctx, http.MethodPost, api.LoginPath, api.LoginRequest{AccountNumber: accountNumber, PIN: pin}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Logout revokes the token obtained by Login.
func (c *AccountClient) Logout(ctx context.Context) error {
	var resp api.LogoutResponse
	if err := c.do(ctx, http.MethodPost, api.LogoutPath, nil, &resp); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Balance returns the balance summary of accountNumber.
func (c *AccountClient) Balance(ctx context.Context, accountNumber string) (*api.BalanceData, error) {
	var resp api.BalanceResponse
	if err := c.do(ctx, http.MethodGet, api.BalancePath+"/"+accountNumber, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CashIn adds amount to the balance of accountNumber.
func (c *AccountClient) CashIn(ctx context.Context, accountNumber string, amount float64) (*api.CashInData, error) {
	req := api.CashInRequest{Amount: json.RawMessage(strconv.FormatFloat(amount, 'f', -1, 64))}
	var resp api.CashInResponse
	if err := c.do(ctx, http.MethodPost, api.CashInPath+"/"+accountNumber, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *AccountClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.ServerAddr, "/")+path, body)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &api.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
