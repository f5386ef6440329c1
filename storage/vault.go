package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/registration-form/interfaces"
)

// VaultStore implements interfaces.AccountStore on a HashiCorp Vault KV v2
// secrets engine. Each account is a secret at
// <mount>/data/<path>/accounts/<account number> holding the account JSON
// under the "account" key. Accounts carry a PIN, which is why Vault is a
// supported backend.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a Vault account store using token authentication.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount (e.g. "signup")
//   - token: Vault token; when empty the client falls back to VAULT_TOKEN
func NewVaultStore(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", strings.TrimPrefix(strings.TrimPrefix(address, "https://"), "http://"), mountPath, dataPath),
	}, nil
}

// Create writes the account with cas=0, which Vault only accepts when no
// secret exists at the path yet.
func (b *VaultStore) Create(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return fmt.Errorf("invalid account number %q", account.AccountNumber)
	}

	start := time.Now()
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	path := b.secretPath("data", account.AccountNumber)
	secretData := map[string]interface{}{
		"options": map[string]interface{}{
			"cas": 0,
		},
		"data": map[string]interface{}{
			"account": string(data),
		},
	}

	_, err = b.client.Logical().WriteWithContext(ctx, path, secretData)
	if err != nil {
		if isCASMismatch(err) {
			return interfaces.ErrAccountExists
		}
		b.log.Error("Failed to write to Vault",
			slog.String("path", path),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Info("Stored account in Vault",
		slog.String("account_number", account.AccountNumber),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Update writes a new version of an existing account secret. The write
// carries the version that was read, so a concurrent change makes it fail
// with ErrAccountConflict.
func (b *VaultStore) Update(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return interfaces.ErrAccountNotFound
	}

	_, version, err := b.read(ctx, account.AccountNumber)
	if err != nil {
		return err
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	path := b.secretPath("data", account.AccountNumber)
	_, err = b.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"options": map[string]interface{}{
			"cas": version,
		},
		"data": map[string]interface{}{
			"account": string(data),
		},
	})
	if err != nil {
		if isCASMismatch(err) {
			return interfaces.ErrAccountConflict
		}
		b.log.Error("Failed to write to Vault",
			slog.String("path", path),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Updated account in Vault",
		slog.String("account_number", account.AccountNumber),
		slog.Int64("previous_version", version))
	return nil
}

// Fetch reads the latest version of an account secret.
func (b *VaultStore) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	if !interfaces.ValidAccountNumber(accountNumber) {
		return nil, interfaces.ErrAccountNotFound
	}
	account, _, err := b.read(ctx, accountNumber)
	return account, err
}

// read returns the account and the KV version it was read at.
func (b *VaultStore) read(ctx context.Context, accountNumber string) (*interfaces.Account, int64, error) {
	path := b.secretPath("data", accountNumber)
	secret, err := b.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		b.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return nil, 0, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		b.log.Debug("Account not found in Vault", slog.String("path", path))
		return nil, 0, interfaces.ErrAccountNotFound
	}

	// KV v2 nests the payload under "data"; a deleted version has nil data.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, 0, interfaces.ErrAccountNotFound
	}

	content, ok := data["account"].(string)
	if !ok {
		return nil, 0, fmt.Errorf("account key not found in Vault data")
	}

	var account interfaces.Account
	if err := json.Unmarshal([]byte(content), &account); err != nil {
		return nil, 0, fmt.Errorf("failed to decode account %s: %w", accountNumber, err)
	}

	var version int64
	if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
		switch v := metadata["version"].(type) {
		case json.Number:
			version, _ = v.Int64()
		case float64:
			version = int64(v)
		}
	}
	return &account, version, nil
}

// Count lists the account keys in the KV metadata tree.
func (b *VaultStore) Count(ctx context.Context) (int, error) {
	path := b.secretPath("metadata", "")
	secret, err := b.client.Logical().ListWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	keys, ok := secret.Data["keys"].([]interface{})
	if !ok {
		return 0, nil
	}

	count := 0
	for _, k := range keys {
		// Sub-folders are listed with a trailing slash.
		if s, ok := k.(string); ok && !strings.HasSuffix(s, "/") {
			count++
		}
	}
	return count, nil
}

// Available checks if the Vault store is accessible.
// It uses the health endpoint to verify that Vault is initialized and unsealed.
func (b *VaultStore) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := b.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		b.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		b.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (b *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s-%s", b.mountPath, b.dataPath)
}

// LocationURI returns the URI that identifies this store.
func (b *VaultStore) LocationURI() string {
	return b.locationURI
}

// secretPath builds a KV v2 path; kind is "data" or "metadata".
func (b *VaultStore) secretPath(kind, accountNumber string) string {
	parts := []string{b.mountPath, kind}
	if b.dataPath != "" {
		parts = append(parts, b.dataPath)
	}
	parts = append(parts, accountsDir)
	if accountNumber != "" {
		parts = append(parts, accountNumber)
	}
	return strings.Join(parts, "/")
}

func isCASMismatch(err error) bool {
	var respErr *api.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusBadRequest {
		return false
	}
	for _, e := range respErr.Errors {
		if strings.Contains(e, "check-and-set") {
			return true
		}
	}
	return false
}
