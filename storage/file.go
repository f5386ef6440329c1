package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/registration-form/interfaces"
)

const accountsDir = "accounts"

// FileStore implements interfaces.AccountStore on the local file system.
// Each account is a JSON document at <baseDir>/accounts/<account number>.json.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a file store rooted at baseDir, creating the
// directory layout if it doesn't exist.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, accountsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create accounts directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Create writes the account as JSON. The file is opened with O_EXCL so an
// existing account number is never overwritten.
func (b *FileStore) Create(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return fmt.Errorf("invalid account number %q", account.AccountNumber)
	}

	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	filePath := b.getFilePath(account.AccountNumber)
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return interfaces.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	b.log.Debug("Stored account in file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return nil
}

// Update rewrites an existing account file. The new content is written to a
// temporary file and renamed over the old one.
func (b *FileStore) Update(ctx context.Context, account *interfaces.Account) error {
	if !interfaces.ValidAccountNumber(account.AccountNumber) {
		return interfaces.ErrAccountNotFound
	}

	filePath := b.getFilePath(account.AccountNumber)
	if _, err := os.Stat(filePath); errors.Is(err, fs.ErrNotExist) {
		return interfaces.ErrAccountNotFound
	} else if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".update-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	b.log.Debug("Updated account file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))
	return nil
}

// Fetch reads and decodes an account file.
// Returns ErrAccountNotFound if the file doesn't exist.
func (b *FileStore) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	if !interfaces.ValidAccountNumber(accountNumber) {
		return nil, interfaces.ErrAccountNotFound
	}

	filePath := b.getFilePath(accountNumber)
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var account interfaces.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", accountNumber, err)
	}

	b.log.Debug("Fetched account from file", slog.String("path", filePath))
	return &account, nil
}

// Count returns the number of account files.
func (b *FileStore) Count(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(filepath.Join(b.baseDir, accountsDir))
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

// Available checks if the file store is accessible by verifying the base directory exists.
func (b *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (b *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (b *FileStore) LocationURI() string {
	return b.locationURI
}

func (b *FileStore) getFilePath(accountNumber string) string {
	return filepath.Join(b.baseDir, accountsDir, accountNumber+".json")
}
