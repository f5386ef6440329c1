package storage

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ruteri/registration-form/interfaces"
)

// MemoryStore keeps accounts in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]interfaces.Account
	log      *slog.Logger
}

func NewMemoryStore(log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]interfaces.Account),
		log:      log,
	}
}

// Create stores a copy of account.
func (s *MemoryStore) Create(ctx context.Context, account *interfaces.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountNumber]; ok {
		return interfaces.ErrAccountExists
	}
	s.accounts[account.AccountNumber] = cloneAccount(account)

	s.log.Debug("Stored account in memory", slog.String("account_number", account.AccountNumber))
	return nil
}

// Update replaces the stored copy of account.
func (s *MemoryStore) Update(ctx context.Context, account *interfaces.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountNumber]; !ok {
		return interfaces.ErrAccountNotFound
	}
	s.accounts[account.AccountNumber] = cloneAccount(account)
	return nil
}

// Fetch returns a copy of the stored account.
func (s *MemoryStore) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, interfaces.ErrAccountNotFound
	}
	account = cloneAccount(&account)
	return &account, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) LocationURI() string {
	return "memory://"
}

func cloneAccount(a *interfaces.Account) interfaces.Account {
	c := *a
	c.Transactions = slices.Clone(a.Transactions)
	return c
}
