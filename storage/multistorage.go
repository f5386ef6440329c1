package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/registration-form/interfaces"
)

// MultiStore implements interfaces.AccountStore over several stores.
// Writes go to every available store; reads come from the first available
// store that has the record.
type MultiStore struct {
	stores []interfaces.AccountStore
	log    *slog.Logger
}

func NewMultiStore(stores []interfaces.AccountStore, logger *slog.Logger) *MultiStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		stores: stores,
		log:    logger,
	}
}

// Create stores the account in every available store. It succeeds when at
// least one store accepted the account and none already held the account
// number.
//
// Every available store is checked for the account number before anything
// is written. A store that still reports ErrAccountExists during the write
// makes Create fail with ErrAccountExists; the stores that accepted the
// account are logged, since they now hold a different record under a number
// that was already taken elsewhere.
func (m *MultiStore) Create(ctx context.Context, account *interfaces.Account) error {
	start := time.Now()

	var available []interfaces.AccountStore
	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Store unavailable", slog.String("store_name", store.Name()))
			continue
		}
		if _, err := store.Fetch(ctx, account.AccountNumber); err == nil {
			m.log.Warn("Account number already taken",
				slog.String("store_name", store.Name()),
				slog.String("account_number", account.AccountNumber))
			return fmt.Errorf("%s: %w", store.Name(), interfaces.ErrAccountExists)
		}
		available = append(available, store)
	}

	var errs []error
	var stored, existsIn []string

	for _, store := range available {
		err := store.Create(ctx, account)
		switch {
		case err == nil:
			stored = append(stored, store.Name())
		case errors.Is(err, interfaces.ErrAccountExists):
			existsIn = append(existsIn, store.Name())
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		default:
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			m.log.Debug("Failed to store account",
				slog.String("store_name", store.Name()),
				slog.String("account_number", account.AccountNumber),
				"err", err)
		}
	}

	if len(existsIn) > 0 {
		m.log.Warn("Account number taken in some stores during create",
			slog.String("account_number", account.AccountNumber),
			slog.Any("exists_in", existsIn),
			slog.Any("stored_in", stored))
		return errors.Join(errs...)
	}

	if len(stored) == 0 {
		m.log.Error("All stores failed to store account",
			slog.String("account_number", account.AccountNumber),
			slog.Int("failed_stores", len(errs)),
			slog.Duration("duration", time.Since(start)))
		if len(errs) == 0 {
			return interfaces.ErrBackendUnavailable
		}
		return errors.Join(errs...)
	}

	if len(errs) > 0 {
		m.log.Warn("Account stored in some stores only",
			slog.String("account_number", account.AccountNumber),
			slog.Any("stored_in", stored),
			slog.Int("failed_stores", len(errs)))
	}
	return nil
}

// Update replaces the account in every available store that holds it. It
// returns ErrAccountNotFound when no store holds the account.
func (m *MultiStore) Update(ctx context.Context, account *interfaces.Account) error {
	var errs []error
	updated := 0
	missing := 0

	for _, store := range m.stores {
		if !store.Available(ctx) {
			continue
		}

		err := store.Update(ctx, account)
		switch {
		case err == nil:
			updated++
		case errors.Is(err, interfaces.ErrAccountNotFound):
			missing++
		default:
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		}
	}

	if updated == 0 {
		if len(errs) == 0 {
			if missing > 0 {
				return interfaces.ErrAccountNotFound
			}
			return interfaces.ErrBackendUnavailable
		}
		m.log.Error("All stores failed to update account",
			slog.String("account_number", account.AccountNumber),
			slog.Int("failed_stores", len(errs)))
		return errors.Join(errs...)
	}

	if len(errs) > 0 {
		m.log.Warn("Account updated in some stores only",
			slog.String("account_number", account.AccountNumber),
			slog.Int("updated", updated),
			slog.Int("failed_stores", len(errs)))
	}
	return nil
}

// Fetch returns the account from the first available store that has it.
func (m *MultiStore) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	start := time.Now()
	var errs []error

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Store unavailable",
				slog.String("store_name", store.Name()),
				slog.String("account_number", accountNumber))
			continue
		}

		account, err := store.Fetch(ctx, accountNumber)
		if err == nil {
			m.log.Debug("Fetched account",
				slog.String("store_name", store.Name()),
				slog.String("account_number", accountNumber),
				slog.Duration("duration", time.Since(start)))
			return account, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
	}

	notFound := len(errs) > 0
	for _, err := range errs {
		if !errors.Is(err, interfaces.ErrAccountNotFound) {
			notFound = false
		}
	}
	if notFound {
		return nil, interfaces.ErrAccountNotFound
	}

	m.log.Error("All stores failed to fetch account",
		slog.String("account_number", accountNumber),
		slog.Int("failed_stores", len(errs)),
		slog.Duration("duration", time.Since(start)))
	if len(errs) == 0 {
		return nil, interfaces.ErrBackendUnavailable
	}
	return nil, errors.Join(errs...)
}

// Count returns the count of the first available store.
func (m *MultiStore) Count(ctx context.Context) (int, error) {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return store.Count(ctx)
		}
	}
	return 0, interfaces.ErrBackendUnavailable
}

// Available checks if any store is available
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *MultiStore) Name() string {
	return "multi-store"
}

// LocationURI combines the URIs of all stores.
func (m *MultiStore) LocationURI() string {
	var locations []string
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
