package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/ruteri/registration-form/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiStore_Available(t *testing.T) {
	tests := []struct {
		name     string
		stores   []bool
		expected bool
	}{
		{
			name:     "all stores available",
			stores:   []bool{true, true, true},
			expected: true,
		},
		{
			name:     "some stores available",
			stores:   []bool{false, true, false},
			expected: true,
		},
		{
			name:     "no stores available",
			stores:   []bool{false, false, false},
			expected: false,
		},
		{
			name:     "no stores",
			stores:   []bool{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stores []interfaces.AccountStore
			for i, available := range tt.stores {
				m := &MockAccountStore{StoreName: fmt.Sprintf("mock-A%x", i)}
				m.On("Available", mock.Anything).Return(available).Maybe()
				stores = append(stores, m)
			}

			multi := NewMultiStore(stores, discardLogger())
			assert.Equal(t, tt.expected, multi.Available(context.Background()))

			for _, s := range stores {
				s.(*MockAccountStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStore_Fetch(t *testing.T) {
	account := &interfaces.Account{AccountNumber: "191026-143005-001", FullName: "Juan Dela Cruz"}
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.AccountStore
		expected      *interfaces.Account
		expectedError error
	}{
		{
			name: "first store successful",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, account.AccountNumber).Return(account, nil)
				m2 := &MockAccountStore{StoreName: "mock-B"}
				return []interfaces.AccountStore{m1, m2}
			},
			expected: account,
		},
		{
			name: "falls back past a missing record",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, account.AccountNumber).Return(nil, interfaces.ErrAccountNotFound)
				m2 := &MockAccountStore{StoreName: "mock-B"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, account.AccountNumber).Return(account, nil)
				return []interfaces.AccountStore{m1, m2}
			},
			expected: account,
		},
		{
			name: "skips unavailable store",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(false)
				m2 := &MockAccountStore{StoreName: "mock-B"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, account.AccountNumber).Return(account, nil)
				return []interfaces.AccountStore{m1, m2}
			},
			expected: account,
		},
		{
			name: "not found everywhere",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, account.AccountNumber).Return(nil, interfaces.ErrAccountNotFound)
				m2 := &MockAccountStore{StoreName: "mock-B"}
				m2.On("Available", mock.Anything).Return(true)
				m2.On("Fetch", mock.Anything, account.AccountNumber).Return(nil, interfaces.ErrAccountNotFound)
				return []interfaces.AccountStore{m1, m2}
			},
			expectedError: interfaces.ErrAccountNotFound,
		},
		{
			name: "store failure",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(true)
				m1.On("Fetch", mock.Anything, account.AccountNumber).Return(nil, testErr)
				return []interfaces.AccountStore{m1}
			},
			expectedError: testErr,
		},
		{
			name: "no stores available",
			setupMocks: func() []interfaces.AccountStore {
				m1 := &MockAccountStore{StoreName: "mock-A"}
				m1.On("Available", mock.Anything).Return(false)
				return []interfaces.AccountStore{m1}
			},
			expectedError: interfaces.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := tt.setupMocks()
			multi := NewMultiStore(stores, discardLogger())

			got, err := multi.Fetch(context.Background(), account.AccountNumber)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}

			for _, s := range stores {
				s.(*MockAccountStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStore_Create(t *testing.T) {
	account := &interfaces.Account{AccountNumber: "191026-143005-001"}
	testErr := errors.New("test error")

	newStore := func(name string, available bool) *MockAccountStore {
		m := &MockAccountStore{StoreName: name}
		m.On("Available", mock.Anything).Return(available)
		if available {
			m.On("Fetch", mock.Anything, account.AccountNumber).Return(nil, interfaces.ErrAccountNotFound)
		}
		return m
	}

	t.Run("writes to every available store", func(t *testing.T) {
		m1 := newStore("mock-A", true)
		m1.On("Create", mock.Anything, account).Return(nil).Once()
		m2 := newStore("mock-B", false)
		m3 := newStore("mock-C", true)
		m3.On("Create", mock.Anything, account).Return(nil).Once()

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2, m3}, discardLogger())
		require.NoError(t, multi.Create(context.Background(), account))

		m1.AssertExpectations(t)
		m2.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m3.AssertExpectations(t)
	})

	t.Run("partial failure still succeeds", func(t *testing.T) {
		m1 := newStore("mock-A", true)
		m1.On("Create", mock.Anything, account).Return(testErr)
		m2 := newStore("mock-B", true)
		m2.On("Create", mock.Anything, account).Return(nil)

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
		assert.NoError(t, multi.Create(context.Background(), account))
	})

	t.Run("taken in one store writes nowhere", func(t *testing.T) {
		m1 := newStore("mock-A", true)
		m2 := &MockAccountStore{StoreName: "mock-B"}
		m2.On("Available", mock.Anything).Return(true)
		m2.On("Fetch", mock.Anything, account.AccountNumber).Return(&interfaces.Account{AccountNumber: account.AccountNumber}, nil)

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
		assert.ErrorIs(t, multi.Create(context.Background(), account), interfaces.ErrAccountExists)

		m1.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m2.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("taken during write fails even if another store accepted", func(t *testing.T) {
		m1 := newStore("mock-A", true)
		m1.On("Create", mock.Anything, account).Return(nil)
		m2 := newStore("mock-B", true)
		m2.On("Create", mock.Anything, account).Return(interfaces.ErrAccountExists)

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
		assert.ErrorIs(t, multi.Create(context.Background(), account), interfaces.ErrAccountExists)
	})

	t.Run("all fail", func(t *testing.T) {
		m1 := newStore("mock-A", true)
		m1.On("Create", mock.Anything, account).Return(testErr)

		multi := NewMultiStore([]interfaces.AccountStore{m1}, discardLogger())
		assert.ErrorIs(t, multi.Create(context.Background(), account), testErr)
	})

	t.Run("none available", func(t *testing.T) {
		m1 := newStore("mock-A", false)

		multi := NewMultiStore([]interfaces.AccountStore{m1}, discardLogger())
		assert.ErrorIs(t, multi.Create(context.Background(), account), interfaces.ErrBackendUnavailable)
	})
}

func TestMultiStore_Update(t *testing.T) {
	account := &interfaces.Account{AccountNumber: "191026-143005-001", Balance: 50}

	t.Run("updates every store holding the account", func(t *testing.T) {
		m1 := &MockAccountStore{StoreName: "mock-A"}
		m1.On("Available", mock.Anything).Return(true)
		m1.On("Update", mock.Anything, account).Return(nil).Once()
		m2 := &MockAccountStore{StoreName: "mock-B"}
		m2.On("Available", mock.Anything).Return(true)
		m2.On("Update", mock.Anything, account).Return(interfaces.ErrAccountNotFound).Once()

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
		require.NoError(t, multi.Update(context.Background(), account))
		m1.AssertExpectations(t)
		m2.AssertExpectations(t)
	})

	t.Run("not found anywhere", func(t *testing.T) {
		m1 := &MockAccountStore{StoreName: "mock-A"}
		m1.On("Available", mock.Anything).Return(true)
		m1.On("Update", mock.Anything, account).Return(interfaces.ErrAccountNotFound)

		multi := NewMultiStore([]interfaces.AccountStore{m1}, discardLogger())
		assert.ErrorIs(t, multi.Update(context.Background(), account), interfaces.ErrAccountNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		testErr := errors.New("test error")
		m1 := &MockAccountStore{StoreName: "mock-A"}
		m1.On("Available", mock.Anything).Return(true)
		m1.On("Update", mock.Anything, account).Return(testErr)
		m2 := &MockAccountStore{StoreName: "mock-B"}
		m2.On("Available", mock.Anything).Return(false)

		multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
		assert.ErrorIs(t, multi.Update(context.Background(), account), testErr)
		m2.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestMultiStore_Count(t *testing.T) {
	m1 := &MockAccountStore{StoreName: "mock-A"}
	m1.On("Available", mock.Anything).Return(false)
	m2 := &MockAccountStore{StoreName: "mock-B"}
	m2.On("Available", mock.Anything).Return(true)
	m2.On("Count", mock.Anything).Return(7, nil)

	multi := NewMultiStore([]interfaces.AccountStore{m1, m2}, discardLogger())
	n, err := multi.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "multi:[mock://mock-A,mock://mock-B]", multi.LocationURI())
}
