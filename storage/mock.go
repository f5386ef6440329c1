package storage

import (
	"context"

	"github.com/ruteri/registration-form/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAccountStore implements interfaces.AccountStore for testing.
type MockAccountStore struct {
	mock.Mock
	StoreName string
}

func (m *MockAccountStore) Create(ctx context.Context, account *interfaces.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Update(ctx context.Context, account *interfaces.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Fetch(ctx context.Context, accountNumber string) (*interfaces.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Account), args.Error(1)
}

func (m *MockAccountStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockAccountStore) Name() string {
	return m.StoreName
}

func (m *MockAccountStore) LocationURI() string {
	return "mock://" + m.StoreName
}
