package vectorstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) EnsureIndex(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) Fetch(ctx context.Context, index, id string) (*Record, error) {
	args := m.Called(ctx, index, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Record), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, index string, rec Record) error {
	args := m.Called(ctx, index, rec)
	return args.Error(0)
}
