package notify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of Notifier using testify/mock.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendContent(ctx context.Context, subscriberID, contentID, errorMessage string) bool {
	args := m.Called(ctx, subscriberID, contentID, errorMessage)
	return args.Bool(0)
}

func (m *MockNotifier) SetField(ctx context.Context, subscriberID, field, value string) bool {
	args := m.Called(ctx, subscriberID, field, value)
	return args.Bool(0)
}
