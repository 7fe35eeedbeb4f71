package notify

import "context"

// Notifier sends best-effort messages to a chat-platform subscriber.
// Both calls report success as a bool and never return an error: failures
// are logged by the implementation and must not block the caller.
type Notifier interface {
	// SendContent delivers a templated content message. errorMessage, when
	// non-empty, is attached as an extra field for the template.
	SendContent(ctx context.Context, subscriberID, contentID, errorMessage string) bool

	// SetField sets a custom attribute on the subscriber profile.
	SetField(ctx context.Context, subscriberID, field, value string) bool
}
