package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tixy/internal/retry"
)

// Type enumerates the domain events this service emits.
type Type string

const (
	TypeOrganizerRegistered Type = "organizer.registered"
	TypeEventCreated        Type = "event.created"
)

// Event is a fact about a completed write, published for downstream
// consumers (analytics, sync jobs). It is emitted after the vector store
// upsert succeeds and never affects the request outcome.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher exposes a minimal contract to publish events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = p.Publish(ctx, ev); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base, 30*time.Second)):
		}
	}
	return err
}

// Emit marshals payload and publishes it best-effort: failures are logged
// and swallowed.
func Emit(ctx context.Context, log *slog.Logger, p Publisher, typ Type, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("event payload marshal failed", "type", typ, "err", err)
		return
	}
	ev := Event{
		ID:         uuid.New(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}
	if err := PublishWithRetry(ctx, p, ev, 3, 200*time.Millisecond); err != nil {
		log.Warn("event publish failed", "type", typ, "id", ev.ID, "err", err)
	}
}
