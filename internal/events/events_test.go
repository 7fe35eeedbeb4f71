package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

func TestPublishWithRetryEventuallySucceeds(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down")).Twice()
	p.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	ev := Event{Type: TypeOrganizerRegistered}
	if err := PublishWithRetry(context.Background(), p, ev, 3, time.Millisecond); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	p.AssertNumberOfCalls(t, "Publish", 3)
}

func TestPublishWithRetryExhausts(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	ev := Event{Type: TypeEventCreated}
	if err := PublishWithRetry(context.Background(), p, ev, 3, time.Millisecond); err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	p.AssertNumberOfCalls(t, "Publish", 3)
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Must not panic or surface the error.
	Emit(context.Background(), log, p, TypeOrganizerRegistered, map[string]string{"organizer_email": "a@x.com"})
}

func TestEmitFillsEnvelope(t *testing.T) {
	p := new(MockPublisher)
	var got Event
	p.On("Publish", mock.Anything, mock.MatchedBy(func(ev Event) bool {
		got = ev
		return true
	})).Return(nil).Once()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	Emit(context.Background(), log, p, TypeEventCreated, map[string]string{"event_title": "GopherCon"})

	if got.Type != TypeEventCreated {
		t.Errorf("expected type %s, got %s", TypeEventCreated, got.Type)
	}
	if got.OccurredAt.IsZero() {
		t.Error("expected OccurredAt to be set")
	}
	if len(got.Payload) == 0 {
		t.Error("expected payload to be set")
	}
}
