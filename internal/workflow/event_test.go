package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"tixy/internal/llm"
	"tixy/internal/vectorstore"
)

func okVerdicts() llm.Verdicts {
	return llm.Verdicts{
		"event_location":     llm.VerdictOK,
		"event_start_date":   llm.VerdictOK,
		"event_end_date":     llm.VerdictOK,
		"event_location_map": llm.VerdictOK,
		"event_graphics":     llm.VerdictOK,
	}
}

func validEventInput() EventInput {
	return EventInput{
		OrganizerEmail:   "a@x.com",
		EventTitle:       "GopherCon",
		EventDescription: "A conference about Go",
		EventStartDate:   "2026-09-01",
		EventEndDate:     "2026-09-03",
		EventLocation:    "Berlin",
		EventLocationMap: "https://maps.example.com/berlin",
		EventGraphics:    "https://cdn.example.com/banner.png",
		MessengerUserID:  "u1",
	}
}

func TestCreateEventSuccess(t *testing.T) {
	w, m := newTestWorkflows()

	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(okVerdicts(), nil).Once()
	m.store.On("Fetch", mock.Anything, "tixy-organizers", "a@x.com").Return(&vectorstore.Record{ID: "a@x.com"}, nil).Once()
	m.embedder.On("Embed", mock.Anything, "A conference about Go").Return([]float32{0.3}, nil).Once()
	m.store.On("Upsert", mock.Anything, "tixy-events", mock.MatchedBy(func(rec vectorstore.Record) bool {
		return rec.ID == "a@x.com-GopherCon-2026-09-01" &&
			rec.Metadata["event_title"] == "GopherCon" &&
			rec.Metadata["event_location"] == "Berlin"
	})).Return(nil).Once()
	m.notifier.On("SetField", mock.Anything, "u1", "event_addition", "success").Return(true).Once()
	m.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	if err := w.CreateEvent(context.Background(), validEventInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.store.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestCreateEventMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"missing email", func(in *EventInput) { in.OrganizerEmail = "" }, "organizer_email"},
		{"missing title", func(in *EventInput) { in.EventTitle = "" }, "event_title"},
		{"missing start date", func(in *EventInput) { in.EventStartDate = "" }, "event_start_date"},
		{"missing end date", func(in *EventInput) { in.EventEndDate = "" }, "event_end_date"},
		{"missing location", func(in *EventInput) { in.EventLocation = "" }, "event_location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, m := newTestWorkflows()
			in := validEventInput()
			tt.mutate(&in)

			err := w.CreateEvent(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Details[tt.field]; !ok {
				t.Errorf("expected %s in details, got %v", tt.field, verr.Details)
			}
			m.validator.AssertNotCalled(t, "ValidateEventFields", mock.Anything, mock.Anything)
			m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
			m.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateEventSemanticValidationFails(t *testing.T) {
	w, m := newTestWorkflows()

	verdicts := okVerdicts()
	verdicts["event_location"] = "location is empty"
	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(verdicts, nil).Once()

	in := validEventInput()
	in.EventLocation = " " // present but semantically empty
	err := w.CreateEvent(context.Background(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Details["event_location"] != "location is empty" {
		t.Errorf("expected per-field verdict in details, got %v", verr.Details)
	}
	// No store upsert is performed.
	m.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestCreateEventSemanticValidationServiceFailure(t *testing.T) {
	w, m := newTestWorkflows()

	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(nil, errors.New("malformed verdict response")).Once()

	err := w.CreateEvent(context.Background(), validEventInput())
	var derr *DependencyError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	m.store.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEventUnregisteredOrganizer(t *testing.T) {
	w, m := newTestWorkflows()

	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(okVerdicts(), nil).Once()
	m.store.On("Fetch", mock.Anything, "tixy-organizers", "b@y.com").Return(nil, nil).Once()

	in := validEventInput()
	in.OrganizerEmail = "b@y.com"
	err := w.CreateEvent(context.Background(), in)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// No embedding call is made for an unregistered organizer.
	m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	m.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEventEmbedFailure(t *testing.T) {
	w, m := newTestWorkflows()

	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(okVerdicts(), nil).Once()
	m.store.On("Fetch", mock.Anything, "tixy-organizers", "a@x.com").Return(&vectorstore.Record{ID: "a@x.com"}, nil).Once()
	m.embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embedding service down")).Once()

	err := w.CreateEvent(context.Background(), validEventInput())
	var derr *DependencyError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	m.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEventAttributeFailureDoesNotChangeOutcome(t *testing.T) {
	w, m := newTestWorkflows()

	m.validator.On("ValidateEventFields", mock.Anything, mock.Anything).Return(okVerdicts(), nil).Once()
	m.store.On("Fetch", mock.Anything, "tixy-organizers", "a@x.com").Return(&vectorstore.Record{ID: "a@x.com"}, nil).Once()
	m.embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.3}, nil).Once()
	m.store.On("Upsert", mock.Anything, "tixy-events", mock.Anything).Return(nil).Once()
	m.notifier.On("SetField", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false)
	m.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	if err := w.CreateEvent(context.Background(), validEventInput()); err != nil {
		t.Fatalf("attribute failures must not change the outcome: %v", err)
	}
}

func TestEventKeyDeterministic(t *testing.T) {
	base := EventKey("a@x.com", "GopherCon", "2026-09-01")

	if EventKey("a@x.com", "GopherCon", "2026-09-01") != base {
		t.Error("same components must yield the same key")
	}

	variants := []string{
		EventKey("b@y.com", "GopherCon", "2026-09-01"),
		EventKey("a@x.com", "RustConf", "2026-09-01"),
		EventKey("a@x.com", "GopherCon", "2026-10-01"),
	}
	for _, v := range variants {
		if v == base {
			t.Errorf("differing a component must yield a different key, got %q twice", v)
		}
	}

	if base != "a@x.com-GopherCon-2026-09-01" {
		t.Errorf("unexpected key format: %q", base)
	}
}
