package workflow

import (
	"context"

	"tixy/internal/events"
	"tixy/internal/llm"
	"tixy/internal/vectorstore"
)

// EventInput is the create-event webhook payload.
type EventInput struct {
	OrganizerEmail   string `json:"organizer_email" validate:"required"`
	EventTitle       string `json:"event_title" validate:"required"`
	EventDescription string `json:"event_description"`
	EventStartDate   string `json:"event_start_date" validate:"required"`
	EventEndDate     string `json:"event_end_date" validate:"required"`
	EventLocation    string `json:"event_location" validate:"required"`
	EventLocationMap string `json:"event_location_map"`
	EventGraphics    string `json:"event_graphics"`
	MessengerUserID  string `json:"messenger_user_id"`
}

// EventKey derives the event record id. Deterministic concatenation, no
// collision handling: the same triple always maps to the same record.
func EventKey(email, title, startDate string) string {
	return email + "-" + title + "-" + startDate
}

// CreateEvent runs the event-creation flow: field validation, semantic
// validation, organizer-existence check, embed the description, upsert.
func (w *Workflows) CreateEvent(ctx context.Context, in EventInput) error {
	if err := validate.Struct(&in); err != nil {
		return requiredFields(err)
	}

	verdicts, err := w.validator.ValidateEventFields(ctx, llm.EventFields{
		Location:    in.EventLocation,
		StartDate:   in.EventStartDate,
		EndDate:     in.EventEndDate,
		LocationMap: in.EventLocationMap,
		Graphics:    in.EventGraphics,
	})
	if err != nil {
		return &DependencyError{Op: "semantic validation", Err: err}
	}
	if !verdicts.OK() {
		return &ValidationError{Message: "event fields failed validation", Details: verdicts}
	}

	organizer, err := w.store.Fetch(ctx, w.cfg.OrganizerIndex, in.OrganizerEmail)
	if err != nil {
		return &DependencyError{Op: "fetch organizer", Err: err}
	}
	if organizer == nil {
		return ErrNotFound
	}

	vec, err := w.embedder.Embed(ctx, in.EventDescription)
	if err != nil {
		return &DependencyError{Op: "embed event description", Err: err}
	}

	key := EventKey(in.OrganizerEmail, in.EventTitle, in.EventStartDate)
	rec := vectorstore.Record{
		ID:     key,
		Values: vec,
		Metadata: map[string]any{
			"organizer_email":    in.OrganizerEmail,
			"event_title":        in.EventTitle,
			"event_description":  in.EventDescription,
			"event_start_date":   in.EventStartDate,
			"event_end_date":     in.EventEndDate,
			"event_location":     in.EventLocation,
			"event_location_map": in.EventLocationMap,
			"event_graphics":     in.EventGraphics,
			"messenger_user_id":  in.MessengerUserID,
		},
	}
	if err := w.store.Upsert(ctx, w.cfg.EventIndex, rec); err != nil {
		return &DependencyError{Op: "upsert event", Err: err}
	}

	// Best-effort side effects; none of these change the outcome.
	if in.MessengerUserID != "" {
		w.notifier.SetField(ctx, in.MessengerUserID, "event_addition", "success")
	}
	events.Emit(ctx, w.log, w.publisher, events.TypeEventCreated, map[string]string{
		"organizer_email": in.OrganizerEmail,
		"event_title":     in.EventTitle,
		"event_key":       key,
	})

	return nil
}
