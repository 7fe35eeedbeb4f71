package workflow

import (
	"context"

	"tixy/internal/events"
	"tixy/internal/vectorstore"
)

// RegisterInput is the register-organizer webhook payload. Payload holds
// the full decoded body so extra fields survive into the stored metadata.
type RegisterInput struct {
	MessengerUserID string `json:"messenger_user_id" validate:"required"`
	OrganizerName   string `json:"organizer_name" validate:"required"`
	OrganizerEmail  string `json:"organizer_email" validate:"required"`

	Payload map[string]any `json:"-"`
}

// RegisterOrganizer runs the registration flow: duplicate check, embed the
// name, upsert keyed by email, then best-effort notifications.
func (w *Workflows) RegisterOrganizer(ctx context.Context, in RegisterInput) error {
	if err := validate.Struct(&in); err != nil {
		return requiredFields(err)
	}

	existing, err := w.store.Fetch(ctx, w.cfg.OrganizerIndex, in.OrganizerEmail)
	if err != nil {
		return &DependencyError{Op: "fetch organizer", Err: err}
	}
	if existing != nil {
		// No update-in-place: the first registration wins.
		w.notifier.SendContent(ctx, in.MessengerUserID, w.cfg.DuplicateTemplateID, ErrConflict.Error())
		return ErrConflict
	}

	vec, err := w.embedder.Embed(ctx, in.OrganizerName)
	if err != nil {
		return &DependencyError{Op: "embed organizer name", Err: err}
	}

	metadata := make(map[string]any, len(in.Payload)+3)
	for k, v := range in.Payload {
		metadata[k] = v
	}
	metadata["organizer_name"] = in.OrganizerName
	metadata["organizer_email"] = in.OrganizerEmail
	metadata["messenger_user_id"] = in.MessengerUserID

	rec := vectorstore.Record{ID: in.OrganizerEmail, Values: vec, Metadata: metadata}
	if err := w.store.Upsert(ctx, w.cfg.OrganizerIndex, rec); err != nil {
		return &DependencyError{Op: "upsert organizer", Err: err}
	}

	// Best-effort side effects; none of these change the outcome.
	w.notifier.SetField(ctx, in.MessengerUserID, "organizer_status", "registered")
	w.notifier.SendContent(ctx, in.MessengerUserID, w.cfg.RegisteredTemplateID, "")
	events.Emit(ctx, w.log, w.publisher, events.TypeOrganizerRegistered, map[string]string{
		"organizer_email": in.OrganizerEmail,
		"organizer_name":  in.OrganizerName,
	})

	return nil
}
