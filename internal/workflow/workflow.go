package workflow

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tixy/internal/embeddings"
	"tixy/internal/events"
	"tixy/internal/llm"
	"tixy/internal/notify"
	"tixy/internal/vectorstore"
)

// validate checks required-field tags on inbound payloads; error details
// are reported under the json field names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config names the indexes and notification templates the workflows use.
type Config struct {
	OrganizerIndex       string
	EventIndex           string
	RegisteredTemplateID string
	DuplicateTemplateID  string
}

// Workflows orchestrates the registration and event-creation flows over
// the external collaborators. All handles are set once at startup and
// immutable afterwards; each request runs independently.
type Workflows struct {
	cfg       Config
	log       *slog.Logger
	store     vectorstore.Store
	embedder  embeddings.Embedder
	validator llm.Client
	notifier  notify.Notifier
	publisher events.Publisher
}

func New(
	cfg Config,
	log *slog.Logger,
	store vectorstore.Store,
	embedder embeddings.Embedder,
	validator llm.Client,
	notifier notify.Notifier,
	publisher events.Publisher,
) *Workflows {
	return &Workflows{
		cfg:       cfg,
		log:       log,
		store:     store,
		embedder:  embedder,
		validator: validator,
		notifier:  notifier,
		publisher: publisher,
	}
}

// requiredFields converts validator errors into a per-field details map.
func requiredFields(err error) *ValidationError {
	details := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return &ValidationError{Message: "missing required fields", Details: details}
}
