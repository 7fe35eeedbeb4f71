package llm

import "context"

// EventFields are the user-supplied values submitted for semantic validation.
type EventFields struct {
	Location    string
	StartDate   string
	EndDate     string
	LocationMap string
	Graphics    string
}

// Verdicts maps a field name to "OK" or a short problem description.
type Verdicts map[string]string

// VerdictOK marks a field that passed validation.
const VerdictOK = "OK"

// OK reports whether every field passed.
func (v Verdicts) OK() bool {
	for _, verdict := range v {
		if verdict != VerdictOK {
			return false
		}
	}
	return true
}

// Failures returns only the fields that did not pass.
func (v Verdicts) Failures() map[string]string {
	out := make(map[string]string)
	for field, verdict := range v {
		if verdict != VerdictOK {
			out[field] = verdict
		}
	}
	return out
}

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	ValidateEventFields(ctx context.Context, fields EventFields) (Verdicts, error)
}
