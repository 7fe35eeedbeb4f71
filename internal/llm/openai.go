package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

const (
	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.0
)

// Field names the validator must return a verdict for; they match the
// inbound webhook payload keys.
var verdictFields = []string{
	"event_location",
	"event_start_date",
	"event_end_date",
	"event_location_map",
	"event_graphics",
}

const validationSystemPrompt = "You review event submission fields. " +
	"For each field, reply \"OK\" if the value is plausible for its purpose, " +
	"or a short error message if it is empty, malformed, or nonsensical. " +
	"A location must be a real-looking place name or address. Dates must be parseable " +
	"calendar dates with the end not before the start. Link fields may be empty, but when " +
	"present must look like URLs. Respond with only a JSON object mapping each field name " +
	"to its verdict, no prose, no code fences."

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) ValidateEventFields(ctx context.Context, fields EventFields) (Verdicts, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	user, err := json.Marshal(map[string]string{
		"event_location":     fields.Location,
		"event_start_date":   fields.StartDate,
		"event_end_date":     fields.EndDate,
		"event_location_map": fields.LocationMap,
		"event_graphics":     fields.Graphics,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(validationSystemPrompt, string(user)),
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai: no choices returned")
	}
	return parseVerdicts(resp.Choices[0].Message.Content)
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// parseVerdicts decodes the model reply as a flat string-to-string JSON
// object. The reply is untrusted text: anything that does not decode, or
// that misses an expected field, is a parse failure. It is never evaluated.
func parseVerdicts(content string) (Verdicts, error) {
	trimmed := stripFence(content)

	var verdicts Verdicts
	if err := json.Unmarshal([]byte(trimmed), &verdicts); err != nil {
		return nil, fmt.Errorf("malformed verdict response: %w", err)
	}
	for _, field := range verdictFields {
		if _, ok := verdicts[field]; !ok {
			return nil, fmt.Errorf("verdict response missing field %s", field)
		}
	}
	return verdicts, nil
}

// stripFence removes an optional markdown code fence around the reply.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
