package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.manychat.com"
	defaultTimeout = 10 * time.Second

	sendContentPath = "/fb/sending/sendContent"
	setFieldPath    = "/fb/subscriber/setCustomFieldByName"
)

// ManyChat is a thin client for the ManyChat REST API.
type ManyChat struct {
	token   string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewManyChat builds a client. baseURL may be empty for the public API.
func NewManyChat(token, baseURL string, timeout time.Duration, log *slog.Logger) (*ManyChat, error) {
	if token == "" {
		return nil, fmt.Errorf("api token required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ManyChat{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

func (m *ManyChat) SendContent(ctx context.Context, subscriberID, contentID, errorMessage string) bool {
	body := map[string]string{
		"subscriber_id": subscriberID,
		"content_id":    contentID,
	}
	if errorMessage != "" {
		body["error_message"] = errorMessage
	}
	return m.post(ctx, sendContentPath, body)
}

func (m *ManyChat) SetField(ctx context.Context, subscriberID, field, value string) bool {
	return m.post(ctx, setFieldPath, map[string]string{
		"subscriber_id": subscriberID,
		"field_name":    field,
		"field_value":   value,
	})
}

// post fires one call and reports success. Transport errors and non-200
// statuses are treated identically: log and return false, no retry.
func (m *ManyChat) post(ctx context.Context, path string, body map[string]string) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		m.log.Error("manychat: marshal failed", "path", path, "err", err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		m.log.Error("manychat: build request failed", "path", path, "err", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warn("manychat: call failed", "path", path, "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		m.log.Warn("manychat: non-200 response", "path", path, "status", resp.StatusCode, "body", strings.TrimSpace(string(msg)))
		return false
	}
	return true
}
