package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ngocvh/backend-cho/internal/resilience"
)

// Relay delivers push notifications through an Expo-compatible push endpoint.
// Transient relay failures are retried in-process; a breaker stops hammering
// the relay when it is down and asynq retries the task later.
type Relay struct {
	URL    string
	Client resilience.HTTPClient
}

// NewRelay builds a relay with an instrumented, breaker-guarded HTTP client.
func NewRelay(url string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Relay{
		URL: url,
		Client: resilience.HTTPClient{
			Client: &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
				Timeout:   timeout,
			},
			Breaker:     resilience.NewBreaker("push-relay", 5, 0.6, 30*time.Second),
			MaxAttempts: 2,
			BaseBackoff: 200 * time.Millisecond,
			Jitter:      0.2,
		},
	}
}

type pushMessage struct {
	To    []string       `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Send delivers one notification to the given device tokens.
func (r *Relay) Send(ctx context.Context, tokens []string, title, body string, data map[string]any) error {
	if r == nil || r.URL == "" {
		return errors.New("notify: relay not configured")
	}
	if len(tokens) == 0 {
		return nil
	}
	encoded, err := json.Marshal(pushMessage{To: tokens, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("push relay: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push relay returned status %d", resp.StatusCode)
	}
	return nil
}
