package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TeamsWebhook posts operator alerts to a Microsoft Teams incoming webhook.
// With no URL configured it degrades to log-only; alert delivery is never
// allowed to fail a run, so callers log returned errors and move on.
type TeamsWebhook struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

// NewTeamsWebhook creates the notifier. url may be empty.
func NewTeamsWebhook(url string, logger *zap.Logger) *TeamsWebhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamsWebhook{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		url:        url,
		logger:     logger,
	}
}

// Notify delivers one alert message
func (t *TeamsWebhook) Notify(ctx context.Context, message string) error {
	if t.url == "" {
		t.logger.Warn("no teams webhook configured, alert logged only",
			zap.String("message", message))
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach teams webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("teams webhook returned status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
