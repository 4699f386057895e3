package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// maxRelayBody bounds how much of a relay response is read.
const maxRelayBody = 1 << 20

type relayRequest struct {
	Prompt string `json:"prompt"`
}

type relayResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Relay forwards prompts to a backend that holds the model credentials.
type Relay struct {
	url    string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewRelay creates a relay client. A nil client means http.DefaultClient;
// deadlines come from the context passed to Complete.
func NewRelay(url, token string, client *http.Client, logger *zap.Logger) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{
		url:    url,
		token:  token,
		client: client,
		logger: logger,
	}
}

func (r *Relay) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(relayRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("Relay returned an error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(data), 200)))
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var out relayResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("relay error: %s", out.Error)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
