// Package completion sends composed prompts to a language model and
// returns its text answer.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty completion response")
	// ErrStatus is returned when the relay answers with a non-2xx status.
	ErrStatus = errors.New("unexpected relay status")
)

// Completer is the outbound port to a text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderRelay  = "relay"
)

type Options struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	RelayToken  string
}

// New builds the Completer selected by opts.Provider.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Completer, error) {
	switch strings.ToLower(opts.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model, opts.MaxTokens, opts.Temperature, logger), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, opts.APIKey, opts.BaseURL, opts.Model, opts.MaxTokens, opts.Temperature, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderRelay:
		return NewRelay(opts.BaseURL, opts.RelayToken, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", opts.Provider)
	}
}
