// Package generator provides the code generation clients behind the chat.
// The strategy is chosen once at startup; callers only see Client.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yaguaretech/builder/config"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
)

// ErrGeneration wraps every failure of a generation call
var ErrGeneration = errors.New("generation failed")

// Client produces one complete result per call. No streaming, no partial
// results.
type Client interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	Name() string
}

// Strategy names accepted by New
const (
	StrategyMock   = "mock"
	StrategyOpenAI = "openai"
)

// New builds the client selected by configuration. An openai strategy
// without an API key degrades to the mock.
func New(cfg *config.Config) (Client, error) {
	switch strings.ToLower(cfg.Generator) {
	case "", StrategyMock:
		return NewMockClient(cfg.MockDelay), nil
	case StrategyOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not configured, falling back to mock generator")
			return NewMockClient(cfg.MockDelay), nil
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.Generator)
	}
}

// sanitizeFiles validates, normalizes and dedupes generated files, dropping
// entries that cannot be placed in a project
func sanitizeFiles(files []models.FileChange) []models.FileChange {
	out := make([]models.FileChange, 0, len(files))
	for _, f := range files {
		if f.Action == "" {
			f.Action = models.ActionCreate
		}
		if err := f.Validate(); err != nil {
			log.Warn().Err(err).Str("path", f.Path).Msg("dropping invalid generated file")
			continue
		}
		f.Path, _ = models.NormalizePath(f.Path)
		out = append(out, f)
	}
	return models.Dedupe(out)
}
