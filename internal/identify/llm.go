package identify

import (
	"fmt"

	"equipcert/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel constructs the multimodal model client from configuration.
// Any OpenAI-compatible endpoint works; the base URL override covers
// hosted gateways that front other vision models.
func NewModel(cfg config.AIConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is required (set EQUIPCERT_AI_API_KEY)")
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return model, nil
}
