package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/cv-reader/internal/config"
)

// NewLLMProvider builds the configured provider and a function releasing
// whatever it holds remotely.
func NewLLMProvider(ctx context.Context, cfg *config.Config) (LLMProvider, func(context.Context), error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		gemini, err := NewGeminiService(ctx, GeminiOptions{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			return nil, nil, err
		}

		if cfg.LLM.PromptCache {
			if err := gemini.EnablePromptCache(ctx, cfg.LLM.PromptCacheTTL); err != nil {
				log.Printf("⚠️  Prompt cache unavailable, sending instructions inline: %v\n", err)
			}
		}

		return gemini, func(ctx context.Context) {
			if err := gemini.Close(ctx); err != nil {
				log.Printf("⚠️  %v\n", err)
			}
		}, nil
	case config.ProviderOpenAI:
		openaiService, err := NewOpenAIService(OpenAIOptions{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return openaiService, func(context.Context) {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}
