package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

// LLMProvider sends the fixed candidate instructions plus one input to a
// hosted model and returns the raw JSON text of its answer.
type LLMProvider interface {
	Complete(ctx context.Context, input string) (string, error)
	Name() string
}

type GeminiOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty uses the default.
	BaseURL string
}

type GeminiService struct {
	client        *genai.Client
	modelName     string
	instructions  string
	cachedContent string
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (*GeminiService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &GeminiService{
		client:       client,
		modelName:    modelName,
		instructions: CandidateInstructions,
	}, nil
}

func (g *GeminiService) Name() string {
	return "gemini/" + g.modelName
}

// EnablePromptCache stores the instructions as cached content so requests
// only reference them. Gemini refuses caches below a minimum token count;
// in that case the instructions keep being sent inline.
func (g *GeminiService) EnablePromptCache(ctx context.Context, ttl time.Duration) error {
	cache, err := g.client.Caches.Create(ctx, g.modelName, &genai.CreateCachedContentConfig{
		DisplayName:       "cv-reader-instructions",
		TTL:               ttl,
		SystemInstruction: genai.NewContentFromText(g.instructions, genai.RoleUser),
	})
	if err != nil {
		return fmt.Errorf("failed to create prompt cache: %w", err)
	}

	g.cachedContent = cache.Name
	log.Printf("✅ Gemini prompt cache %s created\n", cache.Name)
	return nil
}

// Close drops the prompt cache, if any.
func (g *GeminiService) Close(ctx context.Context) error {
	if g.cachedContent == "" {
		return nil
	}
	if _, err := g.client.Caches.Delete(ctx, g.cachedContent, nil); err != nil {
		return fmt.Errorf("failed to delete prompt cache: %w", err)
	}
	g.cachedContent = ""
	return nil
}

// Complete implements LLMProvider.
func (g *GeminiService) Complete(ctx context.Context, input string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiResponseSchema(),
	}
	if g.cachedContent != "" {
		config.CachedContent = g.cachedContent
	} else {
		config.SystemInstruction = genai.NewContentFromText(g.instructions, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(input), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
