package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIService talks to the chat completions API. OpenAI caches long,
// repeated prompt prefixes on its own, so the instructions always go first.
type OpenAIService struct {
	client       openai.Client
	modelName    string
	instructions string
}

func NewOpenAIService(opts OpenAIOptions) (*OpenAIService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "gpt-4.1-mini"
	}

	return &OpenAIService{
		client:       openai.NewClient(reqOpts...),
		modelName:    modelName,
		instructions: CandidateInstructions,
	}, nil
}

func (o *OpenAIService) Name() string {
	return "openai/" + o.modelName
}

// Complete implements LLMProvider.
func (o *OpenAIService) Complete(ctx context.Context, input string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.instructions),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "candidate_extraction",
					Strict: openai.Bool(true),
					Schema: ResponseSchema(),
				},
			},
		},
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
			return "", fmt.Errorf("model refused the request: %s", refusal)
		}
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
