package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/cv-reader/internal/models"
)

// ErrMalformedResponse is returned when the model answers with something
// that is not a valid response envelope.
var ErrMalformedResponse = errors.New("malformed model response")

// CandidateAgent turns a marker-delimited batch of CV texts into candidates
// or a read failure. Which one is decided entirely by the hosted model.
type CandidateAgent interface {
	Extract(ctx context.Context, batch string) (models.Outcome, error)
}

type candidateAgent struct {
	provider LLMProvider
	schema   *gojsonschema.Schema
}

func NewCandidateAgent(provider LLMProvider) (CandidateAgent, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}

	return &candidateAgent{
		provider: provider,
		schema:   schema,
	}, nil
}

type responseEnvelope struct {
	Outcome     string             `json:"outcome"`
	Candidates  []models.Candidate `json:"candidates"`
	Explanation string             `json:"explanation"`
}

// Extract implements CandidateAgent. It makes exactly one provider call and
// does not retry.
func (a *candidateAgent) Extract(ctx context.Context, batch string) (models.Outcome, error) {
	log.Printf("🤖 Sending %d characters to %s\n", len(batch), a.provider.Name())

	response, err := a.provider.Complete(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to extract candidates: %w", err)
	}

	log.Printf("✅ Extraction response received: %d characters\n", len(response))

	return a.parseResponse(response)
}

func (a *candidateAgent) parseResponse(response string) (models.Outcome, error) {
	jsonStr := extractJSON(response)

	result, err := a.schema.Validate(gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(problems, "; "))
	}

	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch envelope.Outcome {
	case models.OutcomeCandidates:
		return models.CandidateList{Candidates: envelope.Candidates}, nil
	case models.OutcomeFailure:
		return models.ReadFailure{Explanation: envelope.Explanation}, nil
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrMalformedResponse, envelope.Outcome)
	}
}

// extractJSON strips markdown fences and surrounding prose from a model
// answer, keeping the outermost JSON object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
