package services

import (
	"google.golang.org/genai"

	"alfredoptarigan/cv-reader/internal/models"
)

// CandidateInstructions is sent with every extraction request. It never
// changes between requests so providers can cache it.
const CandidateInstructions = `You are given a set of CV data. Extract the relevant fields and return one candidate object per applicant.
If you cannot extract the data, return a failure object explaining why.
The CVs are in Dutch, and the fields may not be explicitly labeled.
CVs are separated by [BEGIN CV] and [END CV] markers.
Duplicate applicants should be merged into a single candidate, also when their CVs appear in different places in the batch.
Make your best guess for missing fields based on the CV content.
Add an asterisk (*) to fields you are unsure about.
Leave fields empty if you cannot find any information about them.

Respond with a single JSON object:
- {"outcome": "candidates", "candidates": [...], "explanation": ""} when at least one candidate was found
- {"outcome": "failure", "candidates": [], "explanation": "<why>"} when no candidate can be extracted`

// ResponseSchema returns the JSON schema of the response envelope in the
// strict form accepted by structured-output APIs: every property required,
// no additional properties.
func ResponseSchema() map[string]any {
	properties := map[string]any{}
	required := make([]string, 0, len(models.CandidateFields))
	for _, field := range models.CandidateFields {
		properties[field.Key] = map[string]any{"type": "string"}
		required = append(required, field.Key)
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"outcome": map[string]any{
				"type": "string",
				"enum": []string{models.OutcomeCandidates, models.OutcomeFailure},
			},
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"properties":           properties,
					"required":             required,
					"additionalProperties": false,
				},
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required":             []string{"outcome", "candidates", "explanation"},
		"additionalProperties": false,
	}
}

// geminiResponseSchema mirrors ResponseSchema in the Gemini schema dialect.
func geminiResponseSchema() *genai.Schema {
	properties := map[string]*genai.Schema{}
	required := make([]string, 0, len(models.CandidateFields))
	ordering := make([]string, 0, len(models.CandidateFields))
	for _, field := range models.CandidateFields {
		properties[field.Key] = &genai.Schema{Type: genai.TypeString}
		required = append(required, field.Key)
		ordering = append(ordering, field.Key)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"outcome": {
				Type:   genai.TypeString,
				Format: "enum",
				Enum:   []string{models.OutcomeCandidates, models.OutcomeFailure},
			},
			"candidates": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:             genai.TypeObject,
					Properties:       properties,
					Required:         required,
					PropertyOrdering: ordering,
				},
			},
			"explanation": {Type: genai.TypeString},
		},
		Required:         []string{"outcome", "candidates", "explanation"},
		PropertyOrdering: []string{"outcome", "candidates", "explanation"},
	}
}

// envelopeSchema is checked locally against every response. It is looser
// than ResponseSchema: missing candidate fields decode as empty strings,
// but each outcome must carry its payload.
const envelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["outcome"],
  "properties": {
    "outcome": {"type": "string", "enum": ["candidates", "failure"]},
    "candidates": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": {"type": "string"}
      }
    },
    "explanation": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"outcome": {"const": "candidates"}}},
      "then": {"required": ["candidates"]}
    },
    {
      "if": {"properties": {"outcome": {"const": "failure"}}},
      "then": {"required": ["explanation"], "properties": {"explanation": {"minLength": 1}}}
    }
  ]
}`
