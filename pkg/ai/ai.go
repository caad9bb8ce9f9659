// Package ai defines the model-facing interface used for knowledge graph
// construction and querying, together with the shared request options and
// usage metrics. Concrete adapters live in the openai and ollama subpackages.
package ai

import (
	"context"

	"github.com/synapse-kb/synapse/backend/pkg/loader"
)

// ExtractedEntity is a single entity produced by model extraction.
type ExtractedEntity struct {
	Name        string `json:"name" jsonschema_description:"Canonical name of the entity"`
	Type        string `json:"type" jsonschema_description:"Entity category such as Person, Organization or Concept"`
	Description string `json:"description,omitempty" jsonschema_description:"One sentence describing the entity"`
}

// ExtractedRelationship connects two extracted entities by name.
type ExtractedRelationship struct {
	Source   string `json:"source" jsonschema_description:"Name of the source entity"`
	Target   string `json:"target" jsonschema_description:"Name of the target entity"`
	Type     string `json:"type" jsonschema_description:"Relationship type in UPPER_SNAKE_CASE"`
	Evidence string `json:"evidence,omitempty" jsonschema_description:"Sentence from the text supporting the relationship"`
}

// ExtractionResult is the structured output of an extraction request.
type ExtractionResult struct {
	Entities      []ExtractedEntity      `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// ModelMetrics contains accumulated usage metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// GraphAIClient defines the model operations used by ingestion and querying.
// Implementations must be safe for concurrent use.
type GraphAIClient interface {
	// Extract pulls entities and relationships out of a text chunk using
	// schema-constrained structured output.
	Extract(ctx context.Context, text string, opts ...GenerateOption) (ExtractionResult, error)

	// Answer produces a natural-language answer to a question, grounded in a
	// textual rendering of the relevant subgraph.
	Answer(ctx context.Context, question string, graphContext string, opts ...GenerateOption) (string, error)

	// Embedding creates a vector embedding for the given input text.
	Embedding(ctx context.Context, input []byte) ([]float32, error)

	// DescribeImage sends a base64-encoded image to a vision model and
	// returns the textual description the prompt asks for.
	DescribeImage(ctx context.Context, prompt string, image loader.GraphBase64) (string, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}
