package ollama

import (
	"context"
	"encoding/json"

	"github.com/synapse-kb/synapse/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

// Extract identifies entities and relationships in the given text. The JSON
// schema for the result is passed as the Ollama format parameter, which
// constrains decoding on the server side.
func (c *GraphOllamaClient) Extract(
	ctx context.Context,
	text string,
	opts ...ai.GenerateOption,
) (ai.ExtractionResult, error) {
	options := ai.GenerateOptions{
		Model:         c.extractionModel,
		SystemPrompts: []string{ai.ExtractionSystemPrompt},
		Temperature:   0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	var out ai.ExtractionResult
	formatBytes, err := json.Marshal(ai.GenerateSchema(&out))
	if err != nil {
		return ai.ExtractionResult{}, err
	}

	message, err := c.chat(ctx, options, ai.ExtractionPrompt(text), json.RawMessage(formatBytes))
	if err != nil {
		return ai.ExtractionResult{}, err
	}
	if err := ai.UnmarshalFlexible(message, &out); err != nil {
		return ai.ExtractionResult{}, err
	}
	return out, nil
}

// Answer produces a natural-language answer grounded in the serialized
// subgraph that matched the question.
func (c *GraphOllamaClient) Answer(
	ctx context.Context,
	question string,
	graphContext string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:         c.answerModel,
		SystemPrompts: []string{ai.AnswerSystemPrompt},
		Temperature:   0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	return c.chat(ctx, options, ai.AnswerPrompt(question, graphContext), nil)
}

func (c *GraphOllamaClient) chat(
	ctx context.Context,
	options ai.GenerateOptions,
	prompt string,
	format json.RawMessage,
) (string, error) {
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Format:   format,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return final.Message.Content, nil
}
