package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synapse-kb/synapse/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// ErrNoChatClient is returned when chat operations are attempted without a
// configured chat API key.
var ErrNoChatClient = errors.New("openai: no chat client configured")

// Extract identifies entities and relationships in the given text using
// schema-constrained structured output.
//
// Example:
//
//	result, err := client.Extract(ctx, "Satya Nadella is the CEO of Microsoft.")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(len(result.Entities), len(result.Relationships))
func (c *GraphOpenAIClient) Extract(
	ctx context.Context,
	text string,
	opts ...ai.GenerateOption,
) (ai.ExtractionResult, error) {
	if c.ChatClient == nil {
		return ai.ExtractionResult{}, ErrNoChatClient
	}

	options := ai.GenerateOptions{
		Model:         c.extractionModel,
		SystemPrompts: []string{ai.ExtractionSystemPrompt},
		Temperature:   0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	var out ai.ExtractionResult
	schema := ai.GenerateSchema(&out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "graph_extraction",
		Description: openai.String("Entities and relationships found in a text passage"),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(ai.ExtractionPrompt(text)))

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	message, err := c.complete(ctx, body)
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
func (c *GraphOpenAIClient) Answer(
	ctx context.Context,
	question string,
	graphContext string,
	opts ...ai.GenerateOption,
) (string, error) {
	if c.ChatClient == nil {
		return "", ErrNoChatClient
	}

	options := ai.GenerateOptions{
		Model:         c.answerModel,
		SystemPrompts: []string{ai.AnswerSystemPrompt},
		Temperature:   0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(ai.AnswerPrompt(question, graphContext)))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	return c.complete(ctx, body)
}

func (c *GraphOpenAIClient) complete(
	ctx context.Context,
	body openai.ChatCompletionNewParams,
) (string, error) {
	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	duration := time.Since(start).Milliseconds()

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	})

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return "", fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return message, nil
}
