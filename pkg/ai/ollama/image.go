package ollama

import (
	"context"
	"encoding/base64"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"github.com/ollama/ollama/api"
)

// DescribeImage sends a vision chat request with a base64 image and
// returns the model's textual description for the given prompt.
func (c *GraphOllamaClient) DescribeImage(
	ctx context.Context,
	prompt string,
	image loader.GraphBase64,
) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(image.Base64)
	if err != nil {
		return "", err
	}

	stream := false
	req := &api.ChatRequest{
		Model: c.imageModel,
		Messages: []api.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Images: []api.ImageData{raw}},
		},
		Stream: &stream,
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
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
