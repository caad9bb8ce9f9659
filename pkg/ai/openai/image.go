package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"github.com/openai/openai-go/v3"
)

// DescribeImage sends a vision request with a base64-encoded image and
// returns the model's textual description for the given prompt.
func (c *GraphOpenAIClient) DescribeImage(
	ctx context.Context,
	prompt string,
	image loader.GraphBase64,
) (string, error) {
	if c.ChatClient == nil {
		return "", ErrNoChatClient
	}

	url := fmt.Sprintf("%s%s", image.FileType, image.Base64)
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.imageModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: url,
				}),
			}),
		},
	}

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   time.Since(start).Milliseconds(),
	})

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai: empty vision response")
	}
	return response.Choices[0].Message.Content, nil
}
