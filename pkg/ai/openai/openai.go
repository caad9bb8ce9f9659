// Package openai implements ai.GraphAIClient against OpenAI-compatible
// chat and embedding endpoints.
package openai

import (
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GraphOpenAIClient is an ai.GraphAIClient backed by OpenAI-compatible APIs.
// Chat and embedding traffic can target different endpoints, which allows
// mixing a hosted chat model with a self-hosted embedding server.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	extractionModel string
	answerModel     string
	embeddingModel  string
	imageModel      string

	chatURL string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration for creating a
// new GraphOpenAIClient. Empty URLs fall back to the official endpoint;
// an empty key disables the corresponding client.
type NewGraphOpenAIClientParams struct {
	ExtractionModel string
	AnswerModel     string
	EmbeddingModel  string
	ImageModel      string

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string
}

// NewGraphOpenAIClient creates a client with separate underlying OpenAI
// clients for chat and embedding tasks.
func NewGraphOpenAIClient(
	params NewGraphOpenAIClientParams,
) *GraphOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	imageModel := params.ImageModel
	if imageModel == "" {
		imageModel = params.AnswerModel
	}

	return &GraphOpenAIClient{
		extractionModel: params.ExtractionModel,
		answerModel:     params.AnswerModel,
		embeddingModel:  params.EmbeddingModel,
		imageModel:      imageModel,

		chatURL: params.ChatURL,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
