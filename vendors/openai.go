package vendors

import (
	"context"
	"errors"
	"sync"

	"github.com/lantern-study/lantern/config"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/store"
	"github.com/sashabaranov/go-openai"
)

var (
	openaiClient     *OpenAIClient
	openaiClientOnce sync.Once
)

// OpenAIClient wraps the OpenAI-compatible chat API used for conversation
// turns and summarization.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// GetOpenAIClient returns the singleton client, or nil when no API key is
// configured.
func GetOpenAIClient() *OpenAIClient {
	openaiClientOnce.Do(func() {
		cfg := config.Get()
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not configured, model calls disabled")
			return
		}

		clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" && cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
			clientConfig.BaseURL = cfg.OpenAIBaseURL
		}

		openaiClient = &OpenAIClient{
			client: openai.NewClientWithConfig(clientConfig),
			model:  cfg.OpenAIModel,
		}

		log.Info().Str("model", cfg.OpenAIModel).Str("baseURL", cfg.OpenAIBaseURL).Msg("model client initialized")
	})

	return openaiClient
}

// DefaultModel returns the configured model name
func (o *OpenAIClient) DefaultModel() string {
	if o == nil {
		return config.Get().OpenAIModel
	}
	return o.model
}

// Chat issues one chat completion over the given message sequence with the
// session's sampling parameters applied.
func (o *OpenAIClient) Chat(model string, messages []store.Message, params store.ModelParams) (string, error) {
	if o == nil {
		return "", errors.New("model client not configured")
	}
	if model == "" {
		model = o.model
	}

	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    reqMessages,
		MaxTokens:   params.NumPredict,
		Temperature: float32(params.Temperature),
		TopP:        float32(params.TopP),
	}

	log.Debug().
		Str("model", model).
		Int("messages", len(reqMessages)).
		Float64("temperature", params.Temperature).
		Int("numPredict", params.NumPredict).
		Msg("chat request")

	resp, err := o.client.CreateChatCompletion(context.Background(), req)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("chat completion failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		log.Error().Str("model", model).Msg("chat response has no choices")
		return "", errors.New("model returned no choices")
	}

	log.Debug().
		Str("finishReason", string(resp.Choices[0].FinishReason)).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("chat response")

	return resp.Choices[0].Message.Content, nil
}
