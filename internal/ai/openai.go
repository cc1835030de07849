package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	name         string
	client       *openai.Client
	defaultModel string
	logger       logger.Logger
}

func NewOpenAIClient(cfg config.ProviderConfig, log logger.Logger) (*OpenAIClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" && cfg.APIKeyFile != "" {
		data, err := os.ReadFile(cfg.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read api key file: %w", err)
		}
		apiKey = strings.TrimSpace(string(data))
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		name:         cfg.Name,
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.DefaultModel,
		logger:       log,
	}, nil
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) GetDefaultModel() string {
	return c.defaultModel
}

func (c *OpenAIClient) Ask(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error) {
	if model == "" {
		model = c.defaultModel
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		})
	}

	c.logger.WithFields(logger.Fields{
		"provider": c.name,
		"model":    model,
		"messages": len(chatMessages),
	}).Debug("Chat completion request")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  chatMessages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response from %s", c.name)
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:      int64(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	req := openai.ImageRequest{
		Prompt:         prompt,
		Model:          model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation: empty response from %s", c.name)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("image generation: decode payload: %w", err)
	}
	return data, nil
}
