// Package openai implements chat completion through the OpenAI API and
// any endpoint that speaks the same protocol.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aryanarora07/podlyze/internal/domain/llm"
	"github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/utils"
)

const defaultMaxTokens = 2048

func init() {
	llm.Register("openai", func(cfg *inter.Config, logger *utils.Logger) (inter.Provider, error) {
		return NewProvider(cfg, logger)
	})
}

type Provider struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *utils.Logger
}

var _ inter.Provider = (*Provider)(nil)

func NewProvider(cfg *inter.Config, logger *utils.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.ModelName,
		temperature: float32(cfg.Temperature),
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

func (p *Provider) Chat(ctx context.Context, messages []inter.Message) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toChatMessages(messages),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Stream(ctx context.Context, messages []inter.Message) (<-chan inter.Delta, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toChatMessages(messages),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: open stream: %w", err)
	}

	deltas := make(chan inter.Delta, 10)
	go func() {
		defer close(deltas)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				p.logger.ErrorTag("LLM", "stream aborted: %v", err)
				deltas <- inter.Delta{Err: fmt.Errorf("openai: stream: %w", err)}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if content := resp.Choices[0].Delta.Content; content != "" {
				select {
				case deltas <- inter.Delta{Content: content}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return deltas, nil
}

func toChatMessages(messages []inter.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}
	return out
}
