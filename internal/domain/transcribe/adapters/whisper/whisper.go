// Package whisper implements one-shot transcription through the OpenAI
// audio API.
package whisper

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aryanarora07/podlyze/internal/domain/transcribe"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
	"github.com/aryanarora07/podlyze/internal/utils"
)

func init() {
	transcribe.Register("whisper", func(cfg *inter.Config, logger *utils.Logger) (inter.Provider, error) {
		return NewProvider(cfg, logger)
	})
}

// Provider uploads the whole audio file and returns the transcript in
// one round trip. It has no streaming mode.
type Provider struct {
	client *openai.Client
	model  string
	logger *utils.Logger
}

var _ inter.Provider = (*Provider)(nil)

func NewProvider(cfg *inter.Config, logger *utils.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper: api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.ModelName
	if model == "" {
		model = openai.Whisper1
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

func (p *Provider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("whisper: transcription: %w", err)
	}
	p.logger.InfoTag("ASR", "whisper transcribed %s (%d chars)", audioPath, len(resp.Text))
	return resp.Text, nil
}
