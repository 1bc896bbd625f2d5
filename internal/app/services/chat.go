package services

import (
	"context"
	"strings"

	llminter "github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/platform/config"
	"github.com/aryanarora07/podlyze/internal/platform/errors"
	"github.com/aryanarora07/podlyze/internal/platform/logging"
	"github.com/aryanarora07/podlyze/internal/platform/storage"
)

// ChatService streams answers to questions about a summary.
type ChatService struct {
	cfg       *config.Config
	logger    *logging.Logger
	llm       llminter.Provider
	summaries *storage.SummaryRepository
}

func NewChatService(cfg *config.Config, logger *logging.Logger, llm llminter.Provider, summaries *storage.SummaryRepository) *ChatService {
	return &ChatService{cfg: cfg, logger: logger, llm: llm, summaries: summaries}
}

// Stream opens a completion stream seeded with the summary as system
// context. summaryText may be empty when jobID points at a stored
// summary; explicit text wins over the lookup.
func (c *ChatService) Stream(ctx context.Context, jobID, summaryText, message string) (<-chan llminter.Delta, error) {
	if summaryText == "" && jobID != "" {
		stored, err := c.summaries.FindByJobID(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			summaryText = stored.Body
		}
	}

	system := c.cfg.Prompts.Chat
	if summaryText != "" {
		system = system + "\n\n" + summaryText
	}

	deltas, err := c.llm.Stream(ctx, []llminter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: message},
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindChat, "ChatService.Stream", "open completion stream", err)
	}
	c.logger.Tagged().InfoTag("CHAT", "streaming answer (%d chars of context)", len(summaryText))
	return deltas, nil
}

// Ask is the blocking variant used by tests and non-streaming callers.
func (c *ChatService) Ask(ctx context.Context, summaryText, message string) (string, error) {
	deltas, err := c.Stream(ctx, "", summaryText, message)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for d := range deltas {
		if d.Err != nil {
			return "", d.Err
		}
		b.WriteString(d.Content)
	}
	return b.String(), nil
}
