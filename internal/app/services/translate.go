package services

import (
	"context"
	"fmt"

	llminter "github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/platform/config"
	"github.com/aryanarora07/podlyze/internal/platform/errors"
	"github.com/aryanarora07/podlyze/internal/platform/logging"
)

// TranslateService turns a summary into another language in a single
// blocking completion.
type TranslateService struct {
	cfg    *config.Config
	logger *logging.Logger
	llm    llminter.Provider
}

func NewTranslateService(cfg *config.Config, logger *logging.Logger, llm llminter.Provider) *TranslateService {
	return &TranslateService{cfg: cfg, logger: logger, llm: llm}
}

func (t *TranslateService) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if targetLanguage == "" {
		return "", errors.New(errors.KindTranslate, "TranslateService.Translate", "target language is required")
	}

	instruction := fmt.Sprintf(t.cfg.Prompts.Translate, targetLanguage)
	translated, err := t.llm.Chat(ctx, []llminter.Message{
		{Role: "system", Content: instruction},
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", errors.Wrap(errors.KindTranslate, "TranslateService.Translate", "translate text", err)
	}
	return translated, nil
}
