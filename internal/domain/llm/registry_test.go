package llm

import (
	"context"
	"testing"

	"github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/utils"
)

type echoProvider struct{}

func (echoProvider) Chat(ctx context.Context, messages []inter.Message) (string, error) {
	return messages[len(messages)-1].Content, nil
}

func (echoProvider) Stream(ctx context.Context, messages []inter.Message) (<-chan inter.Delta, error) {
	ch := make(chan inter.Delta, 1)
	ch <- inter.Delta{Content: messages[len(messages)-1].Content}
	close(ch)
	return ch, nil
}

func TestRegistry(t *testing.T) {
	name := "test-echo"
	if err := Register(name, func(cfg *inter.Config, logger *utils.Logger) (inter.Provider, error) {
		return echoProvider{}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := Create(name, &inter.Config{}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := p.Chat(context.Background(), []inter.Message{{Role: "user", Content: "hi"}})
	if err != nil || got != "hi" {
		t.Errorf("Chat() = %q, %v", got, err)
	}

	if _, err := Create("missing", &inter.Config{}, nil); err == nil {
		t.Error("Create() with unknown name should fail")
	}
}
