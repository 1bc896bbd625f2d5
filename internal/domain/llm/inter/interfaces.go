package inter

import "context"

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Delta is one streamed fragment of a completion. A non-nil Err is
// terminal: the channel closes right after and no content follows.
type Delta struct {
	Content string
	Err     error
}

// Config carries provider settings resolved from configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	Temperature float64
	MaxTokens   int
}

// Provider produces completions, blocking or streamed.
type Provider interface {
	// Chat returns the full completion in one call.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Stream returns completion fragments in generation order. The
	// channel closes after the final fragment or a terminal Delta.Err.
	Stream(ctx context.Context, messages []Message) (<-chan Delta, error)
}
