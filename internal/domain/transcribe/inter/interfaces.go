package inter

import "context"

// EventType classifies events emitted by a streaming session.
type EventType int

const (
	// EventPartial is a provisional fragment that may still be revised.
	EventPartial EventType = iota
	// EventFinal is a committed fragment that will not change.
	EventFinal
	// EventEnded signals the provider finished the utterance stream.
	EventEnded
	// EventError signals the session failed. No further events follow.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single transcription result or terminal signal.
type Event struct {
	Type EventType
	Text string
	Err  error
}

// Config carries provider settings resolved from configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	ModelName  string
	Language   string
	SampleRate int
	ChunkMS    int
}

// Provider transcribes a complete audio file in one call.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Session is a live recognition stream. Events() delivers Partial and
// Final fragments followed by exactly one Ended or Error event, after
// which the channel is closed. Push after the terminal event returns
// an error.
type Session interface {
	Push(ctx context.Context, pcm []byte) error
	Stop(ctx context.Context) error
	Events() <-chan Event
}

// SessionProvider opens streaming recognition sessions. Opening blocks
// until the remote side acknowledges the stream or fails. The sample
// rate describes the PCM the caller will push.
type SessionProvider interface {
	OpenSession(ctx context.Context, sampleRate int) (Session, error)
}
