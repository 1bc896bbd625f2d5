// Package speechmatics implements realtime speech recognition over the
// Speechmatics websocket API.
package speechmatics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/aryanarora07/podlyze/internal/domain/transcribe"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe/audio"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
	"github.com/aryanarora07/podlyze/internal/utils"
)

const (
	defaultEndpoint  = "wss://eu2.rt.speechmatics.com/v2"
	handshakeTimeout = 10 * time.Second
	startTimeout     = 15 * time.Second
)

func init() {
	transcribe.Register("speechmatics", func(cfg *inter.Config, logger *utils.Logger) (inter.Provider, error) {
		return NewProvider(cfg, logger)
	})
}

// Provider speaks the Speechmatics realtime protocol. It satisfies both
// the one-shot and the streaming interface.
type Provider struct {
	cfg    *inter.Config
	logger *utils.Logger
}

var (
	_ inter.Provider        = (*Provider)(nil)
	_ inter.SessionProvider = (*Provider)(nil)
)

func NewProvider(cfg *inter.Config, logger *utils.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("speechmatics: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEndpoint
	}
	return &Provider{cfg: cfg, logger: logger}, nil
}

// Transcribe decodes the file to PCM, streams it through a session and
// returns the full transcript.
func (p *Provider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	stream, err := audio.Chunk(ctx, audioPath, p.cfg.ChunkMS)
	if err != nil {
		return "", err
	}
	text, err := transcribe.Collect(ctx, p, stream.C, stream.SampleRate, "")
	if err != nil {
		return "", err
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return text, nil
}

// OpenSession dials the realtime endpoint, sends StartRecognition and
// waits for the RecognitionStarted acknowledgement.
func (p *Provider) OpenSession(ctx context.Context, sampleRate int) (inter.Session, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, p.cfg.BaseURL, header)
	if err != nil {
		return nil, fmt.Errorf("speechmatics: dial: %w", err)
	}

	s := &session{
		conn:    conn,
		logger:  p.logger,
		events:  make(chan inter.Event, 32),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}

	start := startRecognition{
		Message: "StartRecognition",
		AudioFormat: audioFormat{
			Type:       "raw",
			Encoding:   "pcm_s16le",
			SampleRate: sampleRate,
		},
		TranscriptionConfig: transcriptionConfig{
			Language:       p.cfg.Language,
			EnablePartials: true,
			MaxDelay:       2,
		},
	}
	if err := s.writeJSON(start); err != nil {
		conn.Close()
		return nil, fmt.Errorf("speechmatics: start recognition: %w", err)
	}

	go s.readLoop()

	select {
	case <-s.started:
		return s, nil
	case ev := <-s.events:
		conn.Close()
		if ev.Err != nil {
			return nil, ev.Err
		}
		return nil, fmt.Errorf("speechmatics: unexpected %s before start", ev.Type)
	case <-time.After(startTimeout):
		conn.Close()
		return nil, fmt.Errorf("speechmatics: recognition start timed out")
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}
}

type session struct {
	conn   *websocket.Conn
	logger *utils.Logger

	connMu sync.Mutex
	seqNo  int

	events    chan inter.Event
	started   chan struct{}
	startOnce sync.Once
	once      sync.Once
	done      chan struct{}
}

func (s *session) Events() <-chan inter.Event {
	return s.events
}

// Push sends one PCM chunk as a binary AddAudio frame.
func (s *session) Push(ctx context.Context, pcm []byte) error {
	select {
	case <-s.done:
		return fmt.Errorf("speechmatics: session already settled")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return fmt.Errorf("speechmatics: send audio: %w", err)
	}
	s.seqNo++
	return nil
}

// Stop tells the server no more audio is coming. Remaining transcript
// events still arrive until EndOfTranscript.
func (s *session) Stop(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	default:
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	end := endOfStream{Message: "EndOfStream", LastSeqNo: s.seqNo}
	payload, err := sonic.Marshal(end)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("speechmatics: end of stream: %w", err)
	}
	return nil
}

func (s *session) readLoop() {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.settleError(fmt.Errorf("speechmatics: read: %w", err))
			return
		}

		var msg serverMessage
		if err := sonic.Unmarshal(payload, &msg); err != nil {
			s.settleError(fmt.Errorf("speechmatics: decode message: %w", err))
			return
		}

		switch msg.Message {
		case "RecognitionStarted":
			// tolerate a repeated ack from the peer
			s.startOnce.Do(func() { close(s.started) })
		case "AudioAdded":
			// ack, nothing to do
		case "AddPartialTranscript":
			s.emit(inter.Event{Type: inter.EventPartial, Text: msg.Metadata.Transcript})
		case "AddTranscript":
			s.emit(inter.Event{Type: inter.EventFinal, Text: msg.Metadata.Transcript})
		case "EndOfTranscript":
			s.settle(inter.Event{Type: inter.EventEnded})
			return
		case "Error":
			s.settleError(fmt.Errorf("speechmatics: %s: %s", msg.Type, msg.Reason))
			return
		case "Warning", "Info":
			s.logger.WarnTag("ASR", "speechmatics %s: %s", msg.Message, msg.Reason)
		}
	}
}

func (s *session) emit(ev inter.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// settle delivers the terminal event exactly once and closes the
// session down. Later terminal causes are dropped.
func (s *session) settle(ev inter.Event) {
	s.once.Do(func() {
		s.events <- ev
		close(s.done)
		close(s.events)
		s.conn.Close()
	})
}

func (s *session) settleError(err error) {
	s.settle(inter.Event{Type: inter.EventError, Err: err})
}

func (s *session) writeJSON(v interface{}) error {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

type startRecognition struct {
	Message             string              `json:"message"`
	AudioFormat         audioFormat         `json:"audio_format"`
	TranscriptionConfig transcriptionConfig `json:"transcription_config"`
}

type audioFormat struct {
	Type       string `json:"type"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type transcriptionConfig struct {
	Language       string  `json:"language"`
	EnablePartials bool    `json:"enable_partials"`
	MaxDelay       float64 `json:"max_delay,omitempty"`
}

type endOfStream struct {
	Message   string `json:"message"`
	LastSeqNo int    `json:"last_seq_no"`
}

type serverMessage struct {
	Message  string `json:"message"`
	Type     string `json:"type,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Metadata struct {
		Transcript string `json:"transcript"`
	} `json:"metadata"`
}
