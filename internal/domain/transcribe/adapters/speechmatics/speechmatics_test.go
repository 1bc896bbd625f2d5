package speechmatics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
)

var upgrader = websocket.Upgrader{}

// scriptedServer speaks just enough of the realtime protocol: ack the
// StartRecognition message startAcks times, ack audio frames, then
// replay the scripted messages once EndOfStream arrives.
func scriptedServer(t *testing.T, startAcks int, script []map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		for i := 0; i < startAcks; i++ {
			writeServerMessage(t, conn, map[string]interface{}{"message": "RecognitionStarted"})
		}

		for {
			kind, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				writeServerMessage(t, conn, map[string]interface{}{"message": "AudioAdded"})
				continue
			}
			if strings.Contains(string(payload), "EndOfStream") {
				break
			}
		}
		for _, msg := range script {
			writeServerMessage(t, conn, msg)
		}
	}))
}

func writeServerMessage(t *testing.T, conn *websocket.Conn, msg map[string]interface{}) {
	t.Helper()
	payload, err := sonic.Marshal(msg)
	if err != nil {
		t.Errorf("marshal server message: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Logf("write server message: %v", err)
	}
}

func openTestSession(t *testing.T, srv *httptest.Server) inter.Session {
	t.Helper()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	provider, err := NewProvider(&inter.Config{APIKey: "key", BaseURL: endpoint, Language: "en"}, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	sess, err := provider.OpenSession(context.Background(), 16000)
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	return sess
}

func drainEvents(t *testing.T, sess inter.Session) []inter.Event {
	t.Helper()
	var events []inter.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-sess.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out draining events, got %v", events)
		}
	}
}

func TestSession_TranscriptRoundTrip(t *testing.T) {
	srv := scriptedServer(t, 1, []map[string]interface{}{
		{"message": "AddPartialTranscript", "metadata": map[string]string{"transcript": "hel"}},
		{"message": "AddTranscript", "metadata": map[string]string{"transcript": "hello"}},
		{"message": "EndOfTranscript"},
	})
	defer srv.Close()

	sess := openTestSession(t, srv)
	if err := sess.Push(context.Background(), make([]byte, 640)); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if err := sess.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	events := drainEvents(t, sess)
	var sawFinal, sawEnded bool
	for _, ev := range events {
		switch ev.Type {
		case inter.EventFinal:
			sawFinal = ev.Text == "hello"
		case inter.EventEnded:
			sawEnded = true
		case inter.EventError:
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
	}
	if !sawFinal || !sawEnded {
		t.Errorf("events = %v, want final %q then ended", events, "hello")
	}
}

func TestSession_DuplicateStartAckIsIgnored(t *testing.T) {
	srv := scriptedServer(t, 2, []map[string]interface{}{
		{"message": "EndOfTranscript"},
	})
	defer srv.Close()

	sess := openTestSession(t, srv)
	if err := sess.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// The second RecognitionStarted must not take the read loop down;
	// the session still settles with a clean end event.
	events := drainEvents(t, sess)
	if len(events) != 1 || events[0].Type != inter.EventEnded {
		t.Errorf("events = %v, want a single ended event", events)
	}
}

func TestSession_ServerErrorSettlesOnce(t *testing.T) {
	srv := scriptedServer(t, 1, []map[string]interface{}{
		{"message": "Error", "type": "quota_exceeded", "reason": "out of credit"},
	})
	defer srv.Close()

	sess := openTestSession(t, srv)
	if err := sess.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	events := drainEvents(t, sess)
	if len(events) != 1 || events[0].Type != inter.EventError {
		t.Fatalf("events = %v, want a single error event", events)
	}
	if !strings.Contains(events[0].Err.Error(), "quota_exceeded") {
		t.Errorf("error = %v, want the server reason", events[0].Err)
	}
}
