package transcribe

import (
	"context"
	"strings"

	"github.com/aryanarora07/podlyze/internal/domain/eventbus"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
)

// Collect drives a streaming session to completion and returns the
// accumulated transcript. Each final fragment is appended followed by a
// single space, so the result keeps a trailing space; partial fragments
// are published on the event bus but never stored. The session settles
// exactly once: the first Ended or Error event decides the outcome.
func Collect(ctx context.Context, sp inter.SessionProvider, chunks <-chan []byte, sampleRate int, jobID string) (string, error) {
	session, err := sp.OpenSession(ctx, sampleRate)
	if err != nil {
		return "", err
	}

	pushDone := make(chan error, 1)
	go func() {
		for chunk := range chunks {
			if err := session.Push(ctx, chunk); err != nil {
				pushDone <- err
				return
			}
		}
		pushDone <- session.Stop(ctx)
	}()

	var b strings.Builder
	for ev := range session.Events() {
		switch ev.Type {
		case inter.EventPartial:
			eventbus.Publish(eventbus.EventTranscriptPartial, eventbus.TranscriptEventData{
				JobID: jobID, Text: ev.Text,
			})
		case inter.EventFinal:
			appendFragment(&b, ev.Text)
			eventbus.Publish(eventbus.EventTranscriptFinal, eventbus.TranscriptEventData{
				JobID: jobID, Text: ev.Text, IsFinal: true,
			})
		case inter.EventError:
			<-pushDone
			return "", ev.Err
		case inter.EventEnded:
			// channel closes right after, loop exits
		}
	}

	if err := <-pushDone; err != nil {
		return "", err
	}
	return b.String(), nil
}

func appendFragment(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, " ") {
		b.WriteByte(' ')
	}
}
