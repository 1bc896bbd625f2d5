package eventbus

import (
	"github.com/aryanarora07/podlyze/internal/utils"
)

// Handler is the default consumer for pipeline events. It turns bus
// traffic into tagged log lines so milestones, transcript fragments and
// retries stay observable wherever they were published from.
type Handler struct {
	logger *utils.Logger
}

func NewHandler(logger *utils.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) HandleJobProgress(data JobProgressData) {
	h.logger.InfoTag("JOB", "job %s: %s %d%%", data.JobID, data.Stage, data.Progress)
}

func (h *Handler) HandleJobCompleted(data JobResultData) {
	h.logger.InfoTag("JOB", "job %s completed: %s", data.JobID, data.Title)
}

func (h *Handler) HandleJobFailed(data JobResultData) {
	h.logger.WarnTag("JOB", "job %s failed: %s", data.JobID, data.Error)
}

func (h *Handler) HandleTranscript(data TranscriptEventData) {
	if data.IsFinal {
		h.logger.DebugTag("ASR", "job %s final: %s", data.JobID, data.Text)
		return
	}
	h.logger.DebugTag("ASR", "job %s partial: %s", data.JobID, data.Text)
}

func (h *Handler) HandleFetchRetry(data FetchRetryData) {
	h.logger.WarnTag("FETCH", "job %s retry %d for %s: %s", data.JobID, data.Attempt, data.URL, data.Cause)
}

// SetupHandlers subscribes the default handler to every pipeline topic.
func SetupHandlers(logger *utils.Logger) error {
	handler := NewHandler(logger)

	subscriptions := []struct {
		topic string
		fn    interface{}
	}{
		{EventJobProgress, handler.HandleJobProgress},
		{EventJobCompleted, handler.HandleJobCompleted},
		{EventJobFailed, handler.HandleJobFailed},
		{EventTranscriptPartial, handler.HandleTranscript},
		{EventTranscriptFinal, handler.HandleTranscript},
		{EventFetchRetry, handler.HandleFetchRetry},
	}
	for _, sub := range subscriptions {
		if err := Subscribe(sub.topic, sub.fn); err != nil {
			return err
		}
	}
	return nil
}
