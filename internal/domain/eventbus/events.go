package eventbus

// Topic names.
const (
	// Job lifecycle events.
	EventJobProgress  = "job:progress"
	EventJobCompleted = "job:completed"
	EventJobFailed    = "job:failed"

	// Transcription events.
	EventTranscriptPartial = "transcript:partial"
	EventTranscriptFinal   = "transcript:final"

	// Fetch events.
	EventFetchRetry = "fetch:retry"
)

// JobProgressData is published each time a job crosses a milestone.
type JobProgressData struct {
	JobID    string `json:"job_id"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
}

// JobResultData is published when a job completes or fails.
type JobResultData struct {
	JobID string `json:"job_id"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

// TranscriptEventData carries a recognized fragment, partial or final.
type TranscriptEventData struct {
	JobID   string `json:"job_id"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// FetchRetryData is published before each retry wait.
type FetchRetryData struct {
	JobID   string `json:"job_id"`
	URL     string `json:"url"`
	Attempt int    `json:"attempt"`
	Cause   string `json:"cause"`
}
