// Package job tracks the progress of summarization jobs.
package job

import "time"

// Status is the lifecycle stage of a job.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusFetching     Status = "fetching"
	StatusTranscribing Status = "transcribing"
	StatusSummarizing  Status = "summarizing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Milestones are the only progress values a job may report.
var Milestones = []int{0, 20, 40, 60, 80, 100}

// ValidMilestone reports whether p is one of the allowed progress
// values.
func ValidMilestone(p int) bool {
	for _, m := range Milestones {
		if p == m {
			return true
		}
	}
	return false
}

// Snapshot is the persisted state of one job.
type Snapshot struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"source_url"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Title     string    `json:"title,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
