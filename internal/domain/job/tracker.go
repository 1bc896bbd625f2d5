package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aryanarora07/podlyze/internal/domain/eventbus"
	"github.com/aryanarora07/podlyze/internal/utils"
)

// Tracker is the registry of running and recently finished jobs. Each
// job has its own progress cell, advanced in fixed milestones and never
// decreased while the job is active. Reset is the one exception and is
// only meant for terminal cleanup.
type Tracker struct {
	store  Store
	logger *utils.Logger

	mu       sync.RWMutex
	latestID string
}

func NewTracker(store Store, logger *utils.Logger) *Tracker {
	return &Tracker{store: store, logger: logger}
}

// Start registers a new job at progress 0 and makes it the latest.
func (t *Tracker) Start(ctx context.Context, sourceURL string) (*Snapshot, error) {
	now := time.Now()
	snap := Snapshot{
		ID:        uuid.NewString(),
		SourceURL: sourceURL,
		Status:    StatusQueued,
		Progress:  0,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Put(ctx, snap); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.latestID = snap.ID
	t.mu.Unlock()

	t.logger.InfoTag("JOB", "job %s started for %s", snap.ID, sourceURL)
	return &snap, nil
}

// Advance moves a job to a milestone. Regressions are ignored so a
// slow writer can never roll an active job backwards.
func (t *Tracker) Advance(ctx context.Context, id string, status Status, progress int) error {
	if !ValidMilestone(progress) {
		return fmt.Errorf("job %s: invalid milestone %d", id, progress)
	}

	snap, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("job %s: unknown job", id)
	}
	if snap.Status.Terminal() {
		return fmt.Errorf("job %s: already %s", id, snap.Status)
	}
	if progress < snap.Progress {
		t.logger.WarnTag("JOB", "job %s: ignoring regression %d -> %d", id, snap.Progress, progress)
		return nil
	}

	snap.Status = status
	snap.Progress = progress
	snap.UpdatedAt = time.Now()
	if err := t.store.Put(ctx, *snap); err != nil {
		return err
	}

	eventbus.Publish(eventbus.EventJobProgress, eventbus.JobProgressData{
		JobID: id, Stage: string(status), Progress: progress,
	})
	return nil
}

// Complete marks a job done at 100.
func (t *Tracker) Complete(ctx context.Context, id, title string) error {
	snap, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("job %s: unknown job", id)
	}

	snap.Status = StatusDone
	snap.Progress = 100
	snap.Title = title
	snap.UpdatedAt = time.Now()
	if err := t.store.Put(ctx, *snap); err != nil {
		return err
	}

	eventbus.Publish(eventbus.EventJobCompleted, eventbus.JobResultData{JobID: id, Title: title})
	t.logger.InfoTag("JOB", "job %s completed: %s", id, title)
	return nil
}

// Fail marks a job failed, keeping the milestone it reached.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	snap, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("job %s: unknown job", id)
	}

	snap.Status = StatusFailed
	snap.Error = cause.Error()
	snap.UpdatedAt = time.Now()
	if err := t.store.Put(ctx, *snap); err != nil {
		return err
	}

	eventbus.Publish(eventbus.EventJobFailed, eventbus.JobResultData{JobID: id, Error: cause.Error()})
	t.logger.ErrorTag("JOB", "job %s failed: %v", id, cause)
	return nil
}

// Reset forces a job's progress back to 0. Called from pipeline
// cleanup once a job has settled, so pollers of the legacy endpoint
// see an idle gauge again.
func (t *Tracker) Reset(ctx context.Context, id string) error {
	snap, err := t.store.Get(ctx, id)
	if err != nil || snap == nil {
		return err
	}
	snap.Progress = 0
	snap.UpdatedAt = time.Now()
	return t.store.Put(ctx, *snap)
}

// Get returns a job snapshot, or nil when unknown.
func (t *Tracker) Get(ctx context.Context, id string) (*Snapshot, error) {
	return t.store.Get(ctx, id)
}

// Latest returns the most recently started job, or nil when none has
// ever started. Backs the single-slot polling endpoint.
func (t *Tracker) Latest(ctx context.Context) (*Snapshot, error) {
	t.mu.RLock()
	id := t.latestID
	t.mu.RUnlock()
	if id == "" {
		return nil, nil
	}
	return t.store.Get(ctx, id)
}
