package job

import (
	"context"
	"errors"
	"testing"
)

func TestValidMilestone(t *testing.T) {
	for _, m := range []int{0, 20, 40, 60, 80, 100} {
		if !ValidMilestone(m) {
			t.Errorf("ValidMilestone(%d) = false, want true", m)
		}
	}
	for _, m := range []int{-1, 10, 50, 99, 101} {
		if ValidMilestone(m) {
			t.Errorf("ValidMilestone(%d) = true, want false", m)
		}
	}
}

func TestTracker_StartAndAdvance(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)

	snap, err := tr.Start(ctx, "https://example.com/a.mp3")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if snap.Progress != 0 || snap.Status != StatusQueued {
		t.Errorf("new job = %+v, want queued at 0", snap)
	}

	steps := []struct {
		status   Status
		progress int
	}{
		{StatusFetching, 20},
		{StatusFetching, 40},
		{StatusTranscribing, 60},
		{StatusSummarizing, 80},
	}
	for _, step := range steps {
		if err := tr.Advance(ctx, snap.ID, step.status, step.progress); err != nil {
			t.Fatalf("Advance(%d) error = %v", step.progress, err)
		}
	}

	got, err := tr.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Progress != 80 || got.Status != StatusSummarizing {
		t.Errorf("job = %+v, want summarizing at 80", got)
	}
}

func TestTracker_AdvanceIgnoresRegression(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)
	snap, _ := tr.Start(ctx, "u")

	if err := tr.Advance(ctx, snap.ID, StatusTranscribing, 60); err != nil {
		t.Fatalf("Advance(60) error = %v", err)
	}
	if err := tr.Advance(ctx, snap.ID, StatusFetching, 20); err != nil {
		t.Fatalf("Advance(20) error = %v", err)
	}

	got, _ := tr.Get(ctx, snap.ID)
	if got.Progress != 60 {
		t.Errorf("progress = %d, want 60 after ignored regression", got.Progress)
	}
}

func TestTracker_AdvanceRejectsInvalidMilestone(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)
	snap, _ := tr.Start(ctx, "u")

	if err := tr.Advance(ctx, snap.ID, StatusFetching, 33); err == nil {
		t.Error("Advance(33) should fail")
	}
	if err := tr.Advance(ctx, "no-such-id", StatusFetching, 20); err == nil {
		t.Error("Advance on unknown job should fail")
	}
}

func TestTracker_CompleteThenReset(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)
	snap, _ := tr.Start(ctx, "u")

	if err := tr.Complete(ctx, snap.ID, "A Title"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	got, _ := tr.Get(ctx, snap.ID)
	if got.Progress != 100 || got.Status != StatusDone || got.Title != "A Title" {
		t.Errorf("job = %+v, want done at 100", got)
	}

	if err := tr.Advance(ctx, snap.ID, StatusFetching, 20); err == nil {
		t.Error("Advance on terminal job should fail")
	}

	if err := tr.Reset(ctx, snap.ID); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	got, _ = tr.Get(ctx, snap.ID)
	if got.Progress != 0 {
		t.Errorf("progress = %d, want 0 after reset", got.Progress)
	}
	if got.Status != StatusDone {
		t.Errorf("status = %s, want done preserved across reset", got.Status)
	}
}

func TestTracker_FailKeepsMilestone(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)
	snap, _ := tr.Start(ctx, "u")
	tr.Advance(ctx, snap.ID, StatusFetching, 40)

	if err := tr.Fail(ctx, snap.ID, errors.New("boom")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	got, _ := tr.Get(ctx, snap.ID)
	if got.Status != StatusFailed || got.Error != "boom" {
		t.Errorf("job = %+v, want failed with cause", got)
	}
	if got.Progress != 40 {
		t.Errorf("progress = %d, want milestone kept on failure", got.Progress)
	}
}

func TestTracker_Latest(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryStore(), nil)

	if snap, err := tr.Latest(ctx); err != nil || snap != nil {
		t.Fatalf("Latest() = %v, %v, want nil, nil before any job", snap, err)
	}

	first, _ := tr.Start(ctx, "first")
	second, _ := tr.Start(ctx, "second")

	got, err := tr.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("Latest() = %s, want %s", got.ID, second.ID)
	}
	_ = first
}
