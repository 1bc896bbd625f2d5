package eventbus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryanarora07/podlyze/internal/utils"
)

func newCapturedLogger(t *testing.T) (*utils.Logger, func() string) {
	t.Helper()
	dir := t.TempDir()
	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: "debug",
		LogDir:   dir,
		LogFile:  "events.log",
	})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	return logger, func() string {
		data, err := os.ReadFile(filepath.Join(dir, "events.log"))
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
}

func TestSetupHandlers_DeliversPublishedEvents(t *testing.T) {
	logger, logged := newCapturedLogger(t)
	if err := SetupHandlers(logger); err != nil {
		t.Fatalf("SetupHandlers() error = %v", err)
	}

	Publish(EventJobProgress, JobProgressData{JobID: "job-1", Stage: "fetching", Progress: 20})
	Publish(EventJobFailed, JobResultData{JobID: "job-1", Error: "download exhausted"})
	Publish(EventTranscriptPartial, TranscriptEventData{JobID: "job-1", Text: "hel"})
	Publish(EventFetchRetry, FetchRetryData{JobID: "job-1", URL: "https://x", Attempt: 2, Cause: "timeout"})

	out := logged()
	for _, want := range []string{
		"job job-1: fetching 20%",
		"job job-1 failed: download exhausted",
		"job job-1 partial: hel",
		"job job-1 retry 2 for https://x: timeout",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got:\n%s", want, out)
		}
	}
}
