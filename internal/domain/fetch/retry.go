package fetch

import (
	"context"

	"github.com/aryanarora07/podlyze/internal/domain/eventbus"
	"github.com/aryanarora07/podlyze/internal/utils"
)

// Retrying wraps a Fetcher with a fixed-delay retry policy. Each failed
// attempt leaves no file behind; the wrapped fetcher already removes its
// partial download before returning an error.
type Retrying struct {
	Inner  Fetcher
	Policy Policy
	Logger *utils.Logger
	JobID  string
}

func (r *Retrying) Fetch(ctx context.Context, mediaURL string, destDir string) (*Result, error) {
	var result *Result
	err := r.Policy.Do(ctx, func(ctx context.Context, attempt int) error {
		res, err := r.Inner.Fetch(ctx, mediaURL, destDir)
		if err != nil {
			r.Logger.WarnTag("FETCH", "attempt %d/%d failed for %s: %v",
				attempt, r.Policy.MaxAttempts, mediaURL, err)
			eventbus.Publish(eventbus.EventFetchRetry, eventbus.FetchRetryData{
				JobID:   r.JobID,
				URL:     mediaURL,
				Attempt: attempt,
				Cause:   err.Error(),
			})
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
