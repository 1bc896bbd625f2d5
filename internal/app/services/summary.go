// Package services holds the application-level orchestration between
// fetchers, recognition providers, language models and storage.
package services

import (
	"context"
	"os"

	"github.com/aryanarora07/podlyze/internal/domain/fetch"
	"github.com/aryanarora07/podlyze/internal/domain/job"
	llminter "github.com/aryanarora07/podlyze/internal/domain/llm/inter"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe"
	"github.com/aryanarora07/podlyze/internal/domain/transcribe/audio"
	asrinter "github.com/aryanarora07/podlyze/internal/domain/transcribe/inter"
	"github.com/aryanarora07/podlyze/internal/platform/config"
	"github.com/aryanarora07/podlyze/internal/platform/errors"
	"github.com/aryanarora07/podlyze/internal/platform/logging"
	"github.com/aryanarora07/podlyze/internal/platform/storage"
)

const defaultTitle = "Video Summary"

// SummaryResult is the outcome of one pipeline run.
type SummaryResult struct {
	JobID      string `json:"job_id"`
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

// SummaryService runs the fetch → transcribe → summarize pipeline.
type SummaryService struct {
	cfg       *config.Config
	logger    *logging.Logger
	asr       asrinter.Provider
	llm       llminter.Provider
	tracker   *job.Tracker
	summaries *storage.SummaryRepository

	// SelectFetcher picks the downloader for a URL. Overridable in
	// tests.
	SelectFetcher func(mediaURL string) fetch.Fetcher
}

func NewSummaryService(
	cfg *config.Config,
	logger *logging.Logger,
	asr asrinter.Provider,
	llm llminter.Provider,
	tracker *job.Tracker,
	summaries *storage.SummaryRepository,
) *SummaryService {
	s := &SummaryService{
		cfg:       cfg,
		logger:    logger,
		asr:       asr,
		llm:       llm,
		tracker:   tracker,
		summaries: summaries,
	}
	s.SelectFetcher = func(mediaURL string) fetch.Fetcher {
		if fetch.IsYouTubeURL(mediaURL) {
			return fetch.NewYouTubeFetcher()
		}
		return fetch.NewHTTPFetcher()
	}
	return s
}

// Summarize runs the whole pipeline for one URL. The temp audio file
// and the progress gauge are cleaned up on every exit path.
func (s *SummaryService) Summarize(ctx context.Context, mediaURL string) (*SummaryResult, error) {
	snap, err := s.tracker.Start(ctx, mediaURL)
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "SummaryService.Summarize", "register job", err)
	}
	jobID := snap.ID

	defer func() {
		if err := s.tracker.Reset(context.Background(), jobID); err != nil {
			s.logger.Tagged().WarnTag("JOB", "job %s: reset failed: %v", jobID, err)
		}
	}()

	result, err := s.run(ctx, jobID, mediaURL)
	if err != nil {
		if failErr := s.tracker.Fail(context.Background(), jobID, err); failErr != nil {
			s.logger.Tagged().WarnTag("JOB", "job %s: recording failure: %v", jobID, failErr)
		}
		return nil, err
	}
	return result, nil
}

func (s *SummaryService) run(ctx context.Context, jobID, mediaURL string) (*SummaryResult, error) {
	log := s.logger.Tagged()

	// Stage 1: fetch.
	s.advance(ctx, jobID, job.StatusFetching, 20)
	fetcher := &fetch.Retrying{
		Inner: s.SelectFetcher(mediaURL),
		Policy: fetch.Policy{
			MaxAttempts: s.cfg.Fetch.MaxAttempts,
			Delay:       s.cfg.Fetch.RetryDelay,
		},
		Logger: log,
		JobID:  jobID,
	}
	if err := os.MkdirAll(s.cfg.Fetch.TempDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.KindFetch, "SummaryService.run", "create temp dir", err)
	}
	media, err := fetcher.Fetch(ctx, mediaURL, s.cfg.Fetch.TempDir)
	if err != nil {
		return nil, errors.Wrap(errors.KindFetch, "SummaryService.run", "fetch media", err)
	}
	defer func() {
		if err := os.Remove(media.Path); err != nil && !os.IsNotExist(err) {
			log.WarnTag("FETCH", "removing %s: %v", media.Path, err)
		}
	}()
	s.advance(ctx, jobID, job.StatusFetching, 40)
	log.InfoTag("FETCH", "job %s: downloaded %s", jobID, media.Path)

	// Stage 2: transcribe.
	s.advance(ctx, jobID, job.StatusTranscribing, 60)
	transcript, err := s.transcribe(ctx, jobID, media.Path)
	if err != nil {
		return nil, errors.Wrap(errors.KindTranscribe, "SummaryService.run", "transcribe audio", err)
	}

	// Stage 3: summarize.
	s.advance(ctx, jobID, job.StatusSummarizing, 80)
	summary, err := s.llm.Chat(ctx, []llminter.Message{
		{Role: "system", Content: s.cfg.Prompts.Summary},
		{Role: "user", Content: transcript},
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindSummarize, "SummaryService.run", "summarize transcript", err)
	}

	title := media.Title
	if title == "" {
		title = defaultTitle
	}

	if err := s.summaries.Save(ctx, &storage.Summary{
		JobID:      jobID,
		SourceURL:  mediaURL,
		Title:      title,
		Transcript: transcript,
		Body:       summary,
	}); err != nil {
		return nil, err
	}

	if err := s.tracker.Complete(ctx, jobID, title); err != nil {
		log.WarnTag("JOB", "job %s: recording completion: %v", jobID, err)
	}

	return &SummaryResult{
		JobID:      jobID,
		Title:      title,
		Transcript: transcript,
		Summary:    summary,
	}, nil
}

// transcribe prefers the streaming path when the provider supports it.
func (s *SummaryService) transcribe(ctx context.Context, jobID, audioPath string) (string, error) {
	sp, ok := s.asr.(asrinter.SessionProvider)
	if !ok {
		return s.asr.Transcribe(ctx, audioPath)
	}

	asrCfg := s.cfg.ASR[s.cfg.Selected.ASR]
	stream, err := audio.Chunk(ctx, audioPath, asrCfg.ChunkMS)
	if err != nil {
		return "", err
	}
	text, err := transcribe.Collect(ctx, sp, stream.C, stream.SampleRate, jobID)
	if err != nil {
		return "", err
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return text, nil
}

func (s *SummaryService) advance(ctx context.Context, jobID string, status job.Status, progress int) {
	if err := s.tracker.Advance(ctx, jobID, status, progress); err != nil {
		s.logger.Tagged().WarnTag("JOB", "job %s: advance to %d: %v", jobID, progress, err)
	}
}

// Progress returns a job snapshot by ID.
func (s *SummaryService) Progress(ctx context.Context, jobID string) (*job.Snapshot, error) {
	return s.tracker.Get(ctx, jobID)
}

// LatestProgress returns the most recently started job.
func (s *SummaryService) LatestProgress(ctx context.Context) (*job.Snapshot, error) {
	return s.tracker.Latest(ctx)
}

// Recent lists recently stored summaries.
func (s *SummaryService) Recent(ctx context.Context, limit int) ([]storage.Summary, error) {
	return s.summaries.ListRecent(ctx, limit)
}
