package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/aryanarora07/podlyze/internal/platform/errors"
)

// SummaryRepository persists completed pipeline outcomes.
type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Save(ctx context.Context, summary *Summary) error {
	if err := r.db.WithContext(ctx).Create(summary).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "summary.save", "failed to save summary", err)
	}
	return nil
}

func (r *SummaryRepository) FindByJobID(ctx context.Context, jobID string) (*Summary, error) {
	var summary Summary
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&summary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "summary.find_by_job_id", "failed to find summary", err)
	}
	return &summary, nil
}

// ListRecent returns the newest summaries first, capped at limit.
func (r *SummaryRepository) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	var summaries []Summary
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&summaries).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "summary.list_recent", "failed to list summaries", err)
	}
	return summaries, nil
}
