package job

import (
	"context"
)

type Sweeper interface {
	Sweep(ctx context.Context, retentionDays int) (int64, error)
}

// AnalysisCleanupJob periodically evicts analyses past the retention window.
type AnalysisCleanupJob struct {
	janitor       Sweeper
	retentionDays int
}

func NewAnalysisCleanupJob(janitor Sweeper, retentionDays int) *AnalysisCleanupJob {
	return &AnalysisCleanupJob{janitor: janitor, retentionDays: retentionDays}
}

func (j *AnalysisCleanupJob) Name() string {
	return "analysis_cache_cleanup"
}

func (j *AnalysisCleanupJob) Run(ctx context.Context) error {
	if j.janitor == nil {
		return nil
	}
	_, err := j.janitor.Sweep(ctx, j.retentionDays)
	return err
}
