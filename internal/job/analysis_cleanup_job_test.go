package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	days []int
	err  error
}

func (f *fakeSweeper) Sweep(_ context.Context, retentionDays int) (int64, error) {
	f.days = append(f.days, retentionDays)
	return 3, f.err
}

func TestAnalysisCleanupJob(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := NewAnalysisCleanupJob(sweeper, 14)
	require.Equal(t, "analysis_cache_cleanup", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, []int{14}, sweeper.days)

	sweeper.err = errors.New("db down")
	require.Error(t, j.Run(context.Background()))

	require.NoError(t, NewAnalysisCleanupJob(nil, 0).Run(context.Background()))
}
