package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultRetentionDays = 30

// CacheJanitor purges analyses past the retention window.
type CacheJanitor struct {
	cache         *AnalysisCache
	retentionDays int
}

func NewCacheJanitor(cache *AnalysisCache, retentionDays int) *CacheJanitor {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &CacheJanitor{cache: cache, retentionDays: retentionDays}
}

func (j *CacheJanitor) RetentionDays() int {
	return j.retentionDays
}

// Sweep evicts analyses older than retentionDays, or the configured
// retention when retentionDays is not positive.
func (j *CacheJanitor) Sweep(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = j.retentionDays
	}
	deleted, err := j.cache.EvictOlderThan(ctx, retentionDays)
	if err != nil {
		logutil.GetLogger(ctx).Error("analysis sweep failed", zap.Int("retention_days", retentionDays), zap.Error(err))
		return 0, err
	}
	logutil.GetLogger(ctx).Info("analysis sweep finished",
		zap.Int("retention_days", retentionDays),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
