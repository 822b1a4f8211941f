package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/model"
	"github.com/xxxsen/resumatch/internal/pkg/dbutil"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
	"github.com/xxxsen/resumatch/internal/scoring"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// AnalysisCache owns the analyses table: one stored report per
// (resume document, job document) pair plus its access bookkeeping.
type AnalysisCache struct {
	analyses AnalysisRepository
	now      func() time.Time
}

func NewAnalysisCache(analyses AnalysisRepository) *AnalysisCache {
	return &AnalysisCache{analyses: analyses, now: time.Now}
}

// Lookup returns the cached analysis of the pair and records the access.
// The stored payload is returned as is.
func (c *AnalysisCache) Lookup(ctx context.Context, resumeDocID, jobDocID string) (*model.Analysis, bool, error) {
	item, err := c.analyses.Touch(ctx, resumeDocID, jobDocID, c.now().UnixMilli())
	if errors.Is(err, appErr.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

type StoreInput struct {
	ResumeDocumentID string
	JobDocumentID    string
	Report           *model.MatchReport
	ProviderName     string
	ProviderModel    string
	ProcessingTime   float64
}

// Store normalizes the report and persists it. When another writer already
// stored the pair, that row wins and is returned with created=false.
func (c *AnalysisCache) Store(ctx context.Context, in StoreInput) (*model.Analysis, bool, error) {
	if in.Report == nil {
		return nil, false, fmt.Errorf("%w: empty report", appErr.ErrInvalid)
	}
	report := scoring.Normalize(in.Report)
	now := c.now().UnixMilli()
	item := &model.Analysis{
		ID:               newID(),
		ResumeDocumentID: in.ResumeDocumentID,
		JobDocumentID:    in.JobDocumentID,
		Score:            report.OverallScore(),
		Result:           *report,
		ProviderName:     in.ProviderName,
		ProviderModel:    in.ProviderModel,
		ProcessingTime:   in.ProcessingTime,
		Ctime:            now,
		LastAccessTime:   now,
		AccessCount:      1,
	}
	stored, created, err := c.analyses.InsertOrGet(ctx, item)
	if err != nil {
		return nil, false, err
	}
	if !created {
		logutil.GetLogger(ctx).Info("analysis already stored by a concurrent request, using it",
			zap.String("analysis_id", stored.ID),
			zap.String("resume_document_id", in.ResumeDocumentID),
			zap.String("job_document_id", in.JobDocumentID),
		)
	}
	return stored, created, nil
}

// EvictOlderThan deletes analyses created more than days ago.
func (c *AnalysisCache) EvictOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: negative retention", appErr.ErrInvalid)
	}
	cutoff := c.now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	return c.analyses.DeleteBefore(ctx, cutoff)
}

func (c *AnalysisCache) GetByID(ctx context.Context, id string) (*model.Analysis, error) {
	return c.analyses.GetByID(ctx, id)
}

// History lists the analyses of resumes owned by ownerID, newest first.
func (c *AnalysisCache) History(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error) {
	return c.analyses.ListByOwner(ctx, ownerID, dbutil.ClampLimit(limit, defaultHistoryLimit, maxHistoryLimit))
}
