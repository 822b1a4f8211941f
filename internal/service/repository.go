package service

import (
	"context"

	"github.com/xxxsen/resumatch/internal/model"
)

// DocumentRepository persists documents under a unique
// (fingerprint, kind, scope_owner) key.
type DocumentRepository interface {
	// Upsert stores doc or, when its key already exists, moves the stored
	// row's last_used_time forward and returns that row with created=false.
	Upsert(ctx context.Context, doc *model.Document) (*model.Document, bool, error)
	GetByID(ctx context.Context, id string) (*model.Document, error)
	// AddUploader records that ownerID uploaded content resolving to the
	// document. Recording the same pair again is a no-op.
	AddUploader(ctx context.Context, documentID, ownerID string, now int64) error
	IsUploader(ctx context.Context, documentID, ownerID string) (bool, error)
}

// AnalysisRepository persists at most one analysis per
// (resume_document_id, job_document_id).
type AnalysisRepository interface {
	// Touch bumps access_count and last_access_time of the pair's analysis.
	// It fails with ErrNotFound when the pair has none.
	Touch(ctx context.Context, resumeDocID, jobDocID string, now int64) (*model.Analysis, error)
	// InsertOrGet stores item, or counts an access on the existing row of
	// the pair and returns it with created=false.
	InsertOrGet(ctx context.Context, item *model.Analysis) (*model.Analysis, bool, error)
	GetByID(ctx context.Context, id string) (*model.Analysis, error)
	// ListByOwner lists analyses whose resume document ownerID uploaded.
	ListByOwner(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error)
	DeleteBefore(ctx context.Context, cutoff int64) (int64, error)
}
