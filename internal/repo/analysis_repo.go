package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/resumatch/internal/model"
	"github.com/xxxsen/resumatch/internal/pkg/dbutil"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

const analysisReturning = `id, resume_document_id, job_document_id, score, result_json, provider_name, provider_model,
	processing_time, ctime, last_access_time, access_count`

var analysisColumns = []string{
	"id", "resume_document_id", "job_document_id", "score", "result_json", "provider_name", "provider_model",
	"processing_time", "ctime", "last_access_time", "access_count",
}

type AnalysisRepo struct {
	db *sql.DB
}

func NewAnalysisRepo(db *sql.DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// Touch records one more access of the pair's analysis and returns the
// updated row, or ErrNotFound when the pair has none.
func (r *AnalysisRepo) Touch(ctx context.Context, resumeDocID, jobDocID string, now int64) (*model.Analysis, error) {
	sqlStr := `
		UPDATE analyses
		SET access_count = access_count + 1, last_access_time = GREATEST(last_access_time, ?)
		WHERE resume_document_id = ? AND job_document_id = ?
		RETURNING ` + analysisReturning
	args := []interface{}{now, resumeDocID, jobDocID}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	item, err := scanAnalysis(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	return item, err
}

// InsertOrGet inserts item unless the pair already has a row. A losing
// insert counts as an access of the existing row, which is returned with
// its original payload untouched.
func (r *AnalysisRepo) InsertOrGet(ctx context.Context, item *model.Analysis) (*model.Analysis, bool, error) {
	payload, err := json.Marshal(item.Result)
	if err != nil {
		return nil, false, fmt.Errorf("encode analysis result: %w", err)
	}
	sqlStr := `
		INSERT INTO analyses (id, resume_document_id, job_document_id, score, result_json, provider_name, provider_model,
			processing_time, ctime, last_access_time, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (resume_document_id, job_document_id)
		DO UPDATE SET
			access_count = analyses.access_count + 1,
			last_access_time = GREATEST(analyses.last_access_time, EXCLUDED.last_access_time)
		RETURNING ` + analysisReturning + `, (xmax = 0) AS inserted`
	args := []interface{}{
		item.ID,
		item.ResumeDocumentID,
		item.JobDocumentID,
		item.Score,
		string(payload),
		item.ProviderName,
		item.ProviderModel,
		item.ProcessingTime,
		item.Ctime,
		item.LastAccessTime,
		item.AccessCount,
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var inserted bool
	stored, err := scanAnalysis(r.db.QueryRowContext(ctx, sqlStr, args...), &inserted)
	if dbutil.IsConflict(err) {
		return nil, false, fmt.Errorf("%w: %v", appErr.ErrConflict, err)
	}
	if err != nil {
		return nil, false, err
	}
	return stored, inserted, nil
}

func (r *AnalysisRepo) GetByID(ctx context.Context, id string) (*model.Analysis, error) {
	sqlStr, args, err := builder.BuildSelect("analyses", map[string]interface{}{"id": id}, analysisColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	item, err := scanAnalysis(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	return item, err
}

// ListByOwner returns the analyses whose resume document ownerID uploaded,
// newest first.
func (r *AnalysisRepo) ListByOwner(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error) {
	sqlStr := `
		SELECT a.id, a.score, r.filename, j.filename, a.resume_document_id, a.job_document_id,
			a.access_count, a.ctime, a.last_access_time
		FROM analyses a
		JOIN document_uploads u ON u.document_id = a.resume_document_id
		JOIN documents r ON r.id = a.resume_document_id
		JOIN documents j ON j.id = a.job_document_id
		WHERE u.owner_id = ?
		ORDER BY a.ctime DESC
		LIMIT ?
	`
	args := []interface{}{ownerID, limit}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.AnalysisSummary, 0)
	for rows.Next() {
		var item model.AnalysisSummary
		if err := rows.Scan(&item.ID, &item.Score, &item.ResumeFilename, &item.JobFilename, &item.ResumeDocumentID,
			&item.JobDocumentID, &item.AccessCount, &item.Ctime, &item.LastAccessTime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *AnalysisRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args, err := builder.BuildDelete("analyses", map[string]interface{}{"ctime <": cutoff})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanAnalysis(row rowScanner, extra ...interface{}) (*model.Analysis, error) {
	var item model.Analysis
	var payload []byte
	dest := []interface{}{
		&item.ID, &item.ResumeDocumentID, &item.JobDocumentID, &item.Score, &payload, &item.ProviderName,
		&item.ProviderModel, &item.ProcessingTime, &item.Ctime, &item.LastAccessTime, &item.AccessCount,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &item.Result); err != nil {
			return nil, fmt.Errorf("decode analysis result: %w", err)
		}
	}
	return &item, nil
}
