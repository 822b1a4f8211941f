package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/resumatch/internal/model"
	"github.com/xxxsen/resumatch/internal/pkg/dbutil"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

var documentColumns = []string{
	"id", "owner_id", "scope_owner", "kind", "fingerprint", "filename", "content",
	"mime_type", "byte_size", "ctime", "last_used_time",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts doc unless a row with the same (fingerprint, kind,
// scope_owner) exists. On conflict only last_used_time moves forward and the
// stored row is returned; created reports which branch ran.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *model.Document) (*model.Document, bool, error) {
	sqlStr := `
		INSERT INTO documents (id, owner_id, scope_owner, kind, fingerprint, filename, content, mime_type, byte_size, ctime, last_used_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint, kind, scope_owner)
		DO UPDATE SET last_used_time = GREATEST(documents.last_used_time, EXCLUDED.last_used_time)
		RETURNING id, owner_id, scope_owner, kind, fingerprint, filename, content, mime_type, byte_size, ctime, last_used_time, (xmax = 0) AS inserted
	`
	args := []interface{}{
		doc.ID,
		doc.OwnerID,
		doc.ScopeOwner,
		string(doc.Kind),
		doc.Fingerprint,
		doc.Filename,
		doc.Content,
		doc.MimeType,
		doc.ByteSize,
		doc.Ctime,
		doc.LastUsedTime,
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var inserted bool
	item, err := scanDocument(row, &inserted)
	if dbutil.IsConflict(err) {
		return nil, false, fmt.Errorf("%w: %v", appErr.ErrConflict, err)
	}
	if err != nil {
		return nil, false, err
	}
	return item, inserted, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", map[string]interface{}{"id": id}, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	item, err := scanDocument(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	return item, err
}

func (r *DocumentRepo) AddUploader(ctx context.Context, documentID, ownerID string, now int64) error {
	sqlStr := `
		INSERT INTO document_uploads (document_id, owner_id, ctime)
		VALUES (?, ?, ?)
		ON CONFLICT (document_id, owner_id) DO NOTHING
	`
	args := []interface{}{documentID, ownerID, now}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) IsUploader(ctx context.Context, documentID, ownerID string) (bool, error) {
	sqlStr, args, err := builder.BuildSelect("document_uploads", map[string]interface{}{
		"document_id": documentID,
		"owner_id":    ownerID,
		"_limit":      []uint{0, 1},
	}, []string{"document_id"})
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var id string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanDocument(row rowScanner, extra ...interface{}) (*model.Document, error) {
	var doc model.Document
	var kind string
	dest := []interface{}{
		&doc.ID, &doc.OwnerID, &doc.ScopeOwner, &kind, &doc.Fingerprint, &doc.Filename, &doc.Content,
		&doc.MimeType, &doc.ByteSize, &doc.Ctime, &doc.LastUsedTime,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	doc.Kind = model.DocumentKind(kind)
	return &doc, nil
}
