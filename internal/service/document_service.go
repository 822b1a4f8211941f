package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/config"
	"github.com/xxxsen/resumatch/internal/model"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
	"github.com/xxxsen/resumatch/internal/pkg/fingerprint"
)

type DocumentService struct {
	docs  DocumentRepository
	scope string
	now   func() time.Time
}

func NewDocumentService(docs DocumentRepository, scope string) *DocumentService {
	if scope == "" {
		scope = config.DedupScopeGlobal
	}
	return &DocumentService{docs: docs, scope: scope, now: time.Now}
}

type DocumentInput struct {
	OwnerID  string
	Kind     model.DocumentKind
	Text     string
	Filename string
	MimeType string
	ByteSize int64
}

// GetOrCreate returns the document holding text, creating it on first
// sight. An existing document is returned unchanged apart from its
// last_used_time: the first upload decides content, filename and owner.
func (s *DocumentService) GetOrCreate(ctx context.Context, in DocumentInput) (*model.Document, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner is required", appErr.ErrInvalid)
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", appErr.ErrInvalid, in.Kind)
	}
	text := strings.TrimSpace(in.Text)
	if fingerprint.Normalize(text) == "" {
		return nil, fmt.Errorf("%w: %s has no text", appErr.ErrExtraction, in.Kind)
	}
	now := s.now().UnixMilli()
	doc := &model.Document{
		ID:           newID(),
		OwnerID:      in.OwnerID,
		ScopeOwner:   s.scopeOwner(in.OwnerID),
		Kind:         in.Kind,
		Fingerprint:  fingerprint.Of(text),
		Filename:     in.Filename,
		Content:      text,
		MimeType:     in.MimeType,
		ByteSize:     in.ByteSize,
		Ctime:        now,
		LastUsedTime: now,
	}
	stored, created, err := s.docs.Upsert(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := s.docs.AddUploader(ctx, stored.ID, in.OwnerID, now); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("document resolved",
		zap.String("document_id", stored.ID),
		zap.String("kind", string(stored.Kind)),
		zap.String("fingerprint", fingerprint.Short(stored.Fingerprint)),
		zap.Bool("created", created),
	)
	return stored, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id string) (*model.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// CheckAccess fails with ErrForbidden unless ownerID uploaded content that
// resolved to the document. Under global dedup every such uploader counts,
// not only the first one.
func (s *DocumentService) CheckAccess(ctx context.Context, documentID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return appErr.ErrForbidden
	}
	ok, err := s.docs.IsUploader(ctx, documentID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: document %s", appErr.ErrForbidden, documentID)
	}
	return nil
}

func (s *DocumentService) scopeOwner(ownerID string) string {
	if s.scope == config.DedupScopeOwner {
		return ownerID
	}
	return ""
}
