package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/resumatch/internal/config"
	"github.com/xxxsen/resumatch/internal/model"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
	"github.com/xxxsen/resumatch/internal/pkg/fingerprint"
)

func resumeInput(owner, text, filename string) DocumentInput {
	return DocumentInput{
		OwnerID:  owner,
		Kind:     model.DocumentKindResume,
		Text:     text,
		Filename: filename,
		MimeType: "text/plain",
		ByteSize: int64(len(text)),
	}
}

func TestDocumentGetOrCreateDedup(t *testing.T) {
	repo := newMemDocumentRepo()
	svc := NewDocumentService(repo, config.DedupScopeGlobal)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, resumeInput("user-1", "Senior Go Engineer\nBerlin", "a.txt"))
	require.NoError(t, err)
	require.Equal(t, fingerprint.Of("senior go engineer berlin"), first.Fingerprint)
	require.Equal(t, "Senior Go Engineer\nBerlin", first.Content)

	tests := []struct {
		name  string
		input DocumentInput
	}{
		{name: "other filename", input: resumeInput("user-1", "Senior Go Engineer\nBerlin", "b.txt")},
		{name: "whitespace and case", input: resumeInput("user-1", "  senior   GO engineer\r\nberlin\t", "c.txt")},
		{name: "other owner", input: resumeInput("user-2", "Senior Go Engineer\nBerlin", "d.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svc.GetOrCreate(ctx, tt.input)
			require.NoError(t, err)
			require.Equal(t, first.ID, doc.ID)
			require.Equal(t, "a.txt", doc.Filename)
			require.Equal(t, "user-1", doc.OwnerID)
			require.Equal(t, first.Content, doc.Content)
		})
	}
	require.Equal(t, 1, repo.count())

	job := resumeInput("user-1", "Senior Go Engineer\nBerlin", "a.txt")
	job.Kind = model.DocumentKindJobDescription
	jobDoc, err := svc.GetOrCreate(ctx, job)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, jobDoc.ID)
	require.Equal(t, 2, repo.count())
}

func TestDocumentOwnerScope(t *testing.T) {
	repo := newMemDocumentRepo()
	svc := NewDocumentService(repo, config.DedupScopeOwner)
	ctx := context.Background()

	a, err := svc.GetOrCreate(ctx, resumeInput("user-1", "Go engineer", "a.txt"))
	require.NoError(t, err)
	b, err := svc.GetOrCreate(ctx, resumeInput("user-2", "Go engineer", "a.txt"))
	require.NoError(t, err)
	again, err := svc.GetOrCreate(ctx, resumeInput("user-1", "go ENGINEER", "b.txt"))
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.ID, again.ID)
	require.Equal(t, 2, repo.count())
}

func TestDocumentGetOrCreateValidation(t *testing.T) {
	svc := NewDocumentService(newMemDocumentRepo(), "")
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, resumeInput("user-1", " \r\n\t", "a.txt"))
	require.ErrorIs(t, err, appErr.ErrExtraction)

	_, err = svc.GetOrCreate(ctx, resumeInput("", "text", "a.txt"))
	require.ErrorIs(t, err, appErr.ErrInvalid)

	in := resumeInput("user-1", "text", "a.txt")
	in.Kind = "cover_letter"
	_, err = svc.GetOrCreate(ctx, in)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDocumentConcurrentUploadsCreateOneRow(t *testing.T) {
	repo := newMemDocumentRepo()
	svc := NewDocumentService(repo, config.DedupScopeGlobal)
	ctx := context.Background()

	ids := make(chan string, 16)
	for i := 0; i < cap(ids); i++ {
		go func() {
			doc, err := svc.GetOrCreate(ctx, resumeInput("user-1", "Go engineer", "a.txt"))
			if err != nil {
				ids <- ""
				return
			}
			ids <- doc.ID
		}()
	}
	first := <-ids
	require.NotEmpty(t, first)
	for i := 1; i < cap(ids); i++ {
		require.Equal(t, first, <-ids)
	}
	require.Equal(t, 1, repo.count())
}
