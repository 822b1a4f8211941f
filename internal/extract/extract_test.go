package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)
	w, err = zw.Create(docxBodyPath)
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	ex := New()
	docx := buildDOCX(t, `<w:p><w:r><w:t>Senior Go</w:t></w:r><w:r><w:tab/><w:t>Engineer</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">Postgres </w:t></w:r></w:p>`)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{name: "txt", filename: "cv.TXT", data: []byte("\uFEFF  Go developer\n"), want: "Go developer"},
		{name: "markdown", filename: "job.md", data: []byte("# Backend\n\nWe use **Go** and\n[postgres](http://x)\n\n```\nselect 1\n```\n"),
			want: "Backend\nWe use Go and\npostgres\nselect 1"},
		{name: "docx", filename: "cv.docx", data: docx, want: "Senior Go\tEngineer\nPostgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(ctx, tt.data, tt.filename)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	ctx := context.Background()
	ex := New()
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "unsupported", filename: "cv.exe", data: []byte("MZ")},
		{name: "no extension", filename: "cv", data: []byte("text")},
		{name: "empty", filename: "cv.txt", data: nil},
		{name: "whitespace only", filename: "cv.txt", data: []byte(" \n\t ")},
		{name: "broken docx", filename: "cv.docx", data: []byte("not a zip")},
		{name: "docx without body", filename: "cv.docx", data: func() []byte {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			_, _ = zw.Create("other.xml")
			_ = zw.Close()
			return buf.Bytes()
		}()},
		{name: "broken pdf", filename: "cv.pdf", data: []byte("%PDF-1.4 garbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.Extract(ctx, tt.data, tt.filename)
			require.ErrorIs(t, err, appErr.ErrExtraction)
		})
	}
}

func TestMimeType(t *testing.T) {
	require.Equal(t, "application/pdf", MimeType("a.PDF"))
	require.Equal(t, "text/plain", MimeType("a.txt"))
	require.Equal(t, "application/octet-stream", MimeType("a.bin"))
	require.True(t, Supported("x.docx"))
	require.False(t, Supported("x.doc"))
}

type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	c.calls++
	if len(data) == 0 {
		return "", appErr.ErrExtraction
	}
	return string(data), nil
}

func TestWrapLRU(t *testing.T) {
	ctx := context.Background()
	next := &countingExtractor{}
	ex := WrapLRU(next, 8, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := ex.Extract(ctx, []byte("hello"), "a.txt")
		require.NoError(t, err)
		require.Equal(t, "hello", got)
	}
	require.Equal(t, 1, next.calls)

	_, err := ex.Extract(ctx, []byte("hello"), "a.md")
	require.NoError(t, err)
	require.Equal(t, 2, next.calls)

	for i := 0; i < 2; i++ {
		_, err = ex.Extract(ctx, nil, "a.txt")
		require.ErrorIs(t, err, appErr.ErrExtraction)
	}
	require.Equal(t, 4, next.calls)

	require.Same(t, next, WrapLRU(next, 0, time.Minute))
}
