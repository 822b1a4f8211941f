package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

// IExtractor turns the raw bytes of an uploaded file into plain text.
// Unsupported formats and files without any text fail with ErrExtraction.
type IExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

type extractFunc func(data []byte) (string, error)

var formats = map[string]struct {
	mime string
	fn   extractFunc
}{
	"pdf":  {mime: "application/pdf", fn: extractPDF},
	"docx": {mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", fn: extractDOCX},
	"txt":  {mime: "text/plain", fn: extractText},
	"md":   {mime: "text/markdown", fn: extractMarkdown},
}

// Ext returns the lower-cased extension of filename without the dot.
func Ext(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
}

func Supported(filename string) bool {
	_, ok := formats[Ext(filename)]
	return ok
}

// MimeType reports the mime type recorded for filename, or
// application/octet-stream when the extension is unknown.
func MimeType(filename string) string {
	if f, ok := formats[Ext(filename)]; ok {
		return f.mime
	}
	return "application/octet-stream"
}

type extractor struct{}

func New() IExtractor {
	return &extractor{}
}

func (e *extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	ext := Ext(filename)
	f, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", appErr.ErrExtraction, ext)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file %s", appErr.ErrExtraction, filename)
	}
	text, err := f.fn(data)
	if err != nil {
		logutil.GetLogger(ctx).Warn("extract text failed",
			zap.String("filename", filename), zap.String("ext", ext), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %v", appErr.ErrExtraction, filename, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text found in %s", appErr.ErrExtraction, filename)
	}
	return text, nil
}
