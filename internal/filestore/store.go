package filestore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xxxsen/resumatch/internal/config"
	"github.com/xxxsen/resumatch/internal/pkg/fingerprint"
)

// Store archives the original bytes of uploaded files. Keys are content
// addressed, so saving an existing key again is never needed.
type Store interface {
	Type() string
	Save(ctx context.Context, key string, r io.ReadSeeker, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Factory func(ctx context.Context, cfg config.FileStoreConfig) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(ctx context.Context, cfg config.FileStoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
	return factory(ctx, cfg)
}

// Key derives the archive key of an upload: the sha256 of the raw bytes
// followed by the lower-cased extension of filename.
func Key(data []byte, filename string) string {
	key := fingerprint.HashBytes(data)
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && validKey(ext[1:]) {
		key += ext
	}
	return key
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
		default:
			return false
		}
	}
	return true
}
