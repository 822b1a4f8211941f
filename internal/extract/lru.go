package extract

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/pkg/fingerprint"
)

// WrapLRU memoizes successful extractions keyed by the hash of the raw
// bytes and the file extension. Failures are not cached.
func WrapLRU(e IExtractor, size int, ttl time.Duration) IExtractor {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruExtractor{
		next:  e,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

type lruExtractor struct {
	next  IExtractor
	cache *expirable.LRU[string, string]
}

func (l *lruExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	key := fingerprint.HashBytes(data) + "." + Ext(filename)
	if cached, ok := l.cache.Get(key); ok {
		logutil.GetLogger(ctx).Debug("extract cache hit", zap.String("key", fingerprint.Short(key)))
		return cached, nil
	}
	text, err := l.next.Extract(ctx, data, filename)
	if err != nil {
		return "", err
	}
	l.cache.Add(key, text)
	return text, nil
}
