package filestore

import (
	"context"
	"io"

	"github.com/xxxsen/resumatch/internal/config"
)

// noneStore discards uploads, for deployments that keep no originals.
type noneStore struct{}

func init() {
	Register("none", func(context.Context, config.FileStoreConfig) (Store, error) {
		return noneStore{}, nil
	})
}

func (noneStore) Type() string { return "none" }

func (noneStore) Save(context.Context, string, io.ReadSeeker, int64) error { return nil }

func (noneStore) Exists(context.Context, string) (bool, error) { return false, nil }
