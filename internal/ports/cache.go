package ports

import (
	"context"
	"time"
)

// CacheKey identifies one derived-metadata record.
type CacheKey struct {
	Kind string
	Repo string
	Arch string
	Name string
}

// MetadataCachePort stores parsed metadata blobs together with the
// modification time of the source they were derived from. Get misses
// when the stored watermark is older than modTime.
type MetadataCachePort interface {
	Get(ctx context.Context, key CacheKey, modTime time.Time) (map[string][]byte, bool)
	Put(ctx context.Context, key CacheKey, modTime time.Time, blobs map[string][]byte) error
	Close() error
}
