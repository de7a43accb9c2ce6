package adapters

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"repolint/internal/ports"
)

var metadataBucket = []byte("metadata")

type cacheRecord struct {
	ModTime time.Time         `json:"mod_time"`
	Blobs   map[string][]byte `json:"blobs"`
}

// fresh reports whether a record derived at r.ModTime still covers a
// source last modified at modTime.
func (r cacheRecord) fresh(modTime time.Time) bool {
	return !r.ModTime.Before(modTime)
}

func cacheKeyBytes(key ports.CacheKey) []byte {
	return []byte(strings.Join([]string{key.Kind, key.Repo, key.Arch, key.Name}, "\x00"))
}

// BoltMetadataCache persists derived metadata in a bbolt file so repeated
// runs skip decompressing unchanged package files.
type BoltMetadataCache struct {
	db *bolt.DB
}

func OpenBoltMetadataCache(path string) (*BoltMetadataCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory").
			WithCause(err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open metadata cache").
			WithCause(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(metadataBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to initialise metadata cache").
			WithCause(err)
	}
	return &BoltMetadataCache{db: db}, nil
}

func (c *BoltMetadataCache) Get(ctx context.Context, key ports.CacheKey, modTime time.Time) (map[string][]byte, bool) {
	var record cacheRecord
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(metadataBucket)
		if bucket == nil {
			return nil
		}
		raw := bucket.Get(cacheKeyBytes(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("name", key.Name).Msg("discarding unreadable cache record")
		return nil, false
	}
	if !found || !record.fresh(modTime) {
		return nil, false
	}
	return record.Blobs, true
}

func (c *BoltMetadataCache) Put(_ context.Context, key ports.CacheKey, modTime time.Time, blobs map[string][]byte) error {
	raw, err := json.Marshal(cacheRecord{ModTime: modTime, Blobs: blobs})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode cache record").
			WithCause(err)
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(metadataBucket)
		if err != nil {
			return err
		}
		return bucket.Put(cacheKeyBytes(key), raw)
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write cache record").
			WithCause(err)
	}
	return nil
}

func (c *BoltMetadataCache) Close() error {
	return c.db.Close()
}

// MemoryMetadataCache keeps derived metadata for the lifetime of the
// process.
type MemoryMetadataCache struct {
	mu      sync.Mutex
	records map[ports.CacheKey]cacheRecord
}

func NewMemoryMetadataCache() *MemoryMetadataCache {
	return &MemoryMetadataCache{records: map[ports.CacheKey]cacheRecord{}}
}

func (c *MemoryMetadataCache) Get(_ context.Context, key ports.CacheKey, modTime time.Time) (map[string][]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[key]
	if !ok || !record.fresh(modTime) {
		return nil, false
	}
	return record.Blobs, true
}

func (c *MemoryMetadataCache) Put(_ context.Context, key ports.CacheKey, modTime time.Time, blobs map[string][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = cacheRecord{ModTime: modTime, Blobs: blobs}
	return nil
}

func (c *MemoryMetadataCache) Close() error {
	return nil
}

var _ ports.MetadataCachePort = (*BoltMetadataCache)(nil)
var _ ports.MetadataCachePort = (*MemoryMetadataCache)(nil)
