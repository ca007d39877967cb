// Package artcache caches album/show/artist artwork on disk with an LRU
// eviction policy, and resolves an MPD Path down to the upstream image URL
// to fetch when the cache misses.
package artcache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// entry is one cached artwork blob's bookkeeping.
type entry struct {
	Key  string `yaml:"key"`
	Size int64  `yaml:"size"`

	element *list.Element
}

// manifest is the on-disk index persisted alongside the cached blobs so the
// LRU order and sizes survive a restart without re-statting every file.
type manifest struct {
	Entries []entry `yaml:"entries"`
}

const manifestFile = "index.yaml"

// DiskCache is a byte-budgeted, LRU-evicting cache of artwork blobs, keyed
// by the upstream Spotify resource id (not the image URL, since the id is
// stable while signed image URLs can rotate).
type DiskCache struct {
	dir         string
	maxSize     int64
	currentSize int64

	entries map[string]*entry
	lru     *list.List

	fetchGroup singleflight.Group
	log        *logrus.Entry
}

// NewDiskCache opens (or creates) a disk cache rooted at dir, loading its
// persisted manifest if present.
func NewDiskCache(dir string, maxSizeBytes int64, log *logrus.Entry) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artwork cache directory: %w", err)
	}

	c := &DiskCache{
		dir:     dir,
		maxSize: maxSizeBytes,
		entries: make(map[string]*entry),
		lru:     list.New(),
		log:     log,
	}
	if err := c.loadManifest(); err != nil {
		return nil, fmt.Errorf("loading artwork cache manifest: %w", err)
	}
	return c, nil
}

func (c *DiskCache) manifestPath() string { return filepath.Join(c.dir, manifestFile) }

func (c *DiskCache) loadManifest() error {
	data, err := os.ReadFile(c.manifestPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, e := range m.Entries {
		if _, statErr := os.Stat(c.blobPath(e.Key)); statErr != nil {
			continue
		}
		e := e
		e.element = c.lru.PushBack(&e)
		c.entries[e.Key] = &e
		c.currentSize += e.Size
	}
	return nil
}

func (c *DiskCache) saveManifest() {
	var m manifest
	for el := c.lru.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry)
		m.Entries = append(m.Entries, entry{Key: ent.Key, Size: ent.Size})
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.manifestPath(), data, 0o644); err != nil && c.log != nil {
		c.log.WithError(err).Warn("failed to persist artwork cache manifest")
	}
}

func (c *DiskCache) blobPath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:]))
}

// Get returns the cached blob for key, or ok=false on a cache miss.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(c.blobPath(key))
	if err != nil {
		delete(c.entries, key)
		c.lru.Remove(ent.element)
		c.currentSize -= ent.Size
		return nil, false
	}
	c.lru.MoveToFront(ent.element)
	return data, true
}

// Put stores data under key, evicting the least-recently-used entries until
// the configured byte budget is satisfied.
func (c *DiskCache) Put(key string, data []byte) error {
	if existing, ok := c.entries[key]; ok {
		c.lru.MoveToFront(existing.element)
		return nil
	}

	path := c.blobPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing artwork blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalizing artwork blob: %w", err)
	}

	size := int64(len(data))
	for c.currentSize+size > c.maxSize && c.lru.Len() > 0 {
		c.evictOldest()
	}

	e := &entry{Key: key, Size: size}
	e.element = c.lru.PushFront(e)
	c.entries[key] = e
	c.currentSize += size

	c.saveManifest()
	return nil
}

func (c *DiskCache) evictOldest() {
	el := c.lru.Back()
	if el == nil {
		return
	}
	ent := el.Value.(*entry)
	c.lru.Remove(el)
	delete(c.entries, ent.Key)
	c.currentSize -= ent.Size
	os.Remove(c.blobPath(ent.Key))
}

// EnsureFetched returns the cached blob for key, fetching it from url on a
// miss. Concurrent calls for the same key collapse into a single upstream
// fetch via singleflight.
func (c *DiskCache) EnsureFetched(ctx context.Context, key, url string) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	v, err, _ := c.fetchGroup.Do(key, func() (interface{}, error) {
		if data, ok := c.Get(key); ok {
			return data, nil
		}
		data, err := fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := c.Put(key, data); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching artwork: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching artwork: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Size returns the current total cached size in bytes.
func (c *DiskCache) Size() int64 { return c.currentSize }
