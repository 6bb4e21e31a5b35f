package cache

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/hashing"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// DirName is the cache directory inside the profile directory.
const DirName = "cache"

// Options configures a NetworkCache.
type Options struct {
	Directory     string
	MaximumSizeKB int
	Now           func() time.Time
}

// NetworkCache is a size-limited disk cache of HTTP responses.
type NetworkCache struct {
	dir     string
	now     func() time.Time
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu      sync.RWMutex
	index   map[string]*Metadata
	size    int64
	maxSize int64
}

// New opens (or creates) a cache in opts.Directory and rebuilds its index.
func New(opts Options) (*NetworkCache, error) {
	if opts.Directory == "" {
		return nil, nperrors.NewStorageError("cache directory is not set", nil)
	}
	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, nperrors.NewStorageError("failed to create cache directory", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, nperrors.NewStorageError("failed to create zstd encoder", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, nperrors.NewStorageError("failed to create zstd decoder", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &NetworkCache{
		dir:     opts.Directory,
		now:     now,
		encoder: encoder,
		decoder: decoder,
		index:   make(map[string]*Metadata),
		maxSize: kilobytes(opts.MaximumSizeKB),
	}
	if err := c.loadIndex(); err != nil {
		c.Close()
		return nil, err
	}
	c.mu.Lock()
	c.evictLocked()
	c.mu.Unlock()

	log.Debugf("Opened disk cache %s with %d entries (%d bytes)", c.dir, len(c.index), c.size)
	return c, nil
}

func kilobytes(kb int) int64 {
	if kb < 0 {
		kb = 0
	}
	return int64(kb) * 1024
}

func (c *NetworkCache) loadIndex() error {
	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.dir {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, metaSuffix) {
			return nil
		}

		meta, err := readMetadata(path)
		if err != nil {
			log.Warnf("Dropping broken cache entry %s: %v", path, err)
			removeEntryFiles(strings.TrimSuffix(path, metaSuffix))
			return nil
		}

		mu.Lock()
		c.index[meta.key] = meta
		c.size += meta.Size
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nperrors.NewStorageError("failed to scan cache directory", err)
	}
	return nil
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(path, metaSuffix)
	info, err := os.Stat(base + bodySuffix)
	if err != nil {
		return nil, err
	}
	meta.Size = info.Size()
	meta.key = filepath.Base(base)
	if meta.key != hashing.StringChecksum(meta.URL) {
		return nil, os.ErrInvalid
	}
	return &meta, nil
}

func removeEntryFiles(base string) {
	for _, suffix := range []string{bodySuffix, metaSuffix} {
		if err := os.Remove(base + suffix); err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to remove cache file %s: %v", base+suffix, err)
		}
	}
}

func (c *NetworkCache) base(key string) string {
	return filepath.Join(c.dir, key)
}

// Directory returns the cache directory.
func (c *NetworkCache) Directory() string {
	return c.dir
}

// Store saves a response body. Entries larger than the size limit, and every
// entry while the limit is zero, are not stored.
func (c *NetworkCache) Store(url string, statusCode int, header http.Header, body []byte) error {
	header = storedHeader(header)
	if header.Get("Content-Type") == "" && len(body) > 0 {
		header.Set("Content-Type", mimetype.Detect(body).String())
	}

	compressed := c.encoder.EncodeAll(body, make([]byte, 0, len(body)/2))
	meta := &Metadata{
		URL:        url,
		StatusCode: statusCode,
		Header:     header,
		Created:    c.now(),
		Size:       int64(len(compressed)),
		BodySize:   int64(len(body)),
		key:        hashing.StringChecksum(url),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if meta.Size > c.maxSize {
		return nil
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return nperrors.NewStorageError("failed to encode cache metadata", err)
	}
	base := c.base(meta.key)
	if err := utils.WriteFileAtomic(base+bodySuffix, compressed, 0644); err != nil {
		return nperrors.NewStorageError("failed to write cache entry", err)
	}
	if err := utils.WriteFileAtomic(base+metaSuffix, metaData, 0644); err != nil {
		removeEntryFiles(base)
		return nperrors.NewStorageError("failed to write cache metadata", err)
	}

	if old, ok := c.index[meta.key]; ok {
		c.size -= old.Size
	}
	c.index[meta.key] = meta
	c.size += meta.Size
	c.evictLocked()
	return nil
}

// Lookup returns a cached response.
func (c *NetworkCache) Lookup(url string) (*Metadata, []byte, bool) {
	key := hashing.StringChecksum(url)

	c.mu.RLock()
	defer c.mu.RUnlock()

	meta, ok := c.index[key]
	if !ok {
		return nil, nil, false
	}
	compressed, err := os.ReadFile(c.base(key) + bodySuffix)
	if err != nil {
		log.Warnf("Failed to read cache entry for %s: %v", url, err)
		return nil, nil, false
	}
	body, err := c.decoder.DecodeAll(compressed, make([]byte, 0, meta.BodySize))
	if err != nil {
		log.Warnf("Failed to decompress cache entry for %s: %v", url, err)
		return nil, nil, false
	}

	out := *meta
	out.Header = meta.Header.Clone()
	return &out, body, true
}

// Remove deletes a single entry.
func (c *NetworkCache) Remove(url string) bool {
	key := hashing.StringChecksum(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	meta, ok := c.index[key]
	if !ok {
		return false
	}
	delete(c.index, key)
	c.size -= meta.Size
	removeEntryFiles(c.base(key))
	return true
}

// Clear removes entries created within the last period. A zero period
// removes everything. It returns the number of removed entries.
func (c *NetworkCache) Clear(period time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-period)
	kept := make(map[string]*Metadata, len(c.index))
	var keptSize int64
	var removed []string
	for key, meta := range c.index {
		if period <= 0 || !meta.Created.Before(cutoff) {
			removed = append(removed, key)
			continue
		}
		kept[key] = meta
		keptSize += meta.Size
	}

	c.index = kept
	c.size = keptSize
	for _, key := range removed {
		removeEntryFiles(c.base(key))
	}
	return len(removed)
}

// SetMaximumSize changes the size limit and evicts entries above it.
func (c *NetworkCache) SetMaximumSize(kb int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = kilobytes(kb)
	c.evictLocked()
}

// MaximumSize returns the size limit in bytes.
func (c *NetworkCache) MaximumSize() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxSize
}

// Stats returns the current usage.
func (c *NetworkCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Directory:   c.dir,
		Entries:     len(c.index),
		Size:        c.size,
		MaximumSize: c.maxSize,
	}
}

// evictLocked removes the oldest entries until the cache fits its limit.
func (c *NetworkCache) evictLocked() {
	if c.size <= c.maxSize {
		return
	}

	entries := make([]*Metadata, 0, len(c.index))
	for _, meta := range c.index {
		entries = append(entries, meta)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Created.Before(entries[j].Created)
	})

	evicted := 0
	for _, meta := range entries {
		if c.size <= c.maxSize {
			break
		}
		delete(c.index, meta.key)
		c.size -= meta.Size
		removeEntryFiles(c.base(meta.key))
		evicted++
	}
	log.Debugf("Evicted %d cache entries, %d bytes in use", evicted, c.size)
}

// Close releases the codec resources. The files stay on disk.
func (c *NetworkCache) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
