package summary

import (
	"os"
	"sync"
	"time"

	"github.com/sherpa-api/core/internal/modules/collaborator"
	"go.uber.org/zap"
)

// CacheEntry pairs a generated transcript with its audio artifact on disk.
type CacheEntry struct {
	Key          string
	ArtifactPath string
	Transcript   *collaborator.Transcript
	CreatedAt    time.Time
}

// CacheStats aggregates the live entries and the bytes of their artifacts.
type CacheStats struct {
	Entries    int
	TotalBytes int64
}

// ArtifactCache maps content hashes to synthesized summaries. An entry is
// only served while its artifact still exists on disk; a stale entry is
// purged at lookup time instead of being returned.
type ArtifactCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	logger  *zap.Logger
}

func NewArtifactCache(logger *zap.Logger) *ArtifactCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactCache{
		entries: make(map[string]*CacheEntry),
		logger:  logger.Named("ArtifactCache"),
	}
}

// Lookup returns the entry for key if its artifact is verified present. An
// entry whose artifact has disappeared is removed and reported as a miss.
func (c *ArtifactCache) Lookup(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if _, err := os.Stat(entry.ArtifactPath); err != nil {
		c.logger.Warn("cache artifact missing, purging entry",
			zap.String("key", key),
			zap.String("path", entry.ArtifactPath))
		delete(c.entries, key)
		return nil, false
	}
	return entry, true
}

// Store inserts or overwrites the entry for key.
func (c *ArtifactCache) Store(key, artifactPath string, transcript *collaborator.Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &CacheEntry{
		Key:          key,
		ArtifactPath: artifactPath,
		Transcript:   transcript,
		CreatedAt:    time.Now(),
	}
}

// Sweep removes entries older than maxAge and best-effort deletes their
// artifacts. A failed artifact delete is logged, not fatal.
func (c *ArtifactCache) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, entry := range c.entries {
		if entry.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(entry.ArtifactPath); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to delete swept artifact",
				zap.String("path", entry.ArtifactPath),
				zap.Error(err))
		}
		delete(c.entries, key)
		removed++
	}
	if removed > 0 {
		c.logger.Info("artifact cache swept", zap.Int("removed", removed))
	}
	return removed
}

// Stats counts live entries and sums the sizes of their artifacts. Entries
// whose artifact has gone missing are skipped in the size sum.
func (c *ArtifactCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{Entries: len(c.entries)}
	for _, entry := range c.entries {
		info, err := os.Stat(entry.ArtifactPath)
		if err != nil {
			continue
		}
		stats.TotalBytes += info.Size()
	}
	return stats
}

// Len reports the number of entries without touching disk.
func (c *ArtifactCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
