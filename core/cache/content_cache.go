package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

// ContentCache remembers the hash of every source file it has seen so the
// watcher can tell real edits from saves that leave the bytes untouched.
// It only lives as long as one watch session.
type ContentCache struct {
	fs      fsprovider.FileSystem
	entries map[string]*models.ContentEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache(fsys fsprovider.FileSystem) *ContentCache {
	return &ContentCache{
		fs:      fsys,
		entries: make(map[string]*models.ContentEntry),
	}
}

// UpdateContent re-reads rel and reports whether it differs from the last
// recorded state. New and deleted files count as changed.
func (cc *ContentCache) UpdateContent(ctx context.Context, rel string) (*models.ContentEntry, bool, error) {
	rel = fsprovider.CleanRel(rel)

	data, err := cc.fs.ReadFile(ctx, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			existing, removed := cc.RemoveContent(rel)
			return existing, removed, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	hash, err := Hash(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash %s: %w", rel, err)
	}

	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	existing, exists := cc.entries[rel]
	if exists && existing.ContentHash == hash {
		logger.Debug("ContentCache: Content unchanged for %s", rel)
		existing.SeenAt = time.Now()
		cc.stats.hits++
		return existing, false, nil
	}

	cc.stats.misses++
	entry := &models.ContentEntry{
		FilePath:    rel,
		ContentHash: hash,
		Size:        int64(len(data)),
		SeenAt:      time.Now(),
	}
	cc.entries[rel] = entry

	if exists {
		logger.Debug("ContentCache: Content changed for %s (%016x -> %016x)", rel, existing.ContentHash, hash)
	} else {
		logger.Debug("ContentCache: New file detected: %s", rel)
	}
	return entry, true, nil
}

// RemoveContent forgets rel and reports whether it was known.
func (cc *ContentCache) RemoveContent(rel string) (*models.ContentEntry, bool) {
	rel = fsprovider.CleanRel(rel)

	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	existing, exists := cc.entries[rel]
	if !exists {
		return nil, false
	}
	delete(cc.entries, rel)
	logger.Debug("ContentCache: File deleted: %s", rel)
	return existing, true
}

// Warm records the current hash of every file without reporting changes.
// Files that cannot be read are skipped, the same way a scan skips them.
func (cc *ContentCache) Warm(ctx context.Context, files []string) {
	warmed := 0
	for _, file := range files {
		if _, _, err := cc.UpdateContent(ctx, file); err != nil {
			logger.Warn("Skipping %s: %v", file, err)
			continue
		}
		warmed++
	}
	logger.Debug("ContentCache: Warmed %d of %d entries", warmed, len(files))
}

// GetStats returns cache statistics
func (cc *ContentCache) GetStats() *models.CacheStats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}

	return &models.CacheStats{
		TotalFiles:  len(cc.entries),
		CacheHits:   cc.stats.hits,
		CacheMisses: cc.stats.misses,
		HitRate:     hitRate,
		LastUpdate:  time.Now(),
	}
}
