package watcher

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tristendillon/depcheck/core/cache"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

type FileWatcher interface {
	Watch(ctx context.Context) error
	Close() error
}

// FileWatcherImpl turns file system events under a project root into
// debounced change notifications. Only source files whose bytes actually
// changed are reported, and OnChange never runs concurrently with itself.
type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher
	Cache       *cache.ContentCache

	// flushMu serialises flushes so a slow OnChange finishes before the
	// next batch is taken.
	flushMu sync.Mutex
}

func NewFileWatcher(fsys fsprovider.FileSystem, excludePaths, extensions []string, debounce time.Duration) (*FileWatcherImpl, error) {
	fw, err := models.NewFileWatcher(fsys.Root(), excludePaths, extensions, debounce)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcherImpl{
		FileWatcher: fw,
		Cache:       cache.NewContentCache(fsys),
	}, nil
}

// Warm seeds the content cache so the first edit of an existing file is
// compared against what was on disk when watching started.
func (fw *FileWatcherImpl) Warm(ctx context.Context, files []string) {
	fw.Cache.Warm(ctx, files)
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcherImpl) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.FileWatcher.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(ctx, event)

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) handleEvent(ctx context.Context, event fsnotify.Event) {
	rel, ok := fw.relPath(event.Name)
	if !ok || fw.shouldExcludePath(rel) {
		return
	}

	logger.Debug("File event: %s %s", event.Op, rel)

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			logger.Debug("Adding watcher for new directory: %s", rel)
			if err := fw.addWatchersRecursively(event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", rel, err)
			}
			// files may have landed before the watch was in place
			fw.queue(ctx, "", true)
			return
		}
	}

	if fw.isSource(rel) {
		fw.queue(ctx, rel, false)
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		fw.queue(ctx, "", true)
	}
}

func (fw *FileWatcherImpl) queue(ctx context.Context, rel string, forced bool) {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	if rel != "" {
		fw.FileWatcher.Pending[rel] = true
	}
	if forced {
		fw.FileWatcher.Forced = true
	}

	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}
	fw.FileWatcher.DebounceTimer = time.AfterFunc(fw.FileWatcher.Debounce, func() {
		fw.flush(ctx)
	})
}

// flush hashes every pending file and fires OnChange when at least one of
// them differs from the cached content.
func (fw *FileWatcherImpl) flush(ctx context.Context) {
	fw.flushMu.Lock()
	defer fw.flushMu.Unlock()

	fw.FileWatcher.Mutex.Lock()
	pending := fw.FileWatcher.Pending
	forced := fw.FileWatcher.Forced
	fw.FileWatcher.Pending = make(map[string]bool)
	fw.FileWatcher.Forced = false
	fw.FileWatcher.Mutex.Unlock()

	if ctx.Err() != nil {
		return
	}

	var changed []string
	for rel := range pending {
		_, didChange, err := fw.Cache.UpdateContent(ctx, rel)
		if err != nil {
			logger.Warn("Treating %s as changed: %v", rel, err)
			didChange = true
		}
		if didChange {
			changed = append(changed, rel)
		}
	}
	sort.Strings(changed)

	if len(changed) == 0 && !forced {
		logger.Debug("File events without content changes, skipping rescan")
		return
	}

	logger.Debug("File changes detected: %v", changed)
	if err := fw.FileWatcher.OnChange(changed); err != nil {
		logger.Error("Watcher.OnChange failed: %v", err)
	}
}

func (fw *FileWatcherImpl) Close() error {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}

	if err := fw.FileWatcher.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.FileWatcher.Watcher.Close()
}

func (fw *FileWatcherImpl) relPath(p string) (string, bool) {
	rel, err := filepath.Rel(fw.FileWatcher.RootDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldExcludePath matches any component of rel against the exclude list,
// the same rule the source walker prunes by.
func (fw *FileWatcherImpl) shouldExcludePath(rel string) bool {
	if rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		for _, excludePath := range fw.FileWatcher.ExcludePaths {
			if part == excludePath {
				return true
			}
		}
	}
	return false
}

func (fw *FileWatcherImpl) isSource(rel string) bool {
	ext := strings.ToLower(path.Ext(rel))
	for _, allowed := range fw.FileWatcher.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if rel, ok := fw.relPath(p); ok && fw.shouldExcludePath(rel) {
			logger.Debug("Excluding directory: %s", rel)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", p)
		if err := fw.FileWatcher.Watcher.Add(p); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", p, err)
		}

		return nil
	})
}
