package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/depcheck/core/fsprovider"
)

var (
	testExtensions = []string{".ts", ".tsx", ".js", ".jsx"}
	testExclude    = []string{"node_modules", ".git"}
)

func startWatcher(t *testing.T, root string) chan []string {
	t.Helper()

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)

	fw, err := NewFileWatcher(local, testExclude, testExtensions, 20*time.Millisecond)
	require.NoError(t, err)
	fw.Warm(context.Background(), []string{"a.ts"})

	changes := make(chan []string, 16)
	started := make(chan struct{})
	fw.FileWatcher.AddOnStartFunc(func() error {
		close(started)
		return nil
	})
	fw.FileWatcher.AddOnChangeFunc(func(changed []string) error {
		changes <- changed
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Watch(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = fw.Close()
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return changes
}

func expectChange(t *testing.T, changes chan []string) []string {
	t.Helper()
	select {
	case changed := <-changes:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func expectQuiet(t *testing.T, changes chan []string) {
	t.Helper()
	select {
	case changed := <-changes:
		t.Fatalf("unexpected change %v", changed)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchReportsContentChanges(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte(`import "./b"`), 0o644))

	changes := startWatcher(t, root)

	require.NoError(t, os.WriteFile(file, []byte(`import "./c"`), 0o644))
	assert.Equal(t, []string{"a.ts"}, expectChange(t, changes))
}

func TestWatchIgnoresIdenticalRewrites(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte(`import "./b"`), 0o644))

	changes := startWatcher(t, root)

	require.NoError(t, os.WriteFile(file, []byte(`import "./b"`), 0o644))
	expectQuiet(t, changes)
}

func TestWatchIgnoresExcludedAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "react"), 0o755))

	changes := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "react", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))
	expectQuiet(t, changes)
}

func TestWatchPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), nil, 0o644))

	changes := startWatcher(t, root)

	dir := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(dir, 0o755))
	expectChange(t, changes)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "utils.ts"), []byte("export {}"), 0o644))
	assert.Contains(t, expectChange(t, changes), "lib/utils.ts")
}

func TestOverlappingBurstsRescanOneAtATime(t *testing.T) {
	local, err := fsprovider.NewLocal(t.TempDir())
	require.NoError(t, err)
	fw, err := NewFileWatcher(local, testExclude, testExtensions, 5*time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	var active, maxActive, calls atomic.Int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	fw.FileWatcher.AddOnChangeFunc(func([]string) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		calls.Add(1)
		entered <- struct{}{}
		<-release
		active.Add(-1)
		return nil
	})

	ctx := context.Background()
	fw.queue(ctx, "", true)
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first rescan did not start")
	}

	// a second burst lands while the first rescan is still running
	fw.queue(ctx, "", true)
	select {
	case <-entered:
		t.Fatal("second rescan started before the first finished")
	case <-time.After(100 * time.Millisecond):
	}

	release <- struct{}{}
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("second rescan never ran")
	}
	release <- struct{}{}

	assert.Eventually(t, func() bool { return active.Load() == 0 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestShouldExcludePath(t *testing.T) {
	local, err := fsprovider.NewLocal(t.TempDir())
	require.NoError(t, err)
	fw, err := NewFileWatcher(local, testExclude, testExtensions, time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	assert.True(t, fw.shouldExcludePath("node_modules"))
	assert.True(t, fw.shouldExcludePath("packages/ui/node_modules/x.js"))
	assert.False(t, fw.shouldExcludePath("src/node_modules_helper.ts"))
	assert.False(t, fw.shouldExcludePath("."))

	assert.True(t, fw.isSource("app/page.TSX"))
	assert.False(t, fw.isSource("README.md"))
}
