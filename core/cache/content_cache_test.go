package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/depcheck/core/fsprovider"
)

func TestHashIsStable(t *testing.T) {
	a, err := Hash([]byte(`import x from "./y"`))
	require.NoError(t, err)
	b, err := Hash([]byte(`import x from "./y"`))
	require.NoError(t, err)
	c, err := Hash([]byte(`import x from "./z"`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestUpdateContentTracksRealChanges(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte(`import "./b"`), 0o644))

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)
	cc := NewContentCache(local)
	ctx := context.Background()

	_, changed, err := cc.UpdateContent(ctx, "a.ts")
	require.NoError(t, err)
	assert.True(t, changed, "first sighting counts as a change")

	_, changed, err = cc.UpdateContent(ctx, "./a.ts")
	require.NoError(t, err)
	assert.False(t, changed, "same bytes")

	require.NoError(t, os.WriteFile(file, []byte(`import "./c"`), 0o644))
	entry, changed, err := cc.UpdateContent(ctx, "a.ts")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(len(`import "./c"`)), entry.Size)

	require.NoError(t, os.Remove(file))
	_, changed, err = cc.UpdateContent(ctx, "a.ts")
	require.NoError(t, err)
	assert.True(t, changed, "deletion of a known file")

	_, changed, err = cc.UpdateContent(ctx, "a.ts")
	require.NoError(t, err)
	assert.False(t, changed, "already forgotten")

	stats := cc.GetStats()
	assert.Equal(t, 0, stats.TotalFiles)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.CacheMisses)
}

func TestWarmThenUnchanged(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.ts", "b.tsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o644))
	}

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)
	cc := NewContentCache(local)

	cc.Warm(context.Background(), []string{"a.ts", "b.tsx"})
	assert.Equal(t, 2, cc.GetStats().TotalFiles)

	_, changed, err := cc.UpdateContent(context.Background(), "b.tsx")
	require.NoError(t, err)
	assert.False(t, changed)

	entry, ok := cc.RemoveContent("./b.tsx")
	require.True(t, ok)
	assert.Equal(t, "b.tsx", entry.FilePath)
	_, ok = cc.RemoveContent("b.tsx")
	assert.False(t, ok)
	assert.Equal(t, 1, cc.GetStats().TotalFiles)
}

func TestWarmSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.ts"), []byte(`export const b = 1`), 0o644))
	require.NoError(t, os.Symlink("loop.ts", filepath.Join(root, "loop.ts")))

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)
	cc := NewContentCache(local)

	_, _, err = cc.UpdateContent(context.Background(), "loop.ts")
	require.Error(t, err)

	cc.Warm(context.Background(), []string{"b.ts", "loop.ts"})
	assert.Equal(t, 1, cc.GetStats().TotalFiles)

	_, changed, err := cc.UpdateContent(context.Background(), "b.ts")
	require.NoError(t, err)
	assert.False(t, changed, "b.ts was warmed despite loop.ts failing")
}
