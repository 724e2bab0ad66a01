package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/depcheck/core/fsprovider"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("// "+f), 0o644))
	}

	return root
}

func TestWalkCollectsSourceExtensions(t *testing.T) {
	root := writeTree(t,
		"app/page.tsx",
		"lib/utils.ts",
		"lib/legacy.JS",
		"components/button.jsx",
		"styles/globals.css",
		"package.json",
		"README.md",
	)

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)

	w := NewSourceWalker(local, []string{".ts", ".tsx", ".js", ".jsx"}, nil)
	files, err := w.Walk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app/page.tsx",
		"components/button.jsx",
		"lib/legacy.JS",
		"lib/utils.ts",
	}, files)
}

func TestWalkSkipsExcludedComponents(t *testing.T) {
	root := writeTree(t,
		"src/index.ts",
		"node_modules/react/index.js",
		"src/node_modules/nested/x.js",
		".next/server/page.js",
		"dist/bundle.js",
		"src/distribution/keep.ts",
	)

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)

	w := NewSourceWalker(local, []string{".ts", ".js"}, []string{"node_modules", ".next", "dist"})
	files, err := w.Walk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"src/distribution/keep.ts", "src/index.ts"}, files)
}

func TestWalkMissingRoot(t *testing.T) {
	local, err := fsprovider.NewLocal(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	_, err = NewSourceWalker(local, []string{".ts"}, nil).Walk(context.Background())
	require.Error(t, err)
}

func TestWalkStableAcrossRuns(t *testing.T) {
	root := writeTree(t, "b.ts", "a.ts", "c/d.tsx")

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)

	w := NewSourceWalker(local, []string{".ts", ".tsx"}, nil)
	first, err := w.Walk(context.Background())
	require.NoError(t, err)
	second, err := w.Walk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
