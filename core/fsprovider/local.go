package fsprovider

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tristendillon/depcheck/core/logger"
)

// Local is a provider backed by the operating system.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve project root %s: %w", root, err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Capable() bool { return true }

func (l *Local) Root() string { return l.root }

func (l *Local) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(CleanRel(rel)))
}

func (l *Local) Stat(_ context.Context, rel string) (Info, error) {
	stat, err := os.Stat(l.abs(rel))
	if err != nil {
		return Info{}, err
	}
	return Info{IsDir: stat.IsDir(), Size: stat.Size()}, nil
}

func (l *Local) ReadFile(_ context.Context, rel string) ([]byte, error) {
	return os.ReadFile(l.abs(rel))
}

// Walk visits the tree in lexical order. Unreadable directories below the
// root are logged and skipped; an unreadable root fails the walk.
func (l *Local) Walk(ctx context.Context, fn WalkFunc) error {
	return filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if p == l.root {
				return err
			}
			logger.Warn("Skipping unreadable path %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if p == l.root {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}

		info := Info{IsDir: d.IsDir()}
		if !d.IsDir() {
			if fi, statErr := d.Info(); statErr == nil {
				info.Size = fi.Size()
			}
		}

		return fn(filepath.ToSlash(rel), info)
	})
}
