package walker

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
)

type SourceWalker interface {
	Walk(ctx context.Context) ([]string, error)
}

// SourceWalkerImpl enumerates the source files of a project. Any path
// component listed in Exclude prunes the whole subtree.
type SourceWalkerImpl struct {
	FS         fsprovider.FileSystem
	Extensions []string
	Exclude    []string
}

func NewSourceWalker(fs fsprovider.FileSystem, extensions, exclude []string) *SourceWalkerImpl {
	return &SourceWalkerImpl{
		FS:         fs,
		Extensions: extensions,
		Exclude:    exclude,
	}
}

// Walk returns root-relative slash paths of every matching file, sorted.
func (w *SourceWalkerImpl) Walk(ctx context.Context) ([]string, error) {
	allowed := make(map[string]bool, len(w.Extensions))
	for _, ext := range w.Extensions {
		allowed[strings.ToLower(ext)] = true
	}
	excluded := make(map[string]bool, len(w.Exclude))
	for _, ex := range w.Exclude {
		excluded[ex] = true
	}

	var discovered []string

	err := w.FS.Walk(ctx, func(rel string, info fsprovider.Info) error {
		name := path.Base(rel)
		if excluded[name] {
			logger.Debug("Excluding %s", rel)
			if info.IsDir {
				return fsprovider.SkipDir
			}
			return nil
		}

		if info.IsDir {
			return nil
		}

		if allowed[strings.ToLower(path.Ext(name))] {
			discovered = append(discovered, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(discovered)
	logger.Debug("Discovered %d source files", len(discovered))
	return discovered, nil
}
