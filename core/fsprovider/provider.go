// Package fsprovider abstracts the file system a scan runs against so the
// scanner never checks its execution environment directly.
package fsprovider

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/tristendillon/depcheck/core/models"
)

var (
	// ErrNotCapable is returned by providers without file system access.
	ErrNotCapable = errors.New("file system access is not available")

	// SkipDir may be returned from a WalkFunc to prune a directory.
	SkipDir = fs.SkipDir
)

// Info describes an existing path.
type Info struct {
	IsDir bool
	Size  int64
}

// WalkFunc is called for every entry below the root with its root-relative,
// slash separated path. Entries of one directory arrive in lexical order.
type WalkFunc func(rel string, info Info) error

// FileSystem is rooted at a project directory. All paths are root-relative
// and slash separated; they may climb above the root with "..".
type FileSystem interface {
	Capable() bool
	Root() string
	Stat(ctx context.Context, rel string) (Info, error)
	ReadFile(ctx context.Context, rel string) ([]byte, error)
	Walk(ctx context.Context, fn WalkFunc) error
}

// SampleReporter is implemented by providers that stand in for a real file
// system and supply representative data instead.
type SampleReporter interface {
	SampleReport() *models.ScanReport
}

// New picks a provider for source: afs URLs (anything with a scheme) go to
// Remote, everything else is a local directory.
func New(source string) (FileSystem, error) {
	if strings.Contains(source, "://") {
		return NewRemote(source)
	}
	return NewLocal(source)
}

// CleanRel normalises a root-relative path. The root itself is ".".
func CleanRel(rel string) string {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")
	if rel == "" {
		return "."
	}
	return rel
}
