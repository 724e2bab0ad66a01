package fsprovider

import (
	"context"
	"fmt"
	neturl "net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/tristendillon/depcheck/core/logger"
)

// Remote is a provider backed by viant/afs, so a project can be scanned
// straight from any afs URL (file://, mem://, object storage).
type Remote struct {
	root string
	fs   afs.Service
}

func NewRemote(rootURL string) (*Remote, error) {
	return NewRemoteWithService(rootURL, afs.New())
}

func NewRemoteWithService(rootURL string, service afs.Service) (*Remote, error) {
	u, err := neturl.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", rootURL, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("source url %s has no scheme", rootURL)
	}
	u.Path = path.Clean("/" + u.Path)
	return &Remote{root: u.String(), fs: service}, nil
}

func (r *Remote) Capable() bool { return true }

func (r *Remote) Root() string { return r.root }

func (r *Remote) location(rel string) string {
	u, err := neturl.Parse(r.root)
	if err != nil {
		return r.root
	}
	u.Path = path.Join(u.Path, CleanRel(rel))
	return u.String()
}

func (r *Remote) Stat(ctx context.Context, rel string) (Info, error) {
	loc := r.location(rel)
	exists, err := r.fs.Exists(ctx, loc)
	if err != nil {
		return Info{}, err
	}
	if !exists {
		return Info{}, &os.PathError{Op: "stat", Path: loc, Err: os.ErrNotExist}
	}
	object, err := r.fs.Object(ctx, loc)
	if err != nil {
		return Info{}, err
	}
	return Info{IsDir: object.IsDir(), Size: object.Size()}, nil
}

func (r *Remote) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	return r.fs.DownloadWithURL(ctx, r.location(rel))
}

// Walk lists directories itself rather than relying on afs.Walk so that the
// visiting order is lexical and pruning is explicit.
func (r *Remote) Walk(ctx context.Context, fn WalkFunc) error {
	if _, err := r.Stat(ctx, "."); err != nil {
		return err
	}
	return r.walkDir(ctx, ".", fn, true)
}

func (r *Remote) walkDir(ctx context.Context, rel string, fn WalkFunc, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	loc := r.location(rel)
	objects, err := r.fs.List(ctx, loc)
	if err != nil {
		if isRoot {
			return err
		}
		logger.Warn("Skipping unreadable path %s: %v", loc, err)
		return nil
	}

	children := make([]storage.Object, 0, len(objects))
	for _, object := range objects {
		if sameLocation(object.URL(), loc) {
			continue
		}
		children = append(children, object)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

	for _, child := range children {
		childRel := path.Join(rel, child.Name())
		info := Info{IsDir: child.IsDir(), Size: child.Size()}

		err := fn(childRel, info)
		if err == SkipDir {
			if info.IsDir {
				continue
			}
			return nil
		}
		if err != nil {
			return err
		}

		if info.IsDir {
			if err := r.walkDir(ctx, childRel, fn, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func sameLocation(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
