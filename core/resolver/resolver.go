// Package resolver decides whether an import specifier would load at run time
// by emulating the project's module resolution against a file system provider.
package resolver

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

type Resolver struct {
	fs           fsprovider.FileSystem
	aliasPrefix  string
	aliasBase    string
	extensions   []string
	knownMissing map[string]string
}

func New(fs fsprovider.FileSystem, cfg *config.Config) *Resolver {
	knownMissing := make(map[string]string, len(cfg.KnownMissing))
	for specifier, replacement := range cfg.KnownMissing {
		knownMissing[specifier] = replacement
	}
	return &Resolver{
		fs:           fs,
		aliasPrefix:  cfg.Alias.Prefix,
		aliasBase:    cfg.Alias.Base,
		extensions:   append([]string(nil), cfg.ResolveExtensions...),
		knownMissing: knownMissing,
	}
}

// Shape reports which resolution rule applies to specifier. The denylist is
// consulted first so a known-missing entry wins over every other shape.
func (r *Resolver) Shape(specifier string) models.SpecifierShape {
	if _, ok := r.knownMissing[specifier]; ok {
		return models.ShapeKnownMissing
	}
	if specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return models.ShapeRelative
	}
	if r.aliasPrefix != "" && strings.HasPrefix(specifier, r.aliasPrefix) {
		return models.ShapeAliased
	}
	return models.ShapePackage
}

// Replacement returns the suggested substitute for a known-missing specifier.
func (r *Resolver) Replacement(specifier string) (string, bool) {
	replacement, ok := r.knownMissing[specifier]
	return replacement, ok
}

// Resolve fills in Resolvable, ResolutionError and Target on ref.
func (r *Resolver) Resolve(ctx context.Context, ref *models.ImportReference) {
	specifier := ref.ImportPath

	switch r.Shape(specifier) {
	case models.ShapeKnownMissing:
		ref.MarkUnresolved(models.KnownMissingMessage(specifier, r.knownMissing[specifier]))

	case models.ShapeRelative:
		base := path.Join(path.Dir(ref.SourceFile), specifier)
		if target, ok := r.probe(ctx, base); ok {
			ref.MarkResolved(target)
			return
		}
		ref.MarkUnresolved(fmt.Sprintf("cannot resolve relative module: %s", specifier))

	case models.ShapeAliased:
		base := path.Join(r.aliasBase, strings.TrimPrefix(specifier, r.aliasPrefix))
		if target, ok := r.probe(ctx, base); ok {
			ref.MarkResolved(target)
			return
		}
		ref.MarkUnresolved(fmt.Sprintf("cannot resolve aliased module: %s", specifier))

	default:
		// Packages are not checked against a manifest or node_modules.
		ref.MarkResolved("")
	}
}

// probe tries base as is, then base+ext, then base/index+ext. The first
// candidate that exists wins. A directory match still resolves, but its
// index file becomes the target when there is one so the module graph
// links file to file.
func (r *Resolver) probe(ctx context.Context, base string) (string, bool) {
	for _, candidate := range r.candidates(base) {
		info, ok := r.stat(ctx, candidate)
		if !ok {
			continue
		}
		if info.IsDir {
			if index, ok := r.indexOf(ctx, candidate); ok {
				return index, true
			}
		}
		return fsprovider.CleanRel(candidate), true
	}
	return "", false
}

func (r *Resolver) indexOf(ctx context.Context, dir string) (string, bool) {
	for _, ext := range r.extensions {
		candidate := path.Join(dir, "index"+ext)
		if info, ok := r.stat(ctx, candidate); ok && !info.IsDir {
			return fsprovider.CleanRel(candidate), true
		}
	}
	return "", false
}

func (r *Resolver) candidates(base string) []string {
	out := make([]string, 0, 1+2*len(r.extensions))
	out = append(out, base)
	for _, ext := range r.extensions {
		out = append(out, base+ext)
	}
	for _, ext := range r.extensions {
		out = append(out, path.Join(base, "index"+ext))
	}
	return out
}

// stat treats every probe error as "not there"; permission or I/O problems
// on one candidate never abort resolution.
func (r *Resolver) stat(ctx context.Context, rel string) (fsprovider.Info, bool) {
	info, err := r.fs.Stat(ctx, rel)
	if err != nil {
		logger.Debug("Probe %s: %v", rel, err)
		return fsprovider.Info{}, false
	}
	return info, true
}
