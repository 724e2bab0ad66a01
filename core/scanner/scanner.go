package scanner

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/extractor"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/resolver"
	"github.com/tristendillon/depcheck/core/walker"
)

var (
	// ErrFilesystem matches every FilesystemError with errors.Is.
	ErrFilesystem   = errors.New("filesystem error")
	errNotDirectory = errors.New("not a directory")
)

// FilesystemError means the project root could not be used. It is the only
// condition that aborts a scan.
type FilesystemError struct {
	Root string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("cannot scan project root %s: %v", e.Root, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

type Scanner struct {
	FS       fsprovider.FileSystem
	Walker   walker.SourceWalker
	Resolver *resolver.Resolver
	workers  int
}

func New(fs fsprovider.FileSystem, cfg *config.Config) *Scanner {
	workers := cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		FS:       fs,
		Walker:   walker.NewSourceWalker(fs, cfg.Extensions, cfg.Ignore),
		Resolver: resolver.New(fs, cfg),
		workers:  workers,
	}
}

type fileResult struct {
	refs []models.ImportReference
	read bool
}

// Scan enumerates, extracts and resolves the whole project and returns a new
// report. Files are processed concurrently but the report always follows
// file order, then line order, then column order.
func (s *Scanner) Scan(ctx context.Context) (*models.ScanReport, error) {
	if !s.FS.Capable() {
		if sample, ok := s.FS.(fsprovider.SampleReporter); ok {
			logger.Debug("File system not available, returning sample report")
			return sample.SampleReport(), nil
		}
		logger.Debug("File system not available, returning empty report")
		return models.NewScanReport(), nil
	}

	root := s.FS.Root()
	info, err := s.FS.Stat(ctx, ".")
	if err != nil {
		return nil, &FilesystemError{Root: root, Err: err}
	}
	if !info.IsDir {
		return nil, &FilesystemError{Root: root, Err: errNotDirectory}
	}

	files, err := s.Walker.Walk(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FilesystemError{Root: root, Err: err}
	}

	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scanFile(gctx, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := models.NewScanReport()
	for _, result := range results {
		if !result.read {
			continue
		}
		report.ScannedFileCount++
		for _, ref := range result.refs {
			report.Add(ref)
		}
	}

	logger.Debug("Scanned %d files, %d imports, %d unresolved",
		report.ScannedFileCount, report.TotalImportCount, report.UnresolvedCount())
	return report, nil
}

func (s *Scanner) scanFile(ctx context.Context, file string) fileResult {
	content, err := s.FS.ReadFile(ctx, file)
	if err != nil {
		logger.Warn("Skipping %s: %v", file, err)
		return fileResult{}
	}

	refs := extractor.ExtractImports(file, content)
	for i := range refs {
		s.Resolver.Resolve(ctx, &refs[i])
	}
	return fileResult{refs: refs, read: true}
}
