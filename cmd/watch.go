package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/report"
	"github.com/tristendillon/depcheck/core/scanner"
	"github.com/tristendillon/depcheck/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-check imports whenever a source file changes",
	Long: `Watches the project for changes and rescans after each burst of edits.
Saves that leave a file's content unchanged do not trigger a rescan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, fsys, err := openProject(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sc := scanner.New(fsys, cfg)
		printer := report.NewPrinter(out, sc.Resolver)

		return runWatch(cmd.Context(), cfg, fsys, func(rep *models.ScanReport) {
			printWatchLine(out, rep)
			if rep.HasUnresolved() {
				printer.Unresolved(rep, report.PrebuildLimit)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch scans once, then again after every content change, handing each
// report to onReport. It blocks until ctx is done.
func runWatch(ctx context.Context, cfg *config.Config, fsys fsprovider.FileSystem, onReport func(*models.ScanReport)) error {
	if _, ok := fsys.(*fsprovider.Local); !ok {
		return fmt.Errorf("watching needs a local directory, got %s", fsys.Root())
	}

	sc := scanner.New(fsys, cfg)
	rep, err := sc.Scan(ctx)
	if err != nil {
		return err
	}
	onReport(rep)

	files, err := sc.Walker.Walk(ctx)
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(fsys, cfg.Ignore, cfg.Extensions, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	fw.Warm(ctx, files)

	fw.FileWatcher.AddOnStartFunc(func() error {
		logger.Info("Watching %s for changes", fsys.Root())
		return nil
	})
	fw.FileWatcher.AddOnChangeFunc(func(changed []string) error {
		logger.Debug("Rescanning after changes to %v", changed)
		rep, err := sc.Scan(ctx)
		if err != nil {
			return err
		}
		onReport(rep)
		if logger.IsVerbose() {
			stats := fw.Cache.GetStats()
			logger.Debug("Content cache: %d files, %.0f%% of events unchanged",
				stats.TotalFiles, stats.HitRate)
		}
		return nil
	})
	fw.FileWatcher.AddOnCloseFunc(func() error {
		logger.Info("Stopped watching %s", fsys.Root())
		return nil
	})

	return fw.Watch(ctx)
}

func printWatchLine(out io.Writer, rep *models.ScanReport) {
	status := color.New(color.FgGreen).Sprint("ok")
	if rep.HasUnresolved() {
		status = color.New(color.FgRed).Sprintf("%d unresolved", rep.UnresolvedCount())
	}
	fmt.Fprintf(out, "[%s] %s files, %s imports, %s\n",
		time.Now().Format("15:04:05"),
		humanize.Comma(int64(rep.ScannedFileCount)),
		humanize.Comma(int64(rep.TotalImportCount)),
		status)
}
