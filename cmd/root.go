package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/logger"
)

// ErrUnresolvedImports makes the process exit with status 1 without printing
// an extra error line; the command already reported the details.
var ErrUnresolvedImports = errors.New("unresolved imports found")

var rootCmd = &cobra.Command{
	Use:   "depcheck",
	Short: "Checks that every import in a TypeScript/JavaScript project resolves.",
	Long: `depcheck scans a TypeScript/JavaScript project, extracts every static import,
require binding and dynamic import, and reports the ones that point at files or
modules that do not exist. Use it before a build, in CI, or live while editing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	logfile    string
	verbose    bool
	noColor    bool
	configPath string
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrUnresolvedImports) {
			logger.Error("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <project>/"+config.FileName+")")
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env: %v", err)
	}

	logger.SetVerbose(verbose)
	logger.SetNoColor(noColor)

	if logfile != "" {
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logfile, err)
		}
		logger.AddWriterForAll(f)
		cobra.OnFinalize(func() { f.Close() })
	}

	logger.Debug("%s called", cmd.CommandPath())
	return nil
}

// openProject picks the file system for the optional path argument and loads
// the config that applies to it.
func openProject(args []string) (*config.Config, fsprovider.FileSystem, error) {
	source := "."
	if len(args) > 0 {
		source = args[0]
	}

	fsys, err := fsprovider.New(source)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig(fsys)
	if err != nil {
		return nil, nil, err
	}
	return cfg, fsys, nil
}

func loadConfig(fsys fsprovider.FileSystem) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if _, ok := fsys.(*fsprovider.Local); ok {
		return config.Load(fsys.Root())
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Load(filepath.Clean(wd))
}
