package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/report"
	"github.com/tristendillon/depcheck/core/scanner"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Scan the project and fail when an import does not resolve",
	Long: `Scans the project (the current directory by default), prints a summary and
lists every unresolved import with hints on how to fix it. Exits with status 1
when anything is unresolved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(checkFormat)
		if err != nil {
			return err
		}

		rep, sc, elapsed, err := scanProject(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case report.FormatJSON:
			err = report.WriteJSON(out, rep)
		case report.FormatYAML:
			err = report.WriteYAML(out, rep)
		default:
			report.NewPrinter(out, sc.Resolver).Text(rep, report.TextOptions{
				Elapsed: elapsed,
				Hints:   true,
			})
		}
		if err != nil {
			return err
		}

		if rep.HasUnresolved() {
			return ErrUnresolvedImports
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format: text, json or yaml")
}

func scanProject(ctx context.Context, args []string) (*models.ScanReport, *scanner.Scanner, time.Duration, error) {
	cfg, fsys, err := openProject(args)
	if err != nil {
		return nil, nil, 0, err
	}

	sc := scanner.New(fsys, cfg)
	start := time.Now()
	rep, err := sc.Scan(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	elapsed := time.Since(start)

	logger.Debug("Scan of %s took %s", fsys.Root(), elapsed)
	return rep, sc, elapsed, nil
}
