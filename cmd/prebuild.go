package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/report"
)

var ciMode bool

var prebuildCmd = &cobra.Command{
	Use:   "prebuild [path]",
	Short: "Gate a build on unresolved imports",
	Long: `Runs the same scan as check, intended as a prebuild hook. In CI (the CI
environment variable is set, or --ci) any unresolved import fails the build.
Interactively it asks whether to continue anyway.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, sc, elapsed, err := scanProject(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printer := report.NewPrinter(out, sc.Resolver)
		printer.Summary(rep, elapsed)
		printer.Status(rep)
		if !rep.HasUnresolved() {
			return nil
		}
		printer.Unresolved(rep, report.PrebuildLimit)
		fmt.Fprintln(out)

		if ciMode || isCI() {
			fmt.Fprintln(out, "Build blocked: fix the unresolved imports above.")
			return ErrUnresolvedImports
		}

		ok, err := confirm(cmd.InOrStdin(), out, "Continue with build anyway? (y/N) ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Build cancelled.")
			return ErrUnresolvedImports
		}

		logger.Warn("Continuing build with %d unresolved imports", rep.UnresolvedCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prebuildCmd)

	prebuildCmd.Flags().BoolVar(&ciMode, "ci", false, "Fail without prompting, as in CI")
}

// isCI treats any CI value other than empty, "0" or "false" as set.
func isCI() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CI")))
	return v != "" && v != "0" && v != "false"
}

// confirm asks a yes/no question. Anything but y or yes, including end of
// input, is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
