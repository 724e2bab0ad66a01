package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/graph"
)

var (
	dependentsOf string
	graphOrder   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Inspect the local module graph",
	Long: `Builds the graph of imports between project files from a scan and prints
the import cycles in it. With --dependents FILE it instead lists every file
that imports FILE, directly or through other files. With --order it lists
the files so that each one comes after everything it imports.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, _, _, err := scanProject(cmd.Context(), args)
		if err != nil {
			return err
		}

		g := graph.FromReport(rep)
		out := cmd.OutOrStdout()

		if dependentsOf != "" {
			target := fsprovider.CleanRel(dependentsOf)
			if _, ok := g.GetNode(target); !ok {
				return fmt.Errorf("%s is not part of the module graph", target)
			}
			dependents := g.GetDependents(target)
			fmt.Fprintf(out, "%s is imported by %s %s\n", target,
				humanize.Comma(int64(len(dependents))), plural(len(dependents), "file", "files"))
			for _, dependent := range dependents {
				fmt.Fprintf(out, "  %s\n", dependent)
			}
			return nil
		}

		if graphOrder {
			order, err := g.TopologicalOrder()
			if errors.Is(err, graph.ErrCyclic) {
				return fmt.Errorf("%w, run depcheck graph to list the cycles", err)
			}
			if err != nil {
				return err
			}
			for _, file := range order {
				fmt.Fprintln(out, file)
			}
			return nil
		}

		cycles := g.DetectCycles()
		fmt.Fprintf(out, "%s files in the module graph, %s import %s\n",
			humanize.Comma(int64(g.Len())),
			humanize.Comma(int64(len(cycles))), plural(len(cycles), "cycle", "cycles"))
		for _, cycle := range cycles {
			loop := append(append([]string(nil), cycle...), cycle[0])
			fmt.Fprintf(out, "  %s\n", color.YellowString(strings.Join(loop, " -> ")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().BoolVar(&graphOrder, "order", false, "Print the files in import order, dependencies first")
	graphCmd.Flags().StringVar(&dependentsOf, "dependents", "", "List the files that transitively import this project-relative file")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
