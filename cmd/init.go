package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/template_engine"
	"github.com/tristendillon/depcheck/core/version"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default " + config.FileName,
	Long:  `Creates a commented ` + config.FileName + ` with the default settings in the given directory (the current one by default).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		outputPath := filepath.Join(dir, config.FileName)

		engine := template_engine.NewTemplateEngine()
		data := template_engine.ConfigData{Version: version.Version, Config: config.Default()}
		if err := engine.GenerateFile(template_engine.ConfigTemplate, outputPath, data, force); err != nil {
			if errors.Is(err, template_engine.ErrOutputExists) {
				return fmt.Errorf("%w, use --force to overwrite", err)
			}
			return err
		}

		logger.Debug("Wrote %s", outputPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
}
