package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kination/incite/internal/compiler"
	"github.com/kination/incite/internal/config"
	"github.com/kination/incite/internal/ctxlog"
	"github.com/kination/incite/internal/logger"
)

var (
	configFile  string
	sourcesPath string
	outputDir   string
	format      string
)

var rootCmd = &cobra.Command{
	Use:   "incite",
	Short: "Incite manifest compiler - Collect task namespaces from task programs",
	Long: `Incite compiles the task namespaces declared by task programs into
TaskNamespace manifests.

Each program is run with --manifest, and the document it prints is stored
in the output directory in the configured format.`,
	SilenceUsage: true,
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile task programs into TaskNamespace manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if format == "" {
			format = cfg.ManifestFormat
		}

		log := logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		ctx := ctxlog.WithLogger(cmd.Context(), log)

		sources, err := compiler.LoadSources(sourcesPath)
		if err != nil {
			return err
		}

		c := &compiler.Compiler{Format: format}
		written, err := c.Compile(ctx, sources, outputDir)
		if err != nil {
			return fmt.Errorf("compilation failed: %w", err)
		}

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of incite",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "incite v0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the incite configuration file")

	compileCmd.Flags().StringVarP(&sourcesPath, "sources", "s", "sources.yaml", "Path to the list of task program directories")
	compileCmd.Flags().StringVarP(&outputDir, "out", "o", "dist", "Directory to save generated manifests")
	compileCmd.Flags().StringVarP(&format, "format", "f", "", "Manifest format (yaml or json)")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
