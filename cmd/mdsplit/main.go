package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/mdsplit/internal/app"
)

var version = "0.1.0"

func main() {
	var (
		verbose     bool
		outputDir   string
		configPath  string
		cacheDir    string
		cacheMaxAge time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "mdsplit",
		Short: "Split markdown documents into multiple files based on pages",
		Long: `mdsplit detects logical page boundaries in a markdown document,
read from a local file or a URL, and partitions the pages into a
configurable number of output fragments with an optional JSON manifest.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = time.RFC3339
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "./output", "Output directory for split files")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory for caching fetched URL content (empty disables)")
	rootCmd.PersistentFlags().DurationVar(&cacheMaxAge, "cache-max-age", 0, "Max age for cached URL content before refetch (0 accepts any)")

	base := func(args []string) app.Config {
		return app.Config{
			Sources:     args,
			OutputDir:   outputDir,
			CacheDir:    cacheDir,
			CacheMaxAge: cacheMaxAge,
			Verbose:     verbose,
		}
	}

	rootCmd.AddCommand(splitCmd(base, &configPath))
	rootCmd.AddCommand(analyzeCmd(base, &configPath))
	rootCmd.AddCommand(validateCmd(base, &configPath))

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("operation failed")
		os.Exit(1)
	}
}

// overlayConfigFile loads the optional config file and lets it supply
// values for any setting not given explicitly on the command line.
func overlayConfigFile(cmd *cobra.Command, cfg *app.Config, configPath string) error {
	if configPath == "" {
		return nil
	}
	fc, err := app.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	set := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) { set[f.Name] = true })
	app.ApplyFileConfig(cfg, fc, set)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

func splitCmd(base func([]string) app.Config, configPath *string) *cobra.Command {
	var (
		splits            int
		preserveStructure bool
		includeMetadata   bool
		pageMarker        string
		force             bool
		pdf               bool
	)

	cmd := &cobra.Command{
		Use:   "split SOURCE...",
		Short: "Split markdown sources into multiple parts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := base(args)
			cfg.Splits = splits
			cfg.PreserveStructure = preserveStructure
			cfg.IncludeMetadata = includeMetadata
			cfg.PageMarker = pageMarker
			cfg.Force = force
			cfg.WritePDF = pdf
			if err := overlayConfigFile(cmd, &cfg, *configPath); err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.RunSplit(context.Background())
		},
	}

	cmd.Flags().IntVarP(&splits, "splits", "s", 5, "Number of splits to create")
	cmd.Flags().BoolVar(&preserveStructure, "preserve-structure", true, "Insert page-range header and separators between pages")
	cmd.Flags().BoolVar(&includeMetadata, "include-metadata", true, "Write a JSON manifest describing the split")
	cmd.Flags().StringVar(&pageMarker, "page-marker", "", "Custom page break marker pattern")
	cmd.Flags().BoolVar(&force, "force", false, "Allow writing into a non-empty output directory")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Additionally render each split as a simple PDF")
	return cmd
}

func analyzeCmd(base func([]string) app.Config, configPath *string) *cobra.Command {
	var (
		pageMarker string
		jsonOutput string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze SOURCE...",
		Short: "Analyze markdown sources without splitting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := base(args)
			cfg.PageMarker = pageMarker
			if err := overlayConfigFile(cmd, &cfg, *configPath); err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.RunAnalyze(context.Background(), app.AnalyzeOptions{
				Detailed:   detailed,
				JSONOutput: jsonOutput,
			})
		},
	}

	cmd.Flags().StringVar(&pageMarker, "page-marker", "", "Custom page break marker pattern")
	cmd.Flags().StringVar(&jsonOutput, "json-output", "", "Write analysis results to a JSON file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show per-page detail and the heading outline")
	return cmd
}

func validateCmd(base func([]string) app.Config, configPath *string) *cobra.Command {
	var checkAccess bool

	cmd := &cobra.Command{
		Use:   "validate SOURCE...",
		Short: "Validate input sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := base(args)
			if err := overlayConfigFile(cmd, &cfg, *configPath); err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.RunValidate(context.Background(), checkAccess)
		},
	}

	cmd.Flags().BoolVar(&checkAccess, "check-access", false, "Fetch each source to confirm it is readable")
	return cmd
}
