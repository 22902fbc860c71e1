package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mdsplit/internal/analyze"
	"github.com/hyperifyio/mdsplit/internal/cache"
	"github.com/hyperifyio/mdsplit/internal/document"
	"github.com/hyperifyio/mdsplit/internal/fetch"
	"github.com/hyperifyio/mdsplit/internal/parse"
	"github.com/hyperifyio/mdsplit/internal/splitter"
)

const userAgent = "mdsplit/1.0 (+https://github.com/hyperifyio/mdsplit)"

// App wires the content source, the parsing core, and the splitting core
// into the command pipelines.
type App struct {
	cfg     Config
	fetcher *fetch.Fetcher
	parser  *parse.Parser
}

// New builds the pipeline. An invalid custom page marker pattern is
// reported here, before any source is touched.
func New(cfg Config) (*App, error) {
	parser, err := parse.New(cfg.PageMarker)
	if err != nil {
		return nil, err
	}
	fetcher := &fetch.Fetcher{UserAgent: userAgent, Timeout: 30 * time.Second}
	if cfg.CacheDir != "" {
		fetcher.Cache = &cache.Cache{Dir: cfg.CacheDir}
		fetcher.CacheMaxAge = cfg.CacheMaxAge
	}
	return &App{cfg: cfg, parser: parser, fetcher: fetcher}, nil
}

// RunSplit fetches, parses, and splits each source in order. The first
// failure aborts the remaining sources.
func (a *App) RunSplit(ctx context.Context) error {
	log.Info().Int("sources", len(a.cfg.Sources)).Msg("starting split operation")

	sources, err := fetch.ValidateSources(a.cfg.Sources)
	if err != nil {
		return err
	}

	if err := a.checkOutputDir(); err != nil {
		return err
	}

	splitCfg := splitter.Config{
		Splits:            a.cfg.Splits,
		OutputDir:         a.cfg.OutputDir,
		PreserveStructure: a.cfg.PreserveStructure,
		IncludeMetadata:   a.cfg.IncludeMetadata,
		CustomPageMarker:  a.cfg.PageMarker,
		WritePDF:          a.cfg.WritePDF,
	}

	for i, source := range sources {
		log.Info().Int("index", i+1).Int("total", len(sources)).Str("source", source).Msg("processing source")

		fetched, err := a.fetcher.Fetch(ctx, source)
		if err != nil {
			return err
		}

		doc, err := a.parser.ParseDocument(fetched.Content, fetched.Meta)
		if err != nil {
			return err
		}

		plan, err := splitter.PlanSplits(doc.TotalPages, a.cfg.Splits)
		if err != nil {
			return err
		}
		log.Info().
			Str("source", doc.Source).
			Int("pages", doc.TotalPages).
			Int("splits", a.cfg.Splits).
			Int("pagesPerSplit", plan.PagesPerSplit).
			Msg("split plan computed")
		for idx, rng := range plan.Ranges {
			log.Debug().Int("split", idx+1).Int("first", rng.Start).Int("last", rng.End).Msg("planned range")
		}

		result, err := splitter.Split(doc, splitCfg)
		if err != nil {
			return err
		}

		for _, file := range result.OutputFiles {
			log.Info().Str("file", file).Msg("split artifact")
		}
		if result.MetadataFile != "" {
			log.Info().Str("file", result.MetadataFile).Msg("metadata artifact")
		}
	}

	log.Info().Msg("split operation completed")
	return nil
}

// checkOutputDir refuses to write into an existing non-empty output
// directory unless Force is set.
func (a *App) checkOutputDir() error {
	if a.cfg.Force {
		return nil
	}
	entries, err := os.ReadDir(a.cfg.OutputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read output directory %s: %w", a.cfg.OutputDir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %s is not empty (use --force to overwrite)", a.cfg.OutputDir)
	}
	return nil
}

// AnalyzeOptions controls the analyze pipeline's reporting.
type AnalyzeOptions struct {
	Detailed   bool
	JSONOutput string
}

// analysisReport is the per-source JSON export shape.
type analysisReport struct {
	Document *document.Document `json:"document"`
	Stats    parse.Stats        `json:"stats"`
}

// RunAnalyze parses each source and reports its page structure without
// writing any splits.
func (a *App) RunAnalyze(ctx context.Context, opts AnalyzeOptions) error {
	log.Info().Int("sources", len(a.cfg.Sources)).Msg("starting analysis")

	sources, err := fetch.ValidateSources(a.cfg.Sources)
	if err != nil {
		return err
	}

	reports := make(map[string]analysisReport, len(sources))

	for _, source := range sources {
		fetched, err := a.fetcher.Fetch(ctx, source)
		if err != nil {
			return err
		}
		doc, err := a.parser.ParseDocument(fetched.Content, fetched.Meta)
		if err != nil {
			return err
		}
		stats := parse.CollectStats(doc)

		fmt.Printf("\n=== Analysis for %q ===\n", doc.Source)
		fmt.Printf("Source type: %s\n", doc.Metadata.SourceKind)
		fmt.Printf("Total pages: %d\n", doc.TotalPages)
		fmt.Printf("Total lines: %d\n", doc.Metadata.TotalLines)
		fmt.Printf("Page breaks found: %d\n", stats.PageBreaks)
		fmt.Printf("Average lines per page: %.1f\n", stats.AvgLinesPerPage)
		fmt.Printf("Pages with titles: %d\n", stats.PagesWithTitles)

		if opts.Detailed {
			fmt.Println("\nPage details:")
			for _, page := range doc.Pages {
				titleInfo := ""
				if page.Title != "" {
					titleInfo = fmt.Sprintf(" (%s)", page.Title)
				}
				fmt.Printf("  Page %d: lines %d-%d (%d lines)%s\n",
					page.Number, page.StartLine+1, page.EndLine, page.LineCount(), titleInfo)
			}

			if outline := analyze.Outline(fetched.Content); len(outline) > 0 {
				fmt.Println("\nDocument outline:")
				for _, h := range outline {
					fmt.Printf("  %*sH%d %s\n", (h.Level-1)*2, "", h.Level, h.Text)
				}
			}
		}

		fmt.Println("\nPotential split scenarios:")
		for _, splits := range []int{2, 3, 5, 10} {
			if splits > doc.TotalPages {
				continue
			}
			plan, err := splitter.PlanSplits(doc.TotalPages, splits)
			if err != nil {
				return err
			}
			fmt.Printf("  %d splits: ~%d pages per split\n", splits, plan.PagesPerSplit)
			if opts.Detailed {
				for idx, rng := range plan.Ranges {
					fmt.Printf("    Split %d: pages %d-%d\n", idx+1, rng.Start, rng.End)
				}
			}
		}

		reports[source] = analysisReport{Document: doc, Stats: stats}
	}

	if opts.JSONOutput != "" {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal analysis: %w", err)
		}
		if err := os.WriteFile(opts.JSONOutput, data, 0o644); err != nil {
			return fmt.Errorf("write analysis file %s: %w", opts.JSONOutput, err)
		}
		log.Info().Str("path", opts.JSONOutput).Msg("analysis written")
	}

	return nil
}

// RunValidate checks each source and optionally fetches it to prove it is
// readable. Unlike split and analyze, validation inspects every source
// before failing so the summary covers the whole batch.
func (a *App) RunValidate(ctx context.Context, checkAccess bool) error {
	log.Info().Int("sources", len(a.cfg.Sources)).Msg("validating sources")

	var invalid []string

	for _, source := range a.cfg.Sources {
		if _, err := fetch.ValidateSources([]string{source}); err != nil {
			log.Error().Str("source", source).Err(err).Msg("invalid source")
			invalid = append(invalid, source)
			continue
		}
		log.Info().Str("source", source).Msg("valid source")

		if checkAccess {
			fetched, err := a.fetcher.Fetch(ctx, source)
			if err != nil {
				log.Error().Str("source", source).Err(err).Msg("cannot access content")
				invalid = append(invalid, source)
				continue
			}
			log.Info().Str("source", source).Int("lines", fetched.Meta.TotalLines).Msg("accessible")
		}
	}

	fmt.Printf("\n=== Validation summary ===\n")
	fmt.Printf("Valid sources: %d/%d\n", len(a.cfg.Sources)-len(invalid), len(a.cfg.Sources))

	if len(invalid) > 0 {
		for _, source := range invalid {
			fmt.Printf("  invalid: %s\n", source)
		}
		return fmt.Errorf("%d sources failed validation", len(invalid))
	}

	fmt.Println("All sources are valid.")
	return nil
}
