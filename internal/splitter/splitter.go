package splitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mdsplit/internal/document"
)

// Config is the user's intent for one partition run over a document.
type Config struct {
	Splits            int
	OutputDir         string
	PreserveStructure bool
	IncludeMetadata   bool
	CustomPageMarker  string
	WritePDF          bool
}

// Result describes the artifacts produced by one split run. SplitCount may
// be less than the requested split count when ceiling division exhausts the
// pages early.
type Result struct {
	SplitCount    int
	PagesPerSplit int
	ActualPages   int
	OutputFiles   []string
	PDFFiles      []string
	MetadataFile  string
}

// Split partitions doc's pages per cfg and writes one markdown artifact per
// split, plus an optional JSON manifest and optional PDF renditions.
func Split(doc *document.Document, cfg Config) (*Result, error) {
	log.Info().Str("source", doc.Source).Int("splits", cfg.Splits).Msg("splitting document")

	plan, err := PlanSplits(doc.TotalPages, cfg.Splits)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", cfg.OutputDir, err)
	}

	res := &Result{PagesPerSplit: plan.PagesPerSplit}

	for i, rng := range plan.Ranges {
		pages := doc.Pages[rng.Start-1 : rng.End]
		res.ActualPages += len(pages)

		path := outputFilename(cfg.OutputDir, doc.Source, i+1, cfg.Splits)
		if err := writeSplitFile(path, pages, cfg.PreserveStructure); err != nil {
			return nil, err
		}
		res.OutputFiles = append(res.OutputFiles, path)

		if cfg.WritePDF {
			pdfPath := strings.TrimSuffix(path, ".md") + ".pdf"
			if err := writeSplitPDF(pdfPath, pages); err != nil {
				return nil, err
			}
			res.PDFFiles = append(res.PDFFiles, pdfPath)
		}

		log.Debug().
			Int("split", i+1).
			Int("pages", len(pages)).
			Int("first", rng.Start).
			Int("last", rng.End).
			Msg("split file written")
	}
	res.SplitCount = len(res.OutputFiles)

	if cfg.IncludeMetadata {
		metaPath := metadataFilename(cfg.OutputDir, doc.Source)
		if err := writeManifest(metaPath, doc, res.OutputFiles); err != nil {
			return nil, err
		}
		res.MetadataFile = metaPath
	}

	log.Info().Int("files", res.SplitCount).Int("pages", res.ActualPages).Msg("document split complete")
	return res, nil
}

// sourceStem strips the directory and last extension from a source name.
func sourceStem(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return "document"
	}
	return stem
}

// outputFilename renders {stem}_split_{NNN}_of_{M}.md with the split number
// zero-padded to the decimal width of the total split count.
func outputFilename(outputDir, source string, splitNumber, totalSplits int) string {
	width := len(strconv.Itoa(totalSplits))
	name := fmt.Sprintf("%s_split_%0*d_of_%d.md", sourceStem(source), width, splitNumber, totalSplits)
	return filepath.Join(outputDir, name)
}

func metadataFilename(outputDir, source string) string {
	return filepath.Join(outputDir, sourceStem(source)+"_metadata.json")
}

// writeSplitFile concatenates the page contents into one artifact. When
// preserveStructure is set, an HTML comment header states the covered page
// range and consecutive pages are joined with a horizontal-rule separator;
// otherwise pages are concatenated with no separator at all.
func writeSplitFile(path string, pages []document.Page, preserveStructure bool) error {
	var b strings.Builder

	if preserveStructure && len(pages) > 0 {
		fmt.Fprintf(&b, "<!-- Split containing pages %d to %d -->\n\n",
			pages[0].Number, pages[len(pages)-1].Number)
	}

	for i, page := range pages {
		if i > 0 && preserveStructure {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(page.Content)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write split file %s: %w", path, err)
	}
	return nil
}

type manifestSplit struct {
	SplitNumber int    `json:"split_number"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
}

type manifest struct {
	Source           string            `json:"source"`
	TotalPages       int               `json:"total_pages"`
	TotalSplits      int               `json:"total_splits"`
	SplitFiles       []string          `json:"split_files"`
	DocumentMetadata document.Metadata `json:"document_metadata"`
	SplitInfo        []manifestSplit   `json:"split_info"`
}

// writeManifest emits the JSON sidecar describing how the document was
// partitioned.
func writeManifest(path string, doc *document.Document, outputFiles []string) error {
	m := manifest{
		Source:           doc.Source,
		TotalPages:       doc.TotalPages,
		TotalSplits:      len(outputFiles),
		SplitFiles:       make([]string, 0, len(outputFiles)),
		DocumentMetadata: doc.Metadata,
		SplitInfo:        make([]manifestSplit, 0, len(outputFiles)),
	}
	for i, file := range outputFiles {
		m.SplitFiles = append(m.SplitFiles, filepath.Base(file))
		m.SplitInfo = append(m.SplitInfo, manifestSplit{
			SplitNumber: i + 1,
			Filename:    filepath.Base(file),
			Path:        file,
		})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata file %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("manifest written")
	return nil
}
