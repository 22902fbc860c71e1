package parse

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mdsplit/internal/document"
)

// ErrNoPages is returned when extraction produces zero pages.
var ErrNoPages = errors.New("no valid pages found in document")

// titleWindow is how many leading lines of a page are scanned for a heading.
const titleWindow = 10

// mergeMaxLines is the largest page, in original lines, that the merge pass
// will fold into its predecessor.
const mergeMaxLines = 10

var titleRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Parser slices a markdown document into pages using a prioritized cascade
// of boundary rules. A Parser is immutable after New and may be reused
// across documents.
type Parser struct {
	rules []rule
	// markerRules is the length of the leading explicit-marker family in
	// rules; everything after it is a heuristic fallback.
	markerRules int
}

// New builds a Parser with the default rule cascade. A non-empty
// customMarker is compiled as a whole-line pattern and takes priority over
// every default rule, joining the explicit-marker family.
func New(customMarker string) (*Parser, error) {
	rules := defaultRules()
	markers := markerRuleCount
	if customMarker != "" {
		custom, err := compileCustomRule(customMarker)
		if err != nil {
			return nil, err
		}
		rules = append([]rule{custom}, rules...)
		markers++
	}
	return &Parser{rules: rules, markerRules: markers}, nil
}

// ParseDocument detects page boundaries in content, extracts and merges
// pages, and assembles the final Document. The metadata's PageBreaks field
// is populated with the raw boundary indices found before extraction.
func (p *Parser) ParseDocument(content string, meta document.Metadata) (*document.Document, error) {
	log.Info().Str("source", meta.Filename).Msg("parsing markdown document")

	lines := splitLines(content)
	breaks := p.findPageBreaks(lines)
	meta.PageBreaks = breaks

	pages, err := p.extractPages(lines, breaks)
	if err != nil {
		return nil, err
	}
	pages = mergeSmallPages(pages)

	log.Debug().Int("pages", len(pages)).Str("source", meta.Filename).Msg("document parsed")

	return &document.Document{
		Source:     meta.Filename,
		TotalPages: len(pages),
		Pages:      pages,
		Metadata:   meta,
	}, nil
}

// findPageBreaks returns the ordered boundary line indices. The scan is
// two-phase: when any line matches the explicit page-marker family, those
// matches are authoritative and the heuristic fallbacks are never
// consulted for this document. Only a document with no explicit markers at
// all is scanned with the fallback rules.
func (p *Parser) findPageBreaks(lines []string) []int {
	breaks := []int{0}

	foundMarkers := false
	for idx := range lines {
		for _, r := range p.rules[:p.markerRules] {
			if r.matchAt(lines, idx) {
				foundMarkers = true
				if breaks[len(breaks)-1] != idx {
					breaks = append(breaks, idx)
				}
				break
			}
		}
	}

	if !foundMarkers {
		for idx := range lines {
			for _, r := range p.rules[p.markerRules:] {
				if r.matchAt(lines, idx) {
					if breaks[len(breaks)-1] != idx {
						breaks = append(breaks, idx)
					}
					break
				}
			}
		}
	}

	if breaks[len(breaks)-1] != len(lines) {
		breaks = append(breaks, len(lines))
	}
	return breaks
}

// extractPages slices lines between consecutive boundaries and drops empty
// ranges. Page numbers assigned here are provisional until the merge pass
// renumbers the survivors.
func (p *Parser) extractPages(lines []string, breaks []int) ([]document.Page, error) {
	var pages []document.Page

	for i := 0; i+1 < len(breaks); i++ {
		start := breaks[i]
		end := breaks[i+1]

		if start >= len(lines) {
			break
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end {
			continue
		}

		pageLines := lines[start:end]
		pages = append(pages, document.Page{
			Number:    len(pages) + 1,
			Content:   strings.Join(pageLines, "\n"),
			Title:     extractTitle(pageLines),
			StartLine: start,
			EndLine:   end,
		})
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

// mergeSmallPages folds spuriously small pages into their predecessor. A
// page is merged when it spans at most mergeMaxLines original lines and its
// title does not look like a page marker. The first page has no predecessor
// and is never merged away. Surviving pages are renumbered from 1.
func mergeSmallPages(pages []document.Page) []document.Page {
	merged := make([]document.Page, 0, len(pages))

	for _, page := range pages {
		if page.LineCount() <= mergeMaxLines && !isPageMarkerTitle(page.Title) && len(merged) > 0 {
			prev := &merged[len(merged)-1]
			prev.Content += "\n\n" + page.Content
			prev.EndLine = page.EndLine
			continue
		}
		merged = append(merged, page)
	}

	for i := range merged {
		merged[i].Number = i + 1
	}
	return merged
}

// extractTitle returns the text of the first markdown heading (any level 1
// through 6) within the page's leading lines, or empty when none is found.
func extractTitle(lines []string) string {
	limit := len(lines)
	if limit > titleWindow {
		limit = titleWindow
	}
	for _, line := range lines[:limit] {
		if m := titleRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[2])
		}
	}
	return ""
}

// isPageMarkerTitle reports whether a title looks like an explicit page
// marker: it contains "page " case-insensitively and at least one digit.
func isPageMarkerTitle(title string) bool {
	if title == "" {
		return false
	}
	if !strings.Contains(strings.ToLower(title), "page ") {
		return false
	}
	return strings.ContainsFunc(title, unicode.IsDigit)
}

// splitLines splits content into lines the way the rest of the pipeline
// counts them: a trailing newline does not produce a final empty line, and
// CRLF line endings are accepted.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
