package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/mdsplit/internal/document"
)

func testMeta(filename string, content string) document.Metadata {
	return document.Metadata{
		Filename:   filename,
		SourceKind: document.SourceLocalFile,
		CreatedAt:  "2024-01-01T00:00:00Z",
		TotalLines: len(splitLines(content)),
		PageBreaks: []int{},
	}
}

func mustParser(t *testing.T, marker string) *Parser {
	t.Helper()
	p, err := New(marker)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestFindPageBreaks_ExplicitMarkersSuppressFallbacks(t *testing.T) {
	// One explicit page marker plus many unrelated headings: the marker
	// family is authoritative and the headings contribute no boundaries.
	var b strings.Builder
	b.WriteString("intro text\n")
	for i := 0; i < 10; i++ {
		b.WriteString("## Section heading\nbody\n")
	}
	b.WriteString("# Page 2\n")
	b.WriteString("tail\n")

	p := mustParser(t, "")
	lines := splitLines(b.String())
	breaks := p.findPageBreaks(lines)

	if len(breaks) != 3 {
		t.Fatalf("breaks: got %v, want [0, markerLine, len]", breaks)
	}
	if breaks[0] != 0 || breaks[2] != len(lines) {
		t.Fatalf("breaks endpoints: got %v", breaks)
	}
	if lines[breaks[1]] != "# Page 2" {
		t.Fatalf("middle boundary at %d is %q, want the page marker line", breaks[1], lines[breaks[1]])
	}
}

func TestFindPageBreaks_FallbackUsesRulesAndHeadings(t *testing.T) {
	p := mustParser(t, "")
	lines := splitLines("# A\n\nx\n\n---\n\ny")

	breaks := p.findPageBreaks(lines)
	want := []int{0, 4, 7}
	if len(breaks) != len(want) {
		t.Fatalf("breaks: got %v, want %v", breaks, want)
	}
	for i := range want {
		if breaks[i] != want[i] {
			t.Fatalf("breaks: got %v, want %v", breaks, want)
		}
	}

	pages, err := p.extractPages(lines, breaks)
	if err != nil {
		t.Fatalf("extractPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages: got %d, want 2", len(pages))
	}
}

func TestFindPageBreaks_MarkerVariants(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"h1 marker", "# Page 12"},
		{"h2 marker", "## page 3"},
		{"bare line", "Page 7"},
		{"parenthesized", "(Page 7)"},
		{"case insensitive", "PAGE 9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParser(t, "")
			content := "first line\nbody\n" + tc.line + "\nmore body\n"
			lines := splitLines(content)
			breaks := p.findPageBreaks(lines)
			if len(breaks) != 3 || breaks[1] != 2 {
				t.Fatalf("breaks for %q: got %v, want [0 2 4]", tc.line, breaks)
			}
		})
	}
}

func TestFindPageBreaks_SeparatorThenPageHeading(t *testing.T) {
	p := mustParser(t, "")
	lines := splitLines("body\nbody\n---\n# Page 68\ncontent\n")

	breaks := p.findPageBreaks(lines)
	// Both the separator line and the heading line match explicit rules;
	// consecutive indices are distinct so both survive.
	want := []int{0, 2, 3, 5}
	if len(breaks) != len(want) {
		t.Fatalf("breaks: got %v, want %v", breaks, want)
	}
	for i := range want {
		if breaks[i] != want[i] {
			t.Fatalf("breaks: got %v, want %v", breaks, want)
		}
	}
}

func TestFindPageBreaks_FallbackVariants(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"horizontal rule", "---"},
		{"long rule", "----------"},
		{"html comment", "<!-- pagebreak -->"},
		{"html comment spaced", "<!-- page break -->"},
		{"latex pagebreak", `\pagebreak`},
		{"latex newpage", `  \newpage`},
		{"h2 heading", "## Anything"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustParser(t, "")
			content := "plain text\nbody\n" + tc.line + "\nmore body\n"
			lines := splitLines(content)
			breaks := p.findPageBreaks(lines)
			if len(breaks) != 3 || breaks[1] != 2 {
				t.Fatalf("breaks for %q: got %v, want [0 2 4]", tc.line, breaks)
			}
		})
	}
}

func TestFindPageBreaks_H3NotABoundary(t *testing.T) {
	p := mustParser(t, "")
	lines := splitLines("text\n### minor heading\ntext\n")
	breaks := p.findPageBreaks(lines)
	if len(breaks) != 2 {
		t.Fatalf("H3 should not be a boundary, got breaks %v", breaks)
	}
}

func TestCustomMarker_TakesPriority(t *testing.T) {
	p := mustParser(t, "<<<BREAK>>>")
	content := "start\n<<<BREAK>>>\nmiddle\n## heading\nend\n"
	lines := splitLines(content)

	breaks := p.findPageBreaks(lines)
	// The custom marker joins the explicit family, so the heading fallback
	// is ignored for the whole document.
	if len(breaks) != 3 || breaks[1] != 1 {
		t.Fatalf("breaks: got %v, want [0 1 5]", breaks)
	}
}

func TestNew_InvalidCustomMarker(t *testing.T) {
	if _, err := New("([unclosed"); err == nil {
		t.Fatalf("expected error for invalid custom marker pattern")
	}
}

func TestParseDocument_NoPages(t *testing.T) {
	p := mustParser(t, "")
	if _, err := p.ParseDocument("", testMeta("empty.md", "")); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestParseDocument_PopulatesMetadataAndNumbers(t *testing.T) {
	content := "# Page 1\n" + strings.Repeat("line\n", 15) + "# Page 2\n" + strings.Repeat("line\n", 15)
	p := mustParser(t, "")

	doc, err := p.ParseDocument(content, testMeta("doc.md", content))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.TotalPages != 2 || len(doc.Pages) != 2 {
		t.Fatalf("pages: got %d/%d, want 2", doc.TotalPages, len(doc.Pages))
	}
	if len(doc.Metadata.PageBreaks) == 0 {
		t.Fatalf("metadata page breaks not populated")
	}
	for i, page := range doc.Pages {
		if page.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, page.Number)
		}
		if page.StartLine >= page.EndLine {
			t.Fatalf("page %d has empty range [%d,%d)", i, page.StartLine, page.EndLine)
		}
	}
	if doc.Pages[0].Title != "Page 1" {
		t.Fatalf("title: got %q", doc.Pages[0].Title)
	}
}

func TestMergeSmallPages_MiddlePageAbsorbed(t *testing.T) {
	pages := []document.Page{
		{Number: 1, Content: strings.Repeat("a\n", 19) + "a", StartLine: 0, EndLine: 20},
		{Number: 2, Content: "b\nb\nb", StartLine: 20, EndLine: 23},
		{Number: 3, Content: strings.Repeat("c\n", 19) + "c", StartLine: 23, EndLine: 43},
	}

	merged := mergeSmallPages(pages)
	if len(merged) != 2 {
		t.Fatalf("merged: got %d pages, want 2", len(merged))
	}
	if merged[0].Number != 1 || merged[1].Number != 2 {
		t.Fatalf("renumbering: got %d, %d", merged[0].Number, merged[1].Number)
	}
	if merged[0].EndLine != 23 {
		t.Fatalf("predecessor EndLine: got %d, want 23", merged[0].EndLine)
	}
	if !strings.HasSuffix(merged[0].Content, "\n\nb\nb\nb") {
		t.Fatalf("content not joined with blank line: %q", merged[0].Content[len(merged[0].Content)-12:])
	}
	if merged[1].StartLine != 23 {
		t.Fatalf("third page start: got %d", merged[1].StartLine)
	}
}

func TestMergeSmallPages_PageMarkerTitleKept(t *testing.T) {
	pages := []document.Page{
		{Number: 1, Content: strings.Repeat("a\n", 20), StartLine: 0, EndLine: 20},
		{Number: 2, Content: "# Page 3\nstub", Title: "Page 3", StartLine: 20, EndLine: 22},
	}

	merged := mergeSmallPages(pages)
	if len(merged) != 2 {
		t.Fatalf("page with a marker title must not be merged, got %d pages", len(merged))
	}
}

func TestMergeSmallPages_FirstPageNeverMerged(t *testing.T) {
	pages := []document.Page{
		{Number: 1, Content: "tiny", StartLine: 0, EndLine: 1},
		{Number: 2, Content: strings.Repeat("b\n", 20), StartLine: 1, EndLine: 21},
	}
	merged := mergeSmallPages(pages)
	if len(merged) != 2 {
		t.Fatalf("first page has no predecessor, got %d pages", len(merged))
	}
}

func TestExtractTitle_WindowIsTenLines(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "plain"
	}
	lines[10] = "## Late heading" // line 11 of the page

	if got := extractTitle(lines); got != "" {
		t.Fatalf("heading outside the window must be ignored, got %q", got)
	}

	lines[9] = "### In window  "
	if got := extractTitle(lines); got != "In window" {
		t.Fatalf("title: got %q, want %q", got, "In window")
	}
}

func TestIsPageMarkerTitle(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"Page 3", true},
		{"page 12 of 30", true},
		{"PAGE 7", true},
		{"Pages", false},
		{"Page numbering", false},
		{"Introduction", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isPageMarkerTitle(tc.title); got != tc.want {
			t.Errorf("isPageMarkerTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"a\r\nb\r\n", 2},
		{"a\n\n", 2},
	}
	for _, tc := range cases {
		if got := splitLines(tc.in); len(got) != tc.want {
			t.Errorf("splitLines(%q): got %d lines %v, want %d", tc.in, len(got), got, tc.want)
		}
	}
}

func TestCollectStats(t *testing.T) {
	content := "# Page 1\n" + strings.Repeat("x\n", 15) + "# Page 2\n" + strings.Repeat("y\n", 13)
	p := mustParser(t, "")
	doc, err := p.ParseDocument(content, testMeta("doc.md", content))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	s := CollectStats(doc)
	if s.TotalPages != 2 {
		t.Fatalf("TotalPages: got %d", s.TotalPages)
	}
	if s.TotalLines != 30 {
		t.Fatalf("TotalLines: got %d", s.TotalLines)
	}
	if s.PagesWithTitles != 2 {
		t.Fatalf("PagesWithTitles: got %d", s.PagesWithTitles)
	}
	if s.AvgLinesPerPage != 15 {
		t.Fatalf("AvgLinesPerPage: got %v", s.AvgLinesPerPage)
	}
}
