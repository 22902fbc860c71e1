package document

// SourceKind distinguishes where a document's raw content came from.
type SourceKind string

const (
	SourceLocalFile SourceKind = "local_file"
	SourceURL       SourceKind = "url"
)

// Page is a contiguous run of lines belonging to one logical page.
// StartLine and EndLine form a half-open, 0-based range [StartLine, EndLine)
// into the original document's line sequence.
type Page struct {
	// Number is the 1-based position among the document's pages. It is
	// reassigned after merging, so it is only stable in the final output.
	Number  int    `json:"number"`
	Content string `json:"content"`
	// Title is the text of the first markdown heading found within the
	// first lines of the page, or empty when the page has no such heading.
	Title     string `json:"title,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// LineCount reports how many original lines the page spans.
func (p Page) LineCount() int {
	return p.EndLine - p.StartLine
}

// Metadata carries provenance for a fetched document. PageBreaks starts
// empty and is filled in by the parser with the raw boundary line indices
// found before extraction.
type Metadata struct {
	Filename   string     `json:"filename"`
	SourceKind SourceKind `json:"source_type"`
	CreatedAt  string     `json:"created_at"`
	TotalLines int        `json:"total_lines"`
	PageBreaks []int      `json:"page_breaks"`
}

// Document is the fully parsed artifact. It is immutable once built: one
// Document may be split any number of times with different configurations
// without re-parsing.
type Document struct {
	Source     string   `json:"source"`
	TotalPages int      `json:"total_pages"`
	Pages      []Page   `json:"pages"`
	Metadata   Metadata `json:"metadata"`
}
