package parse

import "github.com/hyperifyio/mdsplit/internal/document"

// Stats summarizes a parsed document for reporting and JSON export.
type Stats struct {
	TotalPages      int     `json:"total_pages"`
	TotalLines      int     `json:"total_lines"`
	PageBreaks      int     `json:"page_breaks"`
	PagesWithTitles int     `json:"pages_with_titles"`
	AvgLinesPerPage float64 `json:"avg_lines_per_page"`
}

// CollectStats derives summary statistics from a parsed document.
func CollectStats(doc *document.Document) Stats {
	s := Stats{
		TotalPages: doc.TotalPages,
		TotalLines: doc.Metadata.TotalLines,
		PageBreaks: len(doc.Metadata.PageBreaks),
	}
	for _, p := range doc.Pages {
		if p.Title != "" {
			s.PagesWithTitles++
		}
	}
	if doc.TotalPages > 0 {
		s.AvgLinesPerPage = float64(doc.Metadata.TotalLines) / float64(doc.TotalPages)
	}
	return s
}
