package splitter

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/mdsplit/internal/document"
)

// writeSplitPDF renders a minimal PDF companion for a split artifact. Lines
// are streamed as-is with heading markers stripped for basic layout; this
// is intentionally not a markdown renderer.
func writeSplitPDF(path string, pages []document.Page) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	for i, page := range pages {
		if i > 0 {
			pdf.AddPage()
		}
		writePDFPage(pdf, page.Content)
	}

	return pdf.OutputFileAndClose(path)
}

func writePDFPage(pdf *gofpdf.Fpdf, content string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		if strings.HasPrefix(s, "#") {
			level := 0
			for level < len(s) && s[level] == '#' {
				level++
			}
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 14.0
			if level >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		pdf.MultiCell(0, 5, s, "", "L", false)
	}
}
