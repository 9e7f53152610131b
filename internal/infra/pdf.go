package infra

// Report export using go-pdf/fpdf.
// Renders a dto.Table as an A4 document:
//   - Title and generation timestamp
//   - One bordered table per section, columns sharing the page width
//   - Page numbers in the footer

import (
	"bytes"
	"fmt"

	"sprockets/internal/dto"

	"github.com/go-pdf/fpdf"
)

const maxCellRunes = 48

// RenderReportPDF lays out t and returns the encoded document.
func RenderReportPDF(t dto.Table) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Generated "+t.Date.Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Sections ──────────────────────────────────────────────────────────────
	for _, s := range t.Sections {
		if s.Heading != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(contentW, 7, tr(s.Heading), "", 1, "L", false, 0, "")
		}
		if len(s.Columns) == 0 {
			continue
		}
		colW := contentW / float64(len(s.Columns))

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range s.Columns {
			pdf.CellFormat(colW, 6, tr(c), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		if len(s.Rows) == 0 {
			pdf.CellFormat(contentW, 6, "No entries", "1", 1, "C", false, 0, "")
		}
		for _, row := range s.Rows {
			for i := range s.Columns {
				cell := ""
				if i < len(row) {
					cell = truncate(row[i], maxCellRunes)
				}
				pdf.CellFormat(colW, 6, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
