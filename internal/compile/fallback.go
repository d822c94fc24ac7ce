package compile

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// PageSpec is the geometry of fallback documents, in points.
type PageSpec struct {
	Size     string
	Margin   float64
	Font     string
	FontSize float64
	Leading  float64
}

// DefaultPage is A4 with 40pt margins and 11pt Helvetica on 14pt lines.
func DefaultPage() PageSpec {
	return PageSpec{
		Size:     "A4",
		Margin:   40,
		Font:     "Helvetica",
		FontSize: 11,
		Leading:  14,
	}
}

// TextDocument is a rendered fallback PDF.
type TextDocument struct {
	PDF   []byte
	Pages int
	Lines []Line
}

// RenderText lays text out as wrapped lines and starts a new page whenever the
// next line would cross the bottom margin. Empty text yields one blank page.
func RenderText(text string, page PageSpec) (*TextDocument, error) {
	pdf := fpdf.New("P", "pt", page.Size, "")
	pdf.SetMargins(page.Margin, page.Margin, page.Margin)
	pdf.SetAutoPageBreak(false, page.Margin)
	pdf.SetFont(page.Font, "", page.FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	width, height := pdf.GetPageSize()
	usable := width - 2*page.Margin
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }

	lines := Wrap(text, usable, measure)

	pdf.AddPage()
	top := page.Margin + page.FontSize
	bottom := height - page.Margin
	y := top
	for _, line := range lines {
		if y > bottom {
			pdf.AddPage()
			y = top
		}
		if line.Text != "" {
			pdf.Text(page.Margin, y, tr(line.Text))
		}
		y += page.Leading
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &Error{Stage: StageFallback, Message: "failed to render PDF", Cause: err}
	}
	return &TextDocument{PDF: buf.Bytes(), Pages: pdf.PageCount(), Lines: lines}, nil
}

// LinesPerPage is how many lines fit between the margins.
func (p PageSpec) LinesPerPage(pageHeight float64) int {
	usable := pageHeight - 2*p.Margin - p.FontSize
	return int(usable/p.Leading) + 1
}
