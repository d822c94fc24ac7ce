// Package observability provides logging, metrics, and formatted output utilities.
package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow is the default number of preview lines to display
	maxLinesToShow = 5
)

// CompileSummary is what the CLI knows about a finished compile.
type CompileSummary struct {
	Input  string
	Output string
	Stage  string
	Bytes  int
	Pages  int
	Lines  []string
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCompileSummary outputs where a PDF came from and, for text layouts,
// the first few wrapped lines.
func (p *Printer) PrintCompileSummary(s *CompileSummary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input:   %s\n", s.Input))
	sb.WriteString(fmt.Sprintf("Output:  %s\n", s.Output))
	sb.WriteString(fmt.Sprintf("Source:  %s\n", s.Stage))
	sb.WriteString(fmt.Sprintf("Size:    %d bytes", s.Bytes))
	if s.Pages > 0 {
		sb.WriteString(fmt.Sprintf("\nPages:   %d", s.Pages))
	}

	if len(s.Lines) > 0 {
		sb.WriteString("\n\nLayout preview:\n")
		count := min(len(s.Lines), maxLinesToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %s\n", s.Lines[i]))
		}
		if len(s.Lines) > maxLinesToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(s.Lines)-maxLinesToShow))
		}
	}

	p.printBox("COMPILE RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
