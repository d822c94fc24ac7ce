package listings

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockElements get a line break after them so paragraphs stay apart.
const blockElements = "p, div, li, br, h1, h2, h3, h4, h5, h6, tr, section, article"

// PlainText reduces an HTML job description to readable text. Input without
// markup comes back with only its whitespace tidied.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return cleanWhitespace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanWhitespace(html)
	}

	doc.Find("script, style, noscript, iframe").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return cleanWhitespace(doc.Find("body").Text())
}

// Summarize shortens text to at most limit runes, cutting at a word boundary.
func Summarize(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// cleanWhitespace trims every line, collapses runs of spaces and drops empty
// lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
