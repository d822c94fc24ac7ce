package compile

import (
	"strings"
)

// Line is one wrapped output line. Broken marks a line that ends partway
// through a word too wide for the page; the word continues on the next line.
type Line struct {
	Text   string
	Broken bool
}

// Measure returns the rendered width of s.
type Measure func(s string) float64

// Wrap greedily fills lines no wider than maxWidth. Each input line is wrapped
// on its own, and blank input lines become empty output lines. Words wider
// than maxWidth are split across lines. maxWidth must be at least as wide as
// any single character.
func Wrap(text string, maxWidth float64, measure Measure) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []Line
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, Line{})
			continue
		}

		cur := ""
		for _, word := range words {
			if measure(word) > maxWidth {
				if cur != "" {
					out = append(out, Line{Text: cur})
				}
				chunks := breakWord(word, maxWidth, measure)
				for _, chunk := range chunks[:len(chunks)-1] {
					out = append(out, Line{Text: chunk, Broken: true})
				}
				cur = chunks[len(chunks)-1]
				continue
			}

			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}
			if measure(candidate) <= maxWidth {
				cur = candidate
				continue
			}
			out = append(out, Line{Text: cur})
			cur = word
		}
		out = append(out, Line{Text: cur})
	}
	return out
}

// breakWord splits word into the fewest rune chunks that each fit maxWidth.
func breakWord(word string, maxWidth float64, measure Measure) []string {
	var chunks []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && measure(string(next)) > maxWidth {
			chunks = append(chunks, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(chunks, string(cur))
}

// Words reassembles the whitespace-delimited word sequence from wrapped lines.
func Words(lines []Line) []string {
	var words []string
	joinNext := false
	for _, line := range lines {
		fields := strings.Fields(line.Text)
		for i, f := range fields {
			if i == 0 && joinNext && len(words) > 0 {
				words[len(words)-1] += f
				continue
			}
			words = append(words, f)
		}
		joinNext = line.Broken
	}
	return words
}
