package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors are elements that start a new line in plain text.
const blockSelectors = "p, div, li, h1, h2, h3, h4, h5, h6, tr, section, article, ul, ol"

// PlainText converts a description that may contain HTML into plain text. Text without markup
// only has its whitespace normalized.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return cleanWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanWhitespace(s)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("• ")
	doc.Find(blockSelectors).AppendHtml("\n")

	return cleanWhitespace(doc.Text())
}

// cleanWhitespace trims every line, collapses runs of spaces and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
