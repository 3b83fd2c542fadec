package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Build things", "Build things"},
		{"plain whitespace", "  Build   things \n\n\n and ship  ", "Build things\nand ship"},
		{"paragraphs", "<p>Build things.</p><p>Ship them.</p>", "Build things.\nShip them."},
		{"line breaks", "Line one<br>Line two<br/>Line three", "Line one\nLine two\nLine three"},
		{"list", "<ul><li>Go</li><li>SQL</li></ul>", "• Go\n• SQL"},
		{"scripts dropped", "<div>Hello<script>alert(1)</script></div>", "Hello"},
		{"entities", "<p>R&amp;D &lt;team&gt;</p>", "R&D <team>"},
		{"empty", "", ""},
		{"comparison is not markup", "salary < 100k", "salary < 100k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
