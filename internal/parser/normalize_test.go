package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHTMLLineBreaks(t *testing.T) {
	lines := NormalizeHTML("<div>first</div><p>second</p>third<br>fourth")

	var nonEmpty []string
	for _, l := range lines {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, nonEmpty)
}

func TestNormalizeHTMLStripsTagsAndUnifiesWhitespace(t *testing.T) {
	lines := NormalizeHTML("<div><b>bold</b> and\r\n<i>italic</i>ㅤend</div>")

	assert.Equal(t, "bold and", lines[0])
	assert.Equal(t, "italic end", lines[1])
}

func TestNormalizeHTMLSkipsScriptContent(t *testing.T) {
	lines := NormalizeHTML("<div>visible</div><script>var hidden = 1;</script>")

	for _, l := range lines {
		assert.NotContains(t, l, "hidden")
	}
}

func TestNormalizeHTMLMalformedInputNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		NormalizeHTML("<div><p>unclosed <a href=")
		NormalizeHTML("")
		NormalizeHTML("plain text with no markup at all")
	})
}
