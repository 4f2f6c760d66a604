package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags whose closing marker ends a logical line of prose. The upstream pages
// lay out unit tables with these plus <br>, so each becomes a newline.
var lineBreakTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true,
}

var skipContentTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

// NormalizeHTML converts markup to plain text lines: <br> and block-closing
// tags become newlines, every other tag is dropped, and whitespace artifacts
// (CRLF, NBSP, Hangul filler) are unified. Malformed markup never fails; the
// tokenizer degrades to treating the remainder as text.
func NormalizeHTML(raw string) []string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	var skipDepth int

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "br" {
				b.WriteByte('\n')
			}
			if tt == html.StartTagToken && skipContentTags[tag] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipContentTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if lineBreakTags[tag] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}

	text := b.String()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\u3164", " ")

	return strings.Split(text, "\n")
}
