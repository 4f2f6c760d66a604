package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Antwohlf/duocalculator/pkg/course"
)

const maxNewsEntries = 50

var newsSignalRe = regexp.MustCompile(`(?i)\d{4}[-/]\d{2}[-/]\d{2}|added|updated|new|changed|removed`)

// ParseDailyNews extracts change-log style entries from the news page. The
// page is schema-light; we keep text blocks that mention a date or a change
// keyword, and fall back to any reasonably sized paragraph when none match.
func ParseDailyNews(rawHTML string) []course.NewsEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var entries []course.NewsEntry
	doc.Find("body").Find("p, div, li").Each(func(i int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		if len(text) > 10 && len(text) < 500 && newsSignalRe.MatchString(text) {
			entries = append(entries, course.NewsEntry{Text: text, Index: i})
		}
	})

	if len(entries) == 0 {
		doc.Find("body").Find("p, li").Each(func(i int, el *goquery.Selection) {
			text := strings.TrimSpace(el.Text())
			if len(text) > 20 && len(text) < 500 {
				entries = append(entries, course.NewsEntry{Text: text, Index: i})
			}
		})
	}

	if len(entries) > maxNewsEntries {
		entries = entries[:maxNewsEntries]
	}
	return entries
}
