package scrape

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var detailKeyRe = regexp.MustCompile(`^([^.]+)\.html$`)

// Checksum returns the dataset's integrity hash format: a sha256 prefix plus
// the first 16 hex characters of the digest.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])[:16]
}

// DetailKey derives the stable per-course file key from a detail URL, e.g.
// "https://duolingodata.com/enfes.html" -> "enfes". Returns "" when the URL
// doesn't point at an .html page.
func DetailKey(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	fileName := segments[len(segments)-1]
	if m := detailKeyRe.FindStringSubmatch(fileName); m != nil {
		return m[1]
	}
	return ""
}

// NextUpdate computes the next scheduled run: the coming occurrence of
// weekday at hourUTC, always in the future (a run on the scheduled day rolls
// a full week forward).
func NextUpdate(now time.Time, weekday time.Weekday, hourUTC int) time.Time {
	now = now.UTC()
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), hourUTC, 0, 0, 0, time.UTC)
}

// FormatTimestamp renders timestamps the way the dataset schema expects:
// RFC3339 with millisecond precision in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseTimestamp accepts both the dataset's own format and plain RFC3339.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.000Z", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, err)
	}
	return t, nil
}
