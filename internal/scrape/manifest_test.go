package scrape

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumFormat(t *testing.T) {
	sum := Checksum([]byte("hello"))
	assert.True(t, strings.HasPrefix(sum, "sha256:"))
	assert.Len(t, sum, len("sha256:")+16)

	// Deterministic, and sensitive to input.
	assert.Equal(t, sum, Checksum([]byte("hello")))
	assert.NotEqual(t, sum, Checksum([]byte("hello!")))
}

func TestDetailKey(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://duolingodata.com/enfes.html", "enfes"},
		{"https://duolingodata.com/sub/zhhansfen.html", "zhhansfen"},
		{"https://duolingodata.com/", ""},
		{"https://duolingodata.com/page.php", ""},
		{"not a url at all", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetailKey(tt.href), "href %q", tt.href)
	}
}

func TestNextUpdateAlwaysInFuture(t *testing.T) {
	now := time.Date(2025, 8, 13, 12, 0, 0, 0, time.UTC) // a Wednesday

	next := NextUpdate(now, time.Sunday, 3)
	assert.Equal(t, time.Date(2025, 8, 17, 3, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.True(t, next.After(now))
}

func TestNextUpdateOnScheduledDayRollsForward(t *testing.T) {
	sunday := time.Date(2025, 8, 17, 1, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())

	next := NextUpdate(sunday, time.Sunday, 3)
	assert.Equal(t, time.Date(2025, 8, 24, 3, 0, 0, 0, time.UTC), next)
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 8, 13, 9, 30, 45, 123000000, time.UTC)

	formatted := FormatTimestamp(ts)
	assert.Equal(t, "2025-08-13T09:30:45.123Z", formatted)

	parsed, err := ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}
