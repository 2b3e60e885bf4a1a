package timex

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is fixed-width UTC with millisecond precision, so string
// comparison of two stamps orders them chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// nowFn is swapped in tests.
var nowFn = time.Now

// Now returns the current time formatted with TimestampLayout.
func Now() string {
	return Format(nowFn())
}

// Format renders t in UTC using TimestampLayout.
func Format(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var parseLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse accepts the timestamp shapes seen from remote peers.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", s)
}

// Normalize rewrites s into TimestampLayout; unparsable input is returned
// unchanged so it is never silently lost.
func Normalize(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return Format(t)
}
