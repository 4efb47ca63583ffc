package model

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date layouts the models actually emit for timeline entries, most specific
// first.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
	"January 2006",
	"2006-01",
	"2006",
}

func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortTimeline orders timeline events chronologically for display. The sort
// is stable: ties and undated entries keep their original extraction order,
// and undated entries sink to the end.
func SortTimeline(events []TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, oki := parseEventDate(events[i].Date)
		tj, okj := parseEventDate(events[j].Date)
		if oki && okj {
			return ti.Before(tj)
		}
		return oki && !okj
	})
}

var timestampRe = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)(?::([0-5]\d))?$`)

// ValidTimestamp reports whether s is a canonical HH:MM:SS or MM:SS stamp.
func ValidTimestamp(s string) bool {
	return timestampRe.MatchString(s)
}

// TimestampSeconds converts an HH:MM:SS or MM:SS stamp to seconds. Returns
// -1 for malformed stamps so callers can skip them in ordering checks.
func TimestampSeconds(s string) int {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return -1
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return a*60 + b
	}
	c, _ := strconv.Atoi(m[3])
	return a*3600 + b*60 + c
}
