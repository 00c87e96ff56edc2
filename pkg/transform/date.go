package transform

import (
	"strings"
	"time"
)

// dateLayouts cover RFC 822 and RFC 1123 dates as they appear in feeds:
// optional weekday, one or two digit day, two or four digit year, optional
// seconds. Zone names are rewritten to offsets before parsing.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 06 15:04 -0700",
	"2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

// zoneOffsets are the named zones RFC 822 allows.
var zoneOffsets = map[string]string{
	"UT":  "+0000",
	"UTC": "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// ParseDate parses an RFC 822 style date into Unix seconds.
func ParseDate(s string) (int64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	if off, ok := zoneOffsets[strings.ToUpper(fields[len(fields)-1])]; ok && len(fields) > 1 {
		fields[len(fields)-1] = off
	}
	normalized := strings.Join(fields, " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.UTC().Unix(), true
		}
	}
	return 0, false
}
