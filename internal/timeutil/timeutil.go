// Package timeutil parses the time expressions accepted by tool arguments.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout is accepted in addition to RFC3339 because agents often pass
// plain calendar dates.
const dateLayout = "2006-01-02"

// ParseFlexibleTime parses an absolute or relative time against now.
//
// Supported formats:
//   - RFC3339 / RFC3339Nano: "2024-01-01T00:00:00Z"
//   - calendar date, midnight in now's location: "2024-01-01"
//   - relative past time: "now", "now-7d", "now-2h"
//
// Relative units: s, m, h, d, w. Times after now are rejected since
// activities are recorded in the past.
func ParseFlexibleTime(timeStr string, now time.Time) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)

	var parsed time.Time
	if t, err := time.Parse(time.RFC3339Nano, timeStr); err == nil {
		parsed = t
	} else if t, err := time.ParseInLocation(dateLayout, timeStr, now.Location()); err == nil {
		parsed = t
	} else if strings.HasPrefix(timeStr, "now") {
		parsed, err = ParseRelativeTime(timeStr, now)
		if err != nil {
			return time.Time{}, err
		}
	} else {
		return time.Time{}, fmt.Errorf("invalid time format: %q (use RFC3339 like '2024-01-01T00:00:00Z', a date like '2024-01-01', or relative like 'now-7d')", timeStr)
	}

	if parsed.After(now) {
		return time.Time{}, fmt.Errorf("time cannot be in the future: %s", timeStr)
	}
	return parsed, nil
}

// ParseRelativeTime parses "now" or "now-<n><unit>" against now.
//
// Days and weeks use AddDate so the wall clock is kept across DST changes.
// Hours, minutes, and seconds are exact durations.
func ParseRelativeTime(expr string, now time.Time) (time.Time, error) {
	if expr == "now" {
		return now, nil
	}
	if !strings.HasPrefix(expr, "now-") {
		return time.Time{}, fmt.Errorf("relative time must be 'now' or start with 'now-' (e.g. 'now-7d'); future times are not supported")
	}
	return subtractOffset(now, expr[len("now-"):])
}

func subtractOffset(t time.Time, offset string) (time.Time, error) {
	if len(offset) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration: %q (must be <number><unit>, e.g. '7d', '2h')", offset)
	}

	unit := offset[len(offset)-1]
	value, err := strconv.Atoi(offset[:len(offset)-1])
	if err != nil || value < 0 {
		return time.Time{}, fmt.Errorf("invalid duration value: %q (expected a non-negative number before the unit)", offset)
	}

	switch unit {
	case 'w':
		return t.AddDate(0, 0, -7*value), nil
	case 'd':
		return t.AddDate(0, 0, -value), nil
	case 'h':
		return t.Add(-time.Duration(value) * time.Hour), nil
	case 'm':
		return t.Add(-time.Duration(value) * time.Minute), nil
	case 's':
		return t.Add(-time.Duration(value) * time.Second), nil
	default:
		return time.Time{}, fmt.Errorf("invalid duration unit: %q (use s, m, h, d, or w)", string(unit))
	}
}

// Window is an optional time range. Nil bounds are open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// ParseWindow parses optional start and end expressions with one shared
// reference time. Empty strings leave the bound open.
func ParseWindow(start, end string, now time.Time) (Window, error) {
	var w Window
	if start != "" {
		t, err := ParseFlexibleTime(start, now)
		if err != nil {
			return Window{}, fmt.Errorf("start_time: %w", err)
		}
		w.Start = &t
	}
	if end != "" {
		t, err := ParseFlexibleTime(end, now)
		if err != nil {
			return Window{}, fmt.Errorf("end_time: %w", err)
		}
		w.End = &t
	}
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return Window{}, fmt.Errorf("start_time %s is after end_time %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return w, nil
}
