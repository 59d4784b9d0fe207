package analyzer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseRange parses a time range relative to now, in now's location:
//   - relative: `7d` means now-7days..now (open-ended)
//   - date: `2025-01-02` means that whole day
//   - range: `2025-01-01..2025-01-31` or `60d..45d`, inclusive; either side
//     may be empty
func ParseRange(raw string, now time.Time) (Window, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Window{}, fmt.Errorf("empty time range")
	}

	// handle ranges first so inputs like "60d..45d" parse as intended
	if strings.Contains(raw, "..") {
		parts := strings.SplitN(raw, "..", 2)
		a := strings.TrimSpace(parts[0])
		b := strings.TrimSpace(parts[1])
		var w Window
		if a != "" {
			day, err := parseDay(a, now)
			if err != nil {
				return Window{}, fmt.Errorf("invalid start date: %w", err)
			}
			w.Start = day
		}
		if b != "" {
			day, err := parseDay(b, now)
			if err != nil {
				return Window{}, fmt.Errorf("invalid end date: %w", err)
			}
			end := endOfDay(day)
			w.End = &end
		}
		if w.End != nil && w.End.Before(w.Start) {
			return Window{}, fmt.Errorf("time range %q ends before it starts", raw)
		}
		return w, nil
	}

	if n, ok, err := parseRelative(raw); ok {
		if err != nil {
			return Window{}, err
		}
		return Window{Start: now.AddDate(0, 0, -n)}, nil
	}

	day, err := ParseDate(raw, now.Location())
	if err != nil {
		return Window{}, fmt.Errorf("unsupported time range format: %s", raw)
	}
	end := endOfDay(day)
	return Window{Start: day, End: &end}, nil
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
}

// parseDay resolves one side of a range to the midnight of a day.
func parseDay(part string, now time.Time) (time.Time, error) {
	if n, ok, err := parseRelative(part); ok {
		if err != nil {
			return time.Time{}, err
		}
		return midnight(now.AddDate(0, 0, -n)), nil
	}
	t, err := ParseDate(part, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or relative timeframe: %s", part)
	}
	return t, nil
}

// parseRelative reports whether s looks like "<n>d" and parses n.
func parseRelative(s string) (int, bool, error) {
	if !strings.HasSuffix(s, "d") {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil || n <= 0 {
		return 0, true, fmt.Errorf("invalid relative timeframe: %s", s)
	}
	return n, true, nil
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DefaultTrendStart is the start of a trend ending at now when no range is
// given: two weeks of days, twelve weeks or six months.
func DefaultTrendStart(bucket Bucket, now time.Time) time.Time {
	switch bucket {
	case Month:
		return SnapToStart(now, Month).AddDate(0, -5, 0)
	case Week:
		return SnapToStart(now, Week).AddDate(0, 0, -7*11)
	default:
		return midnight(now).AddDate(0, 0, -13)
	}
}

// MaxTrendBuckets bounds the number of buckets a trend may span.
const MaxTrendBuckets = 400

// TrendRange resolves a trend's from and to for raw (see ParseRange) ending
// at now. A missing end means now; an empty raw or a missing start falls back
// to DefaultTrendStart of the end. Ranges wider than MaxTrendBuckets are
// rejected.
func TrendRange(raw string, bucket Bucket, now time.Time) (from, to time.Time, err error) {
	from, to = DefaultTrendStart(bucket, now), now
	if strings.TrimSpace(raw) != "" {
		w, err := ParseRange(raw, now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if w.End != nil {
			to = *w.End
		}
		from = w.Start
		if from.IsZero() {
			from = DefaultTrendStart(bucket, to)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range ends before it starts")
	}
	n := 0
	for s := SnapToStart(from, bucket); !s.After(to); s = nextBucket(s, bucket) {
		if n++; n > MaxTrendBuckets {
			return time.Time{}, time.Time{}, fmt.Errorf("range spans more than %d %s buckets", MaxTrendBuckets, bucket)
		}
	}
	return from, to, nil
}
