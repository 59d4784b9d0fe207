package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// Bucket is the granularity of a trend.
type Bucket string

const (
	Day   Bucket = "day"
	Week  Bucket = "week"
	Month Bucket = "month"
)

// ParseBucket accepts "day", "week" or "month" (and their -ly forms).
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	}
	return "", fmt.Errorf("unknown bucket %q (want day, week or month)", s)
}

// SnapToStart normalizes a timestamp to the beginning of its bucket (0:00:00).
// Weeks start on Monday.
func SnapToStart(t time.Time, bucket Bucket) time.Time {
	switch bucket {
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case Week:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func nextBucket(t time.Time, bucket Bucket) time.Time {
	switch bucket {
	case Month:
		return t.AddDate(0, 1, 0)
	case Week:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// BucketLabel returns a human-readable label for a bucket (e.g. "Jan 2024" or "2024-W01").
func BucketLabel(t time.Time, bucket Bucket) string {
	switch bucket {
	case Month:
		return t.Format("Jan 2006")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}

// TrendPoint counts activity within one bucket.
type TrendPoint struct {
	Start  time.Time `json:"start"`
	Label  string    `json:"label"`
	Opened int       `json:"opened"`
	Closed int       `json:"closed"`
}

// Trend buckets issue activity between from and to (both inclusive, snapped
// to bucket boundaries in from's location). Opened counts creations; Closed
// counts raw closures, whenever the issue was created. Only issues passing
// every predicate are counted. At most MaxTrendBuckets buckets are built.
func Trend(issues []api.Issue, bucket Bucket, from, to time.Time, preds ...Predicate) []TrendPoint {
	if to.Before(from) {
		return []TrendPoint{}
	}
	loc := from.Location()
	first := SnapToStart(from, bucket)

	var points []TrendPoint
	index := make(map[int64]int)
	for s := first; !s.After(to) && len(points) < MaxTrendBuckets; s = nextBucket(s, bucket) {
		index[s.Unix()] = len(points)
		points = append(points, TrendPoint{Start: s, Label: BucketLabel(s, bucket)})
	}

	if len(points) > 0 {
		last := nextBucket(points[len(points)-1].Start, bucket).Add(-time.Millisecond)
		if last.Before(to) {
			to = last
		}
	}
	window := Window{Start: first, End: &to}
	for _, it := range Filter(issues, preds...) {
		if window.Contains(it.CreatedAt) {
			if i, ok := index[SnapToStart(it.CreatedAt.In(loc), bucket).Unix()]; ok {
				points[i].Opened++
			}
		}
		if it.ClosedAt != nil && window.Contains(*it.ClosedAt) {
			if i, ok := index[SnapToStart(it.ClosedAt.In(loc), bucket).Unix()]; ok {
				points[i].Closed++
			}
		}
	}
	return points
}
