package usage

import (
	"fmt"
	"sort"
	"time"
)

// Granularity selects the time bucket width.
type Granularity string

const (
	ByHour  Granularity = "hour"
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week"
	ByMonth Granularity = "month"
)

// ParseGranularity validates a granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case ByHour, ByDay, ByWeek, ByMonth:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity %q (want hour, day, week, or month)", s)
}

// Bucket is a time-windowed aggregation of ledger entries.
type Bucket struct {
	Key       time.Time `json:"key"`
	CostCents float64   `json:"cost_cents"`
	Tokens    int       `json:"tokens"`
	Requests  int       `json:"requests"`
	Errors    int       `json:"errors"`
}

// Label formats the bucket key for display at the given granularity.
// Formatting is separate from truncation so bucket identity never depends
// on a display format.
func (b Bucket) Label(g Granularity) string {
	switch g {
	case ByHour:
		return b.Key.Format("2006-01-02 15:00")
	case ByWeek:
		return "week of " + b.Key.Format("2006-01-02")
	case ByMonth:
		return b.Key.Format("2006-01")
	default:
		return b.Key.Format("2006-01-02")
	}
}

// Truncate returns the bucket boundary containing t at the given
// granularity. Weeks start on Sunday.
func Truncate(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case ByHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case ByWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case ByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // ByDay
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// BucketEntries groups entries by truncated timestamp, summing cost, tokens
// and requests, and counting non-success statuses as errors. Buckets are
// returned sorted ascending by key.
func BucketEntries(entries []Entry, g Granularity) []Bucket {
	byKey := make(map[time.Time]*Bucket)
	for _, e := range entries {
		key := Truncate(e.Timestamp, g)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key}
			byKey[key] = b
		}
		b.CostCents += e.CostCents
		b.Tokens += e.TokensUsed
		b.Requests++
		if e.Status != StatusSuccess {
			b.Errors++
		}
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key.Before(buckets[j].Key) })
	return buckets
}
