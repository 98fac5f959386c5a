package analytics

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeyCount is one bucket of a group-and-count aggregation.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupCount folds already-fetched rows into buckets keyed by keyFn, sorted by
// descending count, ties broken by key. Rows whose key is empty are skipped.
// Every summary dimension in this package is this one fold with a different
// key extractor.
func GroupCount[T any](rows []T, keyFn func(T) string) []KeyCount {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		key := keyFn(row)
		if key == "" {
			continue
		}
		counts[key]++
	}

	buckets := make([]KeyCount, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, KeyCount{Key: key, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

// TopN truncates a sorted bucket list to its first n entries.
func TopN(buckets []KeyCount, n int) []KeyCount {
	if n <= 0 || n >= len(buckets) {
		return buckets
	}
	return buckets[:n]
}

// DirectReferer buckets traffic with no parsable referer.
const DirectReferer = "Direct"

// NormalizeReferer reduces a referer URL to its hostname; empty or unparsable
// values bucket to "Direct".
func NormalizeReferer(referer string) string {
	trimmed := strings.TrimSpace(referer)
	if trimmed == "" {
		return DirectReferer
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Hostname() == "" {
		return DirectReferer
	}
	return parsed.Hostname()
}

// DayKey truncates a timestamp to its ISO date in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RevenueSummary totals completed-order revenue for a range.
type RevenueSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// RevenueTotals sums order amounts parsed as floats; non-numeric or absent
// values count as zero. The average is revenue over order count, zero when
// there are no orders.
func RevenueTotals(totalAmounts []string) RevenueSummary {
	var summary RevenueSummary
	for _, raw := range totalAmounts {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}
		summary.TotalRevenue += value
	}
	if len(totalAmounts) > 0 {
		summary.AvgOrderValue = summary.TotalRevenue / float64(len(totalAmounts))
	}
	return summary
}
