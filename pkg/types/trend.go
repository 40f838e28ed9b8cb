// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Granularity selects the time-bucket size for temporal analysis.
// Per prd004-temporal-trends R1.2.
type Granularity string

const (
	GranularityYear    Granularity = "year"
	GranularityQuarter Granularity = "quarter"
	GranularityMonth   Granularity = "month"
)

// ParseGranularity maps a string to a Granularity. Unrecognized values fall
// back to year rather than failing.
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityQuarter:
		return GranularityQuarter
	case GranularityMonth:
		return GranularityMonth
	default:
		return GranularityYear
	}
}

// IntervalCount is one time bucket's summed occurrence count for a keyword.
type IntervalCount struct {
	// Interval is the bucket label: "2006" (year), "2006-Q1" (quarter), or
	// "2006-01" (month). Labels sort lexicographically into chronological
	// order within a granularity.
	Interval string `json:"interval" yaml:"interval"`

	// Count is the keyword's summed occurrence count across the bucket's
	// documents.
	Count int `json:"count" yaml:"count"`
}

// KeywordTrend tracks one keyword's usage across time buckets. Counts hold
// only buckets where the keyword appeared, in chronological order.
// Per prd004-temporal-trends R2.1-R2.4.
type KeywordTrend struct {
	// Keyword is the tracked lexicon term.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Counts are the keyword's non-zero buckets in chronological order.
	Counts []IntervalCount `json:"counts" yaml:"counts"`

	// Slope is the least-squares slope of count over 0-based sorted bucket
	// index. Zero when fewer than two buckets recorded the keyword.
	Slope float64 `json:"slope" yaml:"slope"`

	// FirstSeen is the earliest publication date among documents carrying
	// the keyword with a non-zero count. Zero when never seen.
	FirstSeen time.Time `json:"first_seen,omitempty" yaml:"first_seen,omitempty"`

	// LastSeen is the latest such publication date. Zero when never seen.
	LastSeen time.Time `json:"last_seen,omitempty" yaml:"last_seen,omitempty"`
}

// TotalCount sums the keyword's occurrences across all recorded buckets.
func (t KeywordTrend) TotalCount() int {
	total := 0
	for _, c := range t.Counts {
		total += c.Count
	}
	return total
}

// TemporalAnalysisResult is the output of one temporal analysis run.
// Per prd004-temporal-trends R3.1-R3.3.
type TemporalAnalysisResult struct {
	// Granularity is the bucket size the run used.
	Granularity Granularity `json:"granularity" yaml:"granularity"`

	// TotalDocuments counts every input document, including those excluded
	// from bucketing for lacking a publication date.
	TotalDocuments int `json:"total_documents" yaml:"total_documents"`

	// Trends maps each keyword to its trend record.
	Trends map[string]KeywordTrend `json:"trends" yaml:"trends"`

	// Emerging lists keywords with slope above the emerging threshold,
	// sorted descending by slope.
	Emerging []string `json:"emerging" yaml:"emerging"`

	// Declining lists keywords with slope below the declining threshold,
	// sorted ascending by slope (steepest decline first).
	Declining []string `json:"declining" yaml:"declining"`
}
