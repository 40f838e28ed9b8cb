// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trends buckets documents by publication interval and fits linear
// usage trends per keyword across the corpus.
// Implements: prd004-temporal-trends (R1-R4);
//
//	docs/ARCHITECTURE § Temporal trends.
package trends

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// trendThreshold is the minimum absolute slope for a keyword to count as
// emerging or declining.
const trendThreshold = 0.1

// Analyze buckets documents by publication interval and fits a linear trend
// for every keyword in any document's matched-terms set (R1-R3). Documents
// without a publication date are excluded from bucketing but still counted
// in TotalDocuments.
func Analyze(docs []types.Document, granularity types.Granularity) types.TemporalAnalysisResult {
	byInterval := groupByInterval(docs, granularity)

	keywords := make(map[string]struct{})
	for _, doc := range docs {
		for _, term := range doc.MatchedTerms {
			keywords[term] = struct{}{}
		}
	}

	trends := make(map[string]types.KeywordTrend, len(keywords))
	for keyword := range keywords {
		trends[keyword] = keywordTrend(keyword, byInterval)
	}

	emerging, declining := partitionTrending(trends)

	return types.TemporalAnalysisResult{
		Granularity:    granularity,
		TotalDocuments: len(docs),
		Trends:         trends,
		Emerging:       emerging,
		Declining:      declining,
	}
}

// IntervalLabel formats a publication date into its bucket label: "2006" for
// year, "2006-01" for month, "2006-Q1" for quarter. Labels within one
// granularity sort lexicographically into chronological order.
func IntervalLabel(t time.Time, granularity types.Granularity) string {
	switch granularity {
	case types.GranularityMonth:
		return t.Format("2006-01")
	case types.GranularityQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
	default:
		return t.Format("2006")
	}
}

func groupByInterval(docs []types.Document, granularity types.Granularity) map[string][]types.Document {
	out := make(map[string][]types.Document)
	for _, doc := range docs {
		if !doc.HasPublished() {
			continue
		}
		label := IntervalLabel(doc.Published, granularity)
		out[label] = append(out[label], doc)
	}
	return out
}

// keywordTrend sums the keyword's counts per interval, recording only
// intervals where it appeared, and stamps the first and last publication
// dates among documents carrying it with a non-zero count.
func keywordTrend(keyword string, byInterval map[string][]types.Document) types.KeywordTrend {
	counts := make(map[string]int)
	var first, last time.Time
	for label, docs := range byInterval {
		sum := 0
		for _, doc := range docs {
			sum += doc.KeywordCounts[keyword]
		}
		if sum == 0 {
			continue
		}
		counts[label] = sum

		for _, doc := range docs {
			if doc.KeywordCounts[keyword] <= 0 {
				continue
			}
			if first.IsZero() || doc.Published.Before(first) {
				first = doc.Published
			}
			if last.IsZero() || doc.Published.After(last) {
				last = doc.Published
			}
		}
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	ordered := make([]types.IntervalCount, 0, len(labels))
	for _, label := range labels {
		ordered = append(ordered, types.IntervalCount{Interval: label, Count: counts[label]})
	}

	return types.KeywordTrend{
		Keyword:   keyword,
		Counts:    ordered,
		Slope:     slope(ordered),
		FirstSeen: first,
		LastSeen:  last,
	}
}

// slope is the ordinary-least-squares slope of count over 0-based bucket
// index. Fewer than two buckets yields 0.
func slope(counts []types.IntervalCount) float64 {
	if len(counts) < 2 {
		return 0
	}
	xs := make([]float64, len(counts))
	ys := make([]float64, len(counts))
	for i, c := range counts {
		xs[i] = float64(i)
		ys[i] = float64(c.Count)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}

// partitionTrending splits keywords into emerging (slope above threshold,
// steepest first) and declining (slope below the negative threshold,
// steepest decline first). Ties break on the keyword string so repeated
// runs order identically.
func partitionTrending(trends map[string]types.KeywordTrend) (emerging, declining []string) {
	for keyword, trend := range trends {
		switch {
		case trend.Slope > trendThreshold:
			emerging = append(emerging, keyword)
		case trend.Slope < -trendThreshold:
			declining = append(declining, keyword)
		}
	}
	sort.Slice(emerging, func(i, j int) bool {
		si, sj := trends[emerging[i]].Slope, trends[emerging[j]].Slope
		if si != sj {
			return si > sj
		}
		return emerging[i] < emerging[j]
	})
	sort.Slice(declining, func(i, j int) bool {
		si, sj := trends[declining[i]].Slope, trends[declining[j]].Slope
		if si != sj {
			return si < sj
		}
		return declining[i] < declining[j]
	})
	return emerging, declining
}

// Period is a closed time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ComparePeriods aggregates keyword counts within two periods and reports
// each keyword's relative change from the first to the second (R4.1-R4.2).
// A keyword absent from the first period changes by +Inf when present in
// the second, and by 0 when absent from both.
func ComparePeriods(docs []types.Document, p1, p2 Period) map[string]float64 {
	counts1 := aggregateCounts(docs, p1)
	counts2 := aggregateCounts(docs, p2)

	changes := make(map[string]float64, len(counts1)+len(counts2))
	for keyword := range counts1 {
		changes[keyword] = 0
	}
	for keyword := range counts2 {
		changes[keyword] = 0
	}

	for keyword := range changes {
		c1 := counts1[keyword]
		c2 := counts2[keyword]
		switch {
		case c1 == 0 && c2 > 0:
			changes[keyword] = math.Inf(1)
		case c1 == 0:
			changes[keyword] = 0
		default:
			changes[keyword] = (float64(c2) - float64(c1)) / float64(c1)
		}
	}
	return changes
}

func aggregateCounts(docs []types.Document, p Period) map[string]int {
	out := make(map[string]int)
	for _, doc := range docs {
		if !doc.HasPublished() || !p.Contains(doc.Published) {
			continue
		}
		for keyword, n := range doc.KeywordCounts {
			out[keyword] += n
		}
	}
	return out
}
