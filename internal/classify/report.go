// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// WriteReport renders the comparison for terminal consumption: batch
// metrics, per-document detail, feature importance, and discrepancy tallies.
// Sections are sorted so repeated runs print identically.
func WriteReport(w io.Writer, analysis types.ComparisonAnalysis) {
	fmt.Fprintf(w, "Classification comparison:\n")
	fmt.Fprintf(w, "  documents:         %d\n", len(analysis.Results))
	fmt.Fprintf(w, "  score correlation: %.3f\n", analysis.ScoreCorrelation)
	fmt.Fprintf(w, "  agreement rate:    %.2f%%\n", analysis.AgreementRate*100)

	fmt.Fprintf(w, "\nPer-document results:\n")
	for _, r := range analysis.Results {
		fmt.Fprintf(w, "  %s\n", r.DocumentID)
		fmt.Fprintf(w, "    rule score: %.3f  stat score: %.3f  difference: %.3f\n",
			r.RuleScore, r.StatScore, r.ScoreDifference())
		fmt.Fprintf(w, "    agreement:  %v\n", r.Agrees())
		fmt.Fprintf(w, "    rule labels: [%s]\n", strings.Join(r.RuleLabels, ", "))
		fmt.Fprintf(w, "    stat labels: [%s]\n", strings.Join(r.StatLabels, ", "))
	}

	fmt.Fprintf(w, "\nFeature importance (variance):\n")
	for _, fv := range sortedVariance(analysis.FeatureVariance) {
		fmt.Fprintf(w, "  %-24s %.4f\n", fv.name, fv.variance)
	}

	if len(analysis.Discrepancies) > 0 {
		fmt.Fprintf(w, "\nDiscrepancies:\n")
		for _, d := range sortedDiscrepancies(analysis.Discrepancies) {
			fmt.Fprintf(w, "  %dx %s\n", d.count, d.key)
		}
	}
}

type featureImportance struct {
	name     string
	variance float64
}

// sortedVariance orders features by descending variance, then name.
func sortedVariance(variance map[string]float64) []featureImportance {
	out := make([]featureImportance, 0, len(variance))
	for name, v := range variance {
		out = append(out, featureImportance{name: name, variance: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].variance != out[j].variance {
			return out[i].variance > out[j].variance
		}
		return out[i].name < out[j].name
	})
	return out
}

type discrepancyTally struct {
	key   string
	count int
}

// sortedDiscrepancies orders tallies by descending count, then key.
func sortedDiscrepancies(tallies map[string]int) []discrepancyTally {
	out := make([]discrepancyTally, 0, len(tallies))
	for key, n := range tallies {
		out = append(out, discrepancyTally{key: key, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
