// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "math"

// ClassificationResult compares the rule-based and statistical readings of
// one document. It derives entirely from that document's extraction result
// and keyword counts; no other document participates.
// Per prd003-classification R5.1.
type ClassificationResult struct {
	// DocumentID identifies the classified document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// RuleScore is the weighted score over triple-derived features.
	RuleScore float64 `json:"rule_score" yaml:"rule_score"`

	// StatScore is the weighted score over keyword-derived features.
	StatScore float64 `json:"stat_score" yaml:"stat_score"`

	// RuleFeatures maps rule-based feature names to values.
	RuleFeatures map[string]float64 `json:"rule_features" yaml:"rule_features"`

	// StatFeatures maps statistical feature names to values. Keyword
	// features are absent when the document carries no keyword counts.
	StatFeatures map[string]float64 `json:"stat_features" yaml:"stat_features"`

	// RuleLabels are threshold labels from the rule-based path, in rule order.
	RuleLabels []string `json:"rule_labels" yaml:"rule_labels"`

	// StatLabels are threshold labels from the statistical path, in rule order.
	StatLabels []string `json:"stat_labels" yaml:"stat_labels"`

	// GroundTruth is an optional externally supplied label. Empty when unknown.
	GroundTruth string `json:"ground_truth,omitempty" yaml:"ground_truth,omitempty"`
}

// ScoreDifference returns the absolute gap between the two scores.
func (r ClassificationResult) ScoreDifference() float64 {
	return math.Abs(r.RuleScore - r.StatScore)
}

// Agrees reports whether the two label lists share at least one label.
// Agreement is non-empty intersection, not equality; downstream discrepancy
// tallies assume this weaker definition. Per prd003 R5.2.
func (r ClassificationResult) Agrees() bool {
	if len(r.RuleLabels) == 0 || len(r.StatLabels) == 0 {
		return false
	}
	seen := make(map[string]bool, len(r.RuleLabels))
	for _, l := range r.RuleLabels {
		seen[l] = true
	}
	for _, l := range r.StatLabels {
		if seen[l] {
			return true
		}
	}
	return false
}

// ComparisonAnalysis aggregates one batch of classification results.
// Result order preserves the caller-supplied document order.
// Per prd003-classification R5.1-R5.5.
type ComparisonAnalysis struct {
	// Results holds the per-document classifications in input order.
	Results []ClassificationResult `json:"results" yaml:"results"`

	// ScoreCorrelation is the Pearson correlation between the rule and
	// statistical score series. Zero when the batch has fewer than two
	// documents or either series has zero variance.
	ScoreCorrelation float64 `json:"score_correlation" yaml:"score_correlation"`

	// AgreementRate is the fraction of documents whose label sets
	// intersect. Zero for an empty batch.
	AgreementRate float64 `json:"agreement_rate" yaml:"agreement_rate"`

	// FeatureVariance maps each feature name to the population variance of
	// its values across the documents that report it.
	FeatureVariance map[string]float64 `json:"feature_variance" yaml:"feature_variance"`

	// Discrepancies counts disagreeing label-set combinations by a key
	// built from the two label lists.
	Discrepancies map[string]int `json:"discrepancies" yaml:"discrepancies"`
}

// AgreementCount returns the number of documents whose label sets intersect.
func (a ComparisonAnalysis) AgreementCount() int {
	n := 0
	for _, r := range a.Results {
		if r.Agrees() {
			n++
		}
	}
	return n
}
