// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const (
	reportsDir = "reports"
	reportFile = "classification-comparison.yaml"
)

// Compare classifies every document under both methods and folds the results
// into one ComparisonAnalysis (R4.1-R4.4). Result order preserves document
// order; rerunning on the same batch yields an identical analysis.
func (c *Classifier) Compare(docs []types.Document) types.ComparisonAnalysis {
	results := make([]types.ClassificationResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, c.ClassifyDocument(doc))
	}
	return types.ComparisonAnalysis{
		Results:          results,
		ScoreCorrelation: scoreCorrelation(results),
		AgreementRate:    agreementRate(results),
		FeatureVariance:  featureVariance(results),
		Discrepancies:    discrepancies(results),
	}
}

// scoreCorrelation is the Pearson correlation between the rule-based and
// statistical score series. Fewer than two documents or a zero-variance
// series yields 0.
func scoreCorrelation(results []types.ClassificationResult) float64 {
	if len(results) < 2 {
		return 0
	}
	rule := make([]float64, len(results))
	stats := make([]float64, len(results))
	for i, r := range results {
		rule[i] = r.RuleScore
		stats[i] = r.StatScore
	}
	corr := stat.Correlation(rule, stats, nil)
	if math.IsNaN(corr) {
		return 0
	}
	return corr
}

// agreementRate is the fraction of documents whose two label sets intersect.
// An empty batch has rate 0.
func agreementRate(results []types.ClassificationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	agree := 0
	for _, r := range results {
		if r.Agrees() {
			agree++
		}
	}
	return float64(agree) / float64(len(results))
}

// discrepancies tallies the label-set pairings of documents whose two
// classifications share no label.
func discrepancies(results []types.ClassificationResult) map[string]int {
	out := make(map[string]int)
	for _, r := range results {
		if r.Agrees() {
			continue
		}
		key := fmt.Sprintf("rule=[%s] stat=[%s]",
			strings.Join(r.RuleLabels, ", "), strings.Join(r.StatLabels, ", "))
		out[key]++
	}
	return out
}

// featureVariance is the population variance of each feature across the
// documents that report it. When a document carries a feature under both
// methods the rule-based value wins. Fewer than two reporting documents
// yields 0 for that feature.
func featureVariance(results []types.ClassificationResult) map[string]float64 {
	names := make(map[string]struct{})
	for _, r := range results {
		for name := range r.RuleFeatures {
			names[name] = struct{}{}
		}
		for name := range r.StatFeatures {
			names[name] = struct{}{}
		}
	}

	out := make(map[string]float64, len(names))
	for name := range names {
		var values []float64
		for _, r := range results {
			if v, ok := r.RuleFeatures[name]; ok {
				values = append(values, v)
				continue
			}
			if v, ok := r.StatFeatures[name]; ok {
				values = append(values, v)
			}
		}
		if len(values) < 2 {
			out[name] = 0
			continue
		}
		out[name] = stat.PopVariance(values, nil)
	}
	return out
}

// CompareAll runs the comparison over a corpus, writes the report artifact
// under the analysis directory, and logs per-document progress to w.
func CompareAll(c *Classifier, docs []types.Document, cfg types.AnalysisConfig, w io.Writer) (types.ComparisonAnalysis, error) {
	analysis := c.Compare(docs)
	for _, r := range analysis.Results {
		fmt.Fprintf(w, "classified %s (rule %.3f, stat %.3f)\n", r.DocumentID, r.RuleScore, r.StatScore)
	}

	path := ReportPath(cfg.AnalysisDir)
	if err := WriteAnalysis(path, analysis); err != nil {
		return analysis, fmt.Errorf("writing comparison report: %w", err)
	}

	fmt.Fprintf(w, "\nBatch summary: %d classified, %d agree (rate %.2f), correlation %.3f\n",
		len(analysis.Results), analysis.AgreementCount(), analysis.AgreementRate, analysis.ScoreCorrelation)
	return analysis, nil
}

// ReportPath returns the comparison artifact location under analysisDir.
func ReportPath(analysisDir string) string {
	return filepath.Join(analysisDir, reportsDir, reportFile)
}

// WriteAnalysis writes the comparison as YAML, creating parent directories.
func WriteAnalysis(path string, analysis types.ComparisonAnalysis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := yaml.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadAnalysis loads a previously written comparison artifact.
func ReadAnalysis(path string) (types.ComparisonAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ComparisonAnalysis{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var analysis types.ComparisonAnalysis
	if err := yaml.Unmarshal(data, &analysis); err != nil {
		return types.ComparisonAnalysis{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return analysis, nil
}
