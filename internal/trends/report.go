// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trends

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const reportsDir = "reports"

// AnalyzeAll runs the analysis, writes the trend artifact under the analysis
// directory, and logs a summary line to w.
func AnalyzeAll(docs []types.Document, granularity types.Granularity, cfg types.AnalysisConfig, w io.Writer) (types.TemporalAnalysisResult, error) {
	result := Analyze(docs, granularity)

	path := ResultPath(cfg.AnalysisDir, granularity)
	if err := WriteResult(path, result); err != nil {
		return result, fmt.Errorf("writing trend report: %w", err)
	}

	fmt.Fprintf(w, "analyzed %d documents (%d keywords, %d emerging, %d declining)\n",
		result.TotalDocuments, len(result.Trends), len(result.Emerging), len(result.Declining))
	return result, nil
}

// ResultPath returns the trend artifact location for a granularity.
func ResultPath(analysisDir string, granularity types.Granularity) string {
	name := fmt.Sprintf("keyword-trends-%s.yaml", granularity)
	return filepath.Join(analysisDir, reportsDir, name)
}

// WriteResult writes the analysis as YAML, creating parent directories.
func WriteResult(path string, result types.TemporalAnalysisResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling trends: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadResult loads a previously written trend artifact.
func ReadResult(path string) (types.TemporalAnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.TemporalAnalysisResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var result types.TemporalAnalysisResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return types.TemporalAnalysisResult{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return result, nil
}

// WriteReport renders a temporal analysis run for terminal consumption.
// top bounds the keyword bucket listing; values <= 0 list every keyword.
func WriteReport(w io.Writer, result types.TemporalAnalysisResult, top int) {
	fmt.Fprintf(w, "Temporal keyword analysis:\n")
	fmt.Fprintf(w, "  granularity:      %s\n", result.Granularity)
	fmt.Fprintf(w, "  total documents:  %d\n", result.TotalDocuments)
	fmt.Fprintf(w, "  keywords tracked: %d\n", len(result.Trends))

	fmt.Fprintf(w, "\nEmerging keywords:\n")
	if len(result.Emerging) == 0 {
		fmt.Fprintf(w, "  (none)\n")
	}
	for _, keyword := range result.Emerging {
		fmt.Fprintf(w, "  %s (slope %+.3f)\n", keyword, result.Trends[keyword].Slope)
	}

	fmt.Fprintf(w, "\nDeclining keywords:\n")
	if len(result.Declining) == 0 {
		fmt.Fprintf(w, "  (none)\n")
	}
	for _, keyword := range result.Declining {
		fmt.Fprintf(w, "  %s (slope %+.3f)\n", keyword, result.Trends[keyword].Slope)
	}

	fmt.Fprintf(w, "\nKeyword buckets:\n")
	keywords := rankedKeywords(result.Trends)
	if top > 0 && len(keywords) > top {
		keywords = keywords[:top]
	}
	for _, keyword := range keywords {
		trend := result.Trends[keyword]
		fmt.Fprintf(w, "  %-20s %s (slope %+.3f, total %d)\n",
			keyword, bucketLine(trend), trend.Slope, trend.TotalCount())
	}
	if hidden := len(result.Trends) - len(keywords); hidden > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", hidden)
	}
}

// WriteComparison renders a period comparison, largest increases first.
// Keywords new to the second period sort ahead of finite changes.
func WriteComparison(w io.Writer, changes map[string]float64) {
	fmt.Fprintf(w, "Period comparison (%d keywords):\n", len(changes))

	keywords := make([]string, 0, len(changes))
	for keyword := range changes {
		keywords = append(keywords, keyword)
	}
	sort.Slice(keywords, func(i, j int) bool {
		ci, cj := changes[keywords[i]], changes[keywords[j]]
		if ci != cj {
			return ci > cj
		}
		return keywords[i] < keywords[j]
	})

	for _, keyword := range keywords {
		fmt.Fprintf(w, "  %-20s %s\n", keyword, formatChange(changes[keyword]))
	}
}

func formatChange(change float64) string {
	if math.IsInf(change, 1) {
		return "new"
	}
	return fmt.Sprintf("%+.2f%%", change*100)
}

func bucketLine(trend types.KeywordTrend) string {
	parts := make([]string, 0, len(trend.Counts))
	for _, c := range trend.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Interval, c.Count))
	}
	return strings.Join(parts, " ")
}

// rankedKeywords orders keywords by descending total count, then name.
func rankedKeywords(trends map[string]types.KeywordTrend) []string {
	keywords := make([]string, 0, len(trends))
	for keyword := range trends {
		keywords = append(keywords, keyword)
	}
	sort.Slice(keywords, func(i, j int) bool {
		ti, tj := trends[keywords[i]].TotalCount(), trends[keywords[j]].TotalCount()
		if ti != tj {
			return ti > tj
		}
		return keywords[i] < keywords[j]
	})
	return keywords
}
