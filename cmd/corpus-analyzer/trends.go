// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-analyzer/internal/ingest"
	"github.com/pdiddy/corpus-analyzer/internal/trends"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Analyze keyword trends over publication time",
	Long: `Trends buckets keyword occurrences by publication date and fits a trend
slope per keyword. Use subcommands to run the bucketed analysis or to
compare keyword counts between two periods.`,
}

// --- analyze subcommand ---

var trendsAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Bucket keyword counts over time and rank trend slopes",
	Long: `Analyze buckets every scanned document's keyword counts by publication
interval (year, quarter, or month), fits a linear trend per keyword, and
lists emerging and declining keywords. The analysis is written to
analysis/reports/keyword-trends-[granularity].yaml.`,
	RunE: runTrendsAnalyze,
}

func runTrendsAnalyze(cmd *cobra.Command, args []string) error {
	granStr, _ := cmd.Flags().GetString("granularity")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	docs, err := loadTrendCorpus(cmd)
	if err != nil {
		return err
	}

	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	analysisDir, _ := cmd.Flags().GetString("analysis-dir")
	cfg := types.AnalysisConfig{
		CorpusDir:   corpusDir,
		AnalysisDir: analysisDir,
	}

	progress := io.Writer(os.Stdout)
	if jsonOutput {
		progress = os.Stderr
	}

	result, err := trends.AnalyzeAll(docs, types.ParseGranularity(granStr), cfg, progress)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println()
	trends.WriteReport(os.Stdout, result, top)
	return nil
}

// --- compare subcommand ---

var trendsCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare keyword counts between two periods",
	Long: `Compare sums each keyword's occurrences over two date ranges and reports
the relative change. Keywords absent from the first period but present in
the second are reported as new.`,
	RunE: runTrendsCompare,
}

func runTrendsCompare(cmd *cobra.Command, args []string) error {
	p1, err := periodFromFlags(cmd, "from1", "to1")
	if err != nil {
		return err
	}
	p2, err := periodFromFlags(cmd, "from2", "to2")
	if err != nil {
		return err
	}

	docs, err := loadTrendCorpus(cmd)
	if err != nil {
		return err
	}

	changes := trends.ComparePeriods(docs, p1, p2)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(changes)
	}

	trends.WriteComparison(os.Stdout, changes)
	return nil
}

// --- shared helpers ---

func loadTrendCorpus(cmd *cobra.Command) ([]types.Document, error) {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	docs, err := ingest.LoadCorpus(corpusDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no scanned documents under %s: run scan first", corpusDir)
	}
	return docs, nil
}

// periodFromFlags reads one date-range pair. Both bounds are required and
// must parse as YYYY-MM-DD.
func periodFromFlags(cmd *cobra.Command, fromFlag, toFlag string) (trends.Period, error) {
	fromStr, _ := cmd.Flags().GetString(fromFlag)
	toStr, _ := cmd.Flags().GetString(toFlag)
	if fromStr == "" || toStr == "" {
		return trends.Period{}, fmt.Errorf("both --%s and --%s are required (YYYY-MM-DD)", fromFlag, toFlag)
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return trends.Period{}, fmt.Errorf("parsing --%s: %w", fromFlag, err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return trends.Period{}, fmt.Errorf("parsing --%s: %w", toFlag, err)
	}

	return trends.Period{Start: from, End: to}, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	trendsCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for the corpus (contains metadata/)")
	trendsCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	// Analyze flags.
	trendsAnalyzeCmd.Flags().String("analysis-dir", "analysis", "base directory for analysis output (contains reports/)")
	trendsAnalyzeCmd.Flags().String("granularity", "year", "bucket granularity: year, quarter, or month")
	trendsAnalyzeCmd.Flags().Int("top", 0, "list only the N keywords with the highest totals (0 = all)")

	// Compare flags.
	trendsCompareCmd.Flags().String("from1", "", "first period start (YYYY-MM-DD)")
	trendsCompareCmd.Flags().String("to1", "", "first period end (YYYY-MM-DD)")
	trendsCompareCmd.Flags().String("from2", "", "second period start (YYYY-MM-DD)")
	trendsCompareCmd.Flags().String("to2", "", "second period end (YYYY-MM-DD)")

	// Wire subcommands.
	trendsCmd.AddCommand(trendsAnalyzeCmd)
	trendsCmd.AddCommand(trendsCompareCmd)

	rootCmd.AddCommand(trendsCmd)
}
