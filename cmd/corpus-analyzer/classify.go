package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-analyzer/internal/classify"
	"github.com/pdiddy/corpus-analyzer/internal/ingest"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Compare rule-based and statistical classification",
	Long: `Classify scores every scanned document twice: a rule-based classifier
built on extracted triple features, and a statistical classifier built on
keyword counts. It reports score correlation, label agreement, feature
importance, and discrepancies, and writes the comparison to
analysis/reports/classification-comparison.yaml.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus (contains metadata/)")
	classifyCmd.Flags().String("analysis-dir", "analysis", "base directory for analysis output (contains reports/)")
	classifyCmd.Flags().Bool("json", false, "output the comparison as JSON")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	analysisDir, _ := cmd.Flags().GetString("analysis-dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	docs, err := ingest.LoadCorpus(corpusDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no scanned documents under %s: run scan first", corpusDir)
	}

	cfg := types.AnalysisConfig{
		CorpusDir:   corpusDir,
		AnalysisDir: analysisDir,
	}

	// Progress goes to stderr when stdout carries JSON.
	progress := io.Writer(os.Stdout)
	if jsonOutput {
		progress = os.Stderr
	}

	analysis, err := classify.CompareAll(classify.New(), docs, cfg, progress)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Println()
	classify.WriteReport(os.Stdout, analysis)
	return nil
}
