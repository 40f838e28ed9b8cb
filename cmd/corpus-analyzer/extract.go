package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-analyzer/internal/extract"
	"github.com/pdiddy/corpus-analyzer/internal/ingest"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [doc-ids...]",
	Short: "Extract semantic triples from scanned documents",
	Long: `Extract runs pattern-based semantic triple extraction over scanned
documents at paragraph and sentence level, and writes one triples file per
document under analysis/triples/. Name document IDs to extract specific
documents, or pass --batch to process the whole corpus. Extraction is
deterministic, so existing triples files are rewritten.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus (contains metadata/)")
	extractCmd.Flags().String("analysis-dir", "analysis", "base directory for analysis output (contains triples/)")
	extractCmd.Flags().Bool("batch", false, "process every scanned document in corpus-dir")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	analysisDir, _ := cmd.Flags().GetString("analysis-dir")
	batch, _ := cmd.Flags().GetBool("batch")

	if len(args) == 0 && !batch {
		return fmt.Errorf("provide one or more document IDs, or use --batch for the whole corpus")
	}

	docs, err := extractionTargets(corpusDir, args, batch)
	if err != nil {
		return err
	}

	cfg := types.ExtractionConfig{
		CorpusDir:   corpusDir,
		AnalysisDir: analysisDir,
	}

	summary, err := extract.ExtractAll(extract.New(), docs, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}

// extractionTargets resolves the documents to extract: the named IDs, or the
// whole corpus when batch is set. Named IDs must already be scanned.
func extractionTargets(corpusDir string, ids []string, batch bool) ([]types.Document, error) {
	if batch {
		docs, err := ingest.LoadCorpus(corpusDir)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("no scanned documents under %s: run scan first", corpusDir)
		}
		return docs, nil
	}

	docs := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := ingest.ReadDocument(corpusDir, id)
		if err != nil {
			return nil, fmt.Errorf("loading document %s: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
