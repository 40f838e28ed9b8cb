package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-analyzer/internal/ingest"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const (
	defaultMaxSubdirs     = 10
	defaultMaxFilesPerDir = 50
)

var scanCmd = &cobra.Command{
	Use:   "scan [input-path]",
	Short: "Scan XML articles into corpus metadata records",
	Long: `Scan walks an input directory (or reads a single XML file), parses JATS
and generic XML articles, counts domain keyword occurrences, and writes one
metadata record per document under corpus/metadata/. Already scanned
documents are skipped unless --force is given.

With --sample, scan writes a built-in four-document sample corpus and
ignores the input path.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus output (contains metadata/)")
	scanCmd.Flags().Int("max-subdirs", defaultMaxSubdirs, "maximum subdirectories scanned per input directory")
	scanCmd.Flags().Int("max-files", defaultMaxFilesPerDir, "maximum XML files scanned per directory")
	scanCmd.Flags().String("keywords-file", "", "file with one keyword per line (default: built-in lexicon)")
	scanCmd.Flags().Bool("force", false, "re-scan documents whose metadata records already exist")
	scanCmd.Flags().Bool("sample", false, "write the built-in sample corpus instead of scanning")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := scanConfig(cmd)

	if sample, _ := cmd.Flags().GetBool("sample"); sample {
		_, err := ingest.ScanSample(cfg, os.Stdout)
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("provide an input path to scan, or use --sample")
	}

	summary, err := ingest.ScanBatch(args[0], cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed scanning", summary.Failed)
	}
	return nil
}

func scanConfig(cmd *cobra.Command) types.ScanConfig {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	maxSubdirs, _ := cmd.Flags().GetInt("max-subdirs")
	maxFiles, _ := cmd.Flags().GetInt("max-files")
	keywordsFile, _ := cmd.Flags().GetString("keywords-file")
	force, _ := cmd.Flags().GetBool("force")

	return types.ScanConfig{
		CorpusDir:      corpusDir,
		MaxSubdirs:     maxSubdirs,
		MaxFilesPerDir: maxFiles,
		KeywordsFile:   keywordsFile,
		Force:          force,
	}
}
