// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-analyzer/internal/store"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the results store (ingest, search, export)",
	Long: `Store manages a local SQLite database built from scan, extraction, and
classification artifacts. Use subcommands to index results, query them
with full-text search, or export.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index pipeline artifacts into the results store",
	Long: `Ingest reads document metadata from corpus/metadata/, triple extractions
from analysis/triples/, and the classification comparison report, and
indexes them into a SQLite database with FTS5 search. Unchanged extraction
files are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d extraction file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the results store with full-text search and filters",
	Long: `Search queries indexed triples using FTS5 full-text search over subject,
predicate, object, and source text, structured filters, or a combination
of both. Results include the source document's metadata.`,
	RunE: runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --predicate, --document, --level, or --min-confidence")
	}

	results, err := s.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-22s  %-18s  %-26s  %-9s  %-5s  %s\n",
		"Rank", "Subject", "Predicate", "Object", "Level", "Conf", "Document")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-22s  %-18s  %-26s  %-9s  %.2f  %s\n",
			i+1, truncate(r.Subject, 22), truncate(r.Predicate, 18),
			truncate(r.Object, 26), r.Level, r.Confidence, r.DocumentID)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the results store to YAML or JSON",
	Long: `Export writes the full triple store (or a filtered subset) to
analysis/index/export.yaml or export.json. Supports the same filter flags
as search for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := storeConfig(cmd)
	s, err := store.NewStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.AnalysisDir, "index", "export.yaml"))
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.AnalysisDir, "index", "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	if corpusDir == "" {
		corpusDir = "corpus"
	}
	analysisDir, _ := cmd.Flags().GetString("analysis-dir")
	if analysisDir == "" {
		analysisDir = "analysis"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.StoreConfig{
		CorpusDir:   corpusDir,
		AnalysisDir: analysisDir,
		MaxResults:  maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	predicate, _ := cmd.Flags().GetString("predicate")
	documentID, _ := cmd.Flags().GetString("document")
	level, _ := cmd.Flags().GetString("level")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Text:          queryText,
		Predicate:     predicate,
		DocumentID:    documentID,
		Level:         types.TripleLevel(level),
		MinConfidence: minConfidence,
		MaxResults:    limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for the corpus (contains metadata/)")
	storeCmd.PersistentFlags().String("analysis-dir", "analysis", "base directory for analysis artifacts (contains triples/, reports/, index/)")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	storeSearchCmd.Flags().String("query", "", "full-text search query")
	storeSearchCmd.Flags().String("predicate", "", "filter by normalized predicate")
	storeSearchCmd.Flags().String("document", "", "filter by document ID")
	storeSearchCmd.Flags().String("level", "", "filter by extraction level: paragraph or sentence")
	storeSearchCmd.Flags().Float64("min-confidence", 0, "drop triples scored below the threshold")
	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("predicate", "", "filter by predicate for partial export")
	storeExportCmd.Flags().String("document", "", "filter by document ID for partial export")
	storeExportCmd.Flags().String("level", "", "filter by extraction level for partial export")
	storeExportCmd.Flags().Float64("min-confidence", 0, "confidence threshold for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum triples to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
