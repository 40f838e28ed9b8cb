// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// --- helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{
		CorpusDir:   filepath.Join(tmpDir, "corpus"),
		AnalysisDir: filepath.Join(tmpDir, "analysis"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, tmpDir
}

func writeDocumentMeta(t *testing.T, tmpDir string, doc types.Document) {
	t.Helper()
	dir := filepath.Join(tmpDir, "corpus", "metadata")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, doc.ID+".yaml"), data, 0o644))
}

func writeExtraction(t *testing.T, tmpDir, docID string, result types.ExtractionResult) {
	t.Helper()
	dir := filepath.Join(tmpDir, "analysis", "triples")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := yaml.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, docID+"-triples.yaml"), data, 0o644))
}

func writeComparison(t *testing.T, tmpDir string, analysis types.ComparisonAnalysis) {
	t.Helper()
	dir := filepath.Join(tmpDir, "analysis", "reports")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := yaml.Marshal(analysis)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, comparisonFile), data, 0o644))
}

func sampleDoc(id, title string) types.Document {
	return types.Document{
		ID:             id,
		Title:          title,
		Authors:        []string{"Adaeze Okafor"},
		Published:      time.Date(2021, 6, 10, 0, 0, 0, 0, time.UTC),
		Format:         types.FormatJATS,
		WordCount:      180,
		RelevanceScore: 7.5,
		MatchedTerms:   []string{"TNT", "detonation"},
	}
}

func sampleExtractionA() types.ExtractionResult {
	return types.ExtractionResult{
		DocumentID: "doc-a",
		ParagraphTriples: []types.SemanticTriple{
			{
				Subject: "TNT", Predicate: "detonates at", Object: "6900 m/s",
				SourceText: "TNT detonates at 6900 m/s under confinement.",
				Level:      types.LevelParagraph, Confidence: 0.9,
			},
			{
				Subject: "RDX", Predicate: "exhibits", Object: "thermal stability",
				SourceText: "RDX exhibits thermal stability below 200 C.",
				Level:      types.LevelParagraph, Confidence: 0.8,
			},
		},
		SentenceTriples: []types.SemanticTriple{
			{
				Subject: "TNT", Predicate: "detonates at", Object: "6900 m/s",
				SourceText: "TNT detonates at 6900 m/s under confinement.",
				Level:      types.LevelSentence, Confidence: 0.6,
			},
		},
		ParagraphCount: 2,
		SentenceCount:  5,
	}
}

func sampleExtractionB() types.ExtractionResult {
	return types.ExtractionResult{
		DocumentID: "doc-b",
		ParagraphTriples: []types.SemanticTriple{
			{
				Subject: "nitroglycerine", Predicate: "migrates through", Object: "propellant grain",
				SourceText: "Nitroglycerine migrates through the propellant grain.",
				Level:      types.LevelParagraph, Confidence: 0.7,
			},
		},
		ParagraphCount: 1,
		SentenceCount:  3,
	}
}

func sampleComparison() types.ComparisonAnalysis {
	return types.ComparisonAnalysis{
		Results: []types.ClassificationResult{
			{
				DocumentID: "doc-a",
				RuleScore:  0.62, StatScore: 0.55,
				RuleFeatures: map[string]float64{"triple_density": 1.5},
				StatFeatures: map[string]float64{"keyword_density": 2.2},
				RuleLabels:   []string{"high_relevance"},
				StatLabels:   []string{"high_relevance"},
			},
			{
				DocumentID: "doc-b",
				RuleScore:  0.31, StatScore: 0.4,
				RuleFeatures: map[string]float64{"triple_density": 0.5},
				StatFeatures: map[string]float64{"keyword_density": 1.1},
				RuleLabels:   []string{"moderate_relevance"},
				StatLabels:   []string{"moderate_relevance"},
			},
		},
		ScoreCorrelation: 1.0,
		AgreementRate:    1.0,
	}
}

// seedStore writes the standard two-document fixture and runs one ingest.
func seedStore(t *testing.T) (*Store, string) {
	t.Helper()
	s, tmpDir := testSetup(t)
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-a", "TNT Detonation Velocity"))
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-b", "Nitroglycerine Migration"))
	writeExtraction(t, tmpDir, "doc-a", sampleExtractionA())
	writeExtraction(t, tmpDir, "doc-b", sampleExtractionB())
	writeComparison(t, tmpDir, sampleComparison())
	ingestHelper(t, s)
	return s, tmpDir
}

func ingestHelper(t *testing.T, s *Store) IngestSummary {
	t.Helper()
	summary, err := s.Ingest(context.Background(), io.Discard)
	require.NoError(t, err)
	return summary
}

func tripleCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM triples`).Scan(&n))
	return n
}

// --- NewStore ---

func TestNewStoreCreatesSchema(t *testing.T) {
	s, _ := testSetup(t)

	for _, table := range []string{"documents", "triples", "classifications", "ingest_status", "triples_fts"} {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestNewStoreReopen(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := types.StoreConfig{
		CorpusDir:   filepath.Join(tmpDir, "corpus"),
		AnalysisDir: filepath.Join(tmpDir, "analysis"),
	}

	s1, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Schema creation must be idempotent across opens.
	s2, err := NewStore(cfg)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

// --- Ingest ---

func TestIngest(t *testing.T) {
	s, tmpDir := testSetup(t)
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-a", "TNT Detonation Velocity"))
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-b", "Nitroglycerine Migration"))
	writeExtraction(t, tmpDir, "doc-a", sampleExtractionA())
	writeExtraction(t, tmpDir, "doc-b", sampleExtractionB())
	writeComparison(t, tmpDir, sampleComparison())

	var out strings.Builder
	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Classified)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, 2, summary.Total())

	assert.Contains(t, out.String(), "documents: 2")
	assert.Contains(t, out.String(), "indexing doc-a (3 triples)")
	assert.Contains(t, out.String(), "classifications: 2")
	assert.Contains(t, out.String(), "indexed: 2, updated: 0, skipped: 0, failed: 0")

	assert.Equal(t, 4, tripleCount(t, s))

	var classCount int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM classifications`).Scan(&classCount))
	assert.Equal(t, 2, classCount)

	// Ingest refreshes the export file (R5.3).
	_, err = os.Stat(filepath.Join(tmpDir, "analysis", "index", "export.yaml"))
	assert.NoError(t, err)
}

func TestIngestSkipsUnchanged(t *testing.T) {
	s, tmpDir := testSetup(t)
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-a", "TNT Detonation Velocity"))
	writeExtraction(t, tmpDir, "doc-a", sampleExtractionA())

	first := ingestHelper(t, s)
	assert.Equal(t, 1, first.Indexed)

	second := ingestHelper(t, s)
	assert.Equal(t, 0, second.Indexed)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 3, tripleCount(t, s))
}

func TestIngestUpdateReplacesTriples(t *testing.T) {
	s, tmpDir := testSetup(t)
	writeDocumentMeta(t, tmpDir, sampleDoc("doc-a", "TNT Detonation Velocity"))
	writeExtraction(t, tmpDir, "doc-a", sampleExtractionA())
	ingestHelper(t, s)
	require.Equal(t, 3, tripleCount(t, s))

	// Rewrite the extraction with fewer triples and a newer mod time.
	smaller := sampleExtractionA()
	smaller.SentenceTriples = nil
	writeExtraction(t, tmpDir, "doc-a", smaller)
	path := filepath.Join(tmpDir, "analysis", "triples", "doc-a-triples.yaml")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	summary := ingestHelper(t, s)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, tripleCount(t, s))
}

func TestIngestStubDocument(t *testing.T) {
	s, tmpDir := testSetup(t)
	// Extraction without corpus metadata still indexes against an ID stub.
	writeExtraction(t, tmpDir, "orphan", sampleExtractionB())

	summary := ingestHelper(t, s)
	assert.Equal(t, 0, summary.Documents)
	assert.Equal(t, 1, summary.Indexed)

	results, err := s.Search(context.Background(), QueryOptions{DocumentID: "orphan"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "orphan", results[0].DocumentID)
	assert.Empty(t, results[0].DocumentTitle)
}

func TestIngestBadExtractionFile(t *testing.T) {
	s, tmpDir := testSetup(t)
	dir := filepath.Join(tmpDir, "analysis", "triples")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "broken-triples.yaml"), []byte("{{not yaml"), 0o644))
	writeExtraction(t, tmpDir, "doc-b", sampleExtractionB())

	var out strings.Builder
	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, out.String(), "failed  broken")
}

func TestIngestEmptyDirectories(t *testing.T) {
	s, _ := testSetup(t)

	summary := ingestHelper(t, s)
	assert.Equal(t, IngestSummary{}, summary)
}

// --- Search ---

func TestSearchFullText(t *testing.T) {
	s, _ := seedStore(t)

	results, err := s.Search(context.Background(), QueryOptions{Text: "migrates"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "nitroglycerine", results[0].Subject)
	assert.Equal(t, "doc-b", results[0].DocumentID)
	assert.Equal(t, "Nitroglycerine Migration", results[0].DocumentTitle)
	assert.Equal(t, []string{"Adaeze Okafor"}, results[0].DocumentAuthors)

	results, err = s.Search(context.Background(), QueryOptions{Text: "detonates"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(context.Background(), QueryOptions{Text: "plutonium"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchStructuredFilters(t *testing.T) {
	s, _ := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"all triples", QueryOptions{}, 4},
		{"by predicate", QueryOptions{Predicate: "exhibits"}, 1},
		{"by document", QueryOptions{DocumentID: "doc-a"}, 3},
		{"by level", QueryOptions{Level: types.LevelSentence}, 1},
		{"by min confidence", QueryOptions{MinConfidence: 0.75}, 2},
		{"combined", QueryOptions{DocumentID: "doc-a", Level: types.LevelParagraph}, 2},
		{"max results", QueryOptions{MaxResults: 2}, 2},
		{"text with filter", QueryOptions{Text: "detonates", Level: types.LevelSentence}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(ctx, tt.opts)
			require.NoError(t, err)
			assert.Len(t, results, tt.want)
		})
	}
}

func TestSearchOrdering(t *testing.T) {
	s, _ := seedStore(t)

	// Structured queries sort by document then extraction order.
	results, err := s.Search(context.Background(), QueryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "doc-a", results[0].DocumentID)
	assert.Equal(t, "TNT", results[0].Subject)
	assert.Equal(t, types.LevelParagraph, results[0].Level)
	assert.Equal(t, "doc-b", results[3].DocumentID)
}

// --- QueryOptions ---

func TestQueryOptionsIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		opts QueryOptions
		want bool
	}{
		{"empty", QueryOptions{}, true},
		{"max results only", QueryOptions{MaxResults: 5}, true},
		{"text", QueryOptions{Text: "TNT"}, false},
		{"predicate", QueryOptions{Predicate: "detonates at"}, false},
		{"min confidence", QueryOptions{MinConfidence: 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.IsEmpty())
		})
	}
}

// --- Export ---

func TestExportYAML(t *testing.T) {
	s, tmpDir := seedStore(t)

	require.NoError(t, s.ExportYAML(context.Background(), QueryOptions{}))

	data, err := os.ReadFile(filepath.Join(tmpDir, "analysis", "index", "export.yaml"))
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 4)
	require.NotNil(t, entries[0].Document)
	assert.Equal(t, "TNT Detonation Velocity", entries[0].Document.Title)
	assert.Equal(t, "paragraph", entries[0].Level)
}

func TestExportJSON(t *testing.T) {
	s, tmpDir := seedStore(t)

	require.NoError(t, s.ExportJSON(context.Background(), QueryOptions{Predicate: "migrates through"}))

	data, err := os.ReadFile(filepath.Join(tmpDir, "analysis", "index", "export.json"))
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "nitroglycerine", entries[0].Subject)
	assert.Equal(t, "propellant grain", entries[0].Object)
}

func TestExportHonorsLimit(t *testing.T) {
	s, tmpDir := seedStore(t)

	require.NoError(t, s.ExportYAML(context.Background(), QueryOptions{MaxResults: 2}))

	data, err := os.ReadFile(filepath.Join(tmpDir, "analysis", "index", "export.yaml"))
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)
}
