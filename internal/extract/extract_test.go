package extract

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// sampleText is one paragraph with three extractable sentences.
const sampleText = "TNT detonates at high temperature. The explosive shows increased " +
	"sensitivity to pressure. Nitroglycerine reacts with nitrocellulose to form propellant."

// --- Extract ---

func TestExtractEmptyText(t *testing.T) {
	x := New()

	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		result := x.Extract(text)
		if result.TotalTriples() != 0 {
			t.Errorf("Extract(%q) produced %d triples, want 0", text, result.TotalTriples())
		}
		if result.ParagraphCount != 0 {
			t.Errorf("Extract(%q) ParagraphCount = %d, want 0", text, result.ParagraphCount)
		}
		if result.SentenceCount != 0 {
			t.Errorf("Extract(%q) SentenceCount = %d, want 0", text, result.SentenceCount)
		}
	}
}

func TestExtractSampleText(t *testing.T) {
	x := New()
	result := x.Extract(sampleText)

	if result.ParagraphCount != 1 {
		t.Errorf("ParagraphCount = %d, want 1", result.ParagraphCount)
	}
	if result.SentenceCount != 3 {
		t.Errorf("SentenceCount = %d, want 3", result.SentenceCount)
	}

	// The detonation sentence yields a triple at both levels.
	if got := result.PredicateCounts["detonates"]; got != 2 {
		t.Errorf("PredicateCounts[detonates] = %d, want 2 (paragraph and sentence)", got)
	}
	if len(result.ParagraphTriples) == 0 || len(result.SentenceTriples) == 0 {
		t.Fatalf("expected triples at both levels: paragraph=%d sentence=%d",
			len(result.ParagraphTriples), len(result.SentenceTriples))
	}

	for _, tr := range result.AllTriples() {
		if tr.Confidence < 0.5 || tr.Confidence > 1.0 {
			t.Errorf("confidence %v out of [0.5, 1.0] for %v", tr.Confidence, tr)
		}
	}

	// Frequency maps count both levels.
	total := 0
	for _, n := range result.SubjectCounts {
		total += n
	}
	if total != result.TotalTriples() {
		t.Errorf("subject counts sum to %d, want %d", total, result.TotalTriples())
	}
}

func TestExtractLevels(t *testing.T) {
	x := New()
	result := x.Extract(sampleText)

	for _, tr := range result.ParagraphTriples {
		if tr.Level != types.LevelParagraph {
			t.Errorf("paragraph triple carries level %q", tr.Level)
		}
	}
	for _, tr := range result.SentenceTriples {
		if tr.Level != types.LevelSentence {
			t.Errorf("sentence triple carries level %q", tr.Level)
		}
	}
}

// --- confidence ---

func TestConfidenceScoring(t *testing.T) {
	x := New()

	tests := []struct {
		name                       string
		subject, predicate, object string
		want                       float64
	}{
		{"base only", "alpha", "beta", "gamma", 0.5},
		{"entity in subject", "TNT residue", "beta", "gamma", 0.8},
		{"entity in object", "alpha", "beta", "the explosive", 0.8},
		{"action verb", "alpha", "shows", "gamma", 0.7},
		{"property in object", "alpha", "beta", "high temperature", 0.7},
		{"entity plus verb", "RDX", "contains", "gamma", 1.0},
		{"all boosts clamp to one", "TNT", "detonates", "at high temperature", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.confidence(tt.subject, tt.predicate, tt.object)
			if got != tt.want {
				t.Errorf("confidence(%q, %q, %q) = %v, want %v",
					tt.subject, tt.predicate, tt.object, got, tt.want)
			}
		})
	}
}

// --- FilterRelevant ---

func TestFilterRelevant(t *testing.T) {
	x := New()

	triples := []types.SemanticTriple{
		{Subject: "TNT", Predicate: "shows", Object: "decomposition"},
		{Subject: "the cat", Predicate: "shows", Object: "whiskers"},
		{Subject: "alpha", Predicate: "measured_at", Object: "high temperature"},
	}
	relevant := x.FilterRelevant(triples)

	if len(relevant) != 2 {
		t.Fatalf("FilterRelevant kept %d triples, want 2: %v", len(relevant), relevant)
	}
	if relevant[0].Subject != "TNT" || relevant[1].Object != "high temperature" {
		t.Errorf("FilterRelevant reordered output: %v", relevant)
	}

	if got := x.FilterRelevant(nil); len(got) != 0 {
		t.Errorf("FilterRelevant(nil) = %v, want empty", got)
	}
}

// --- ExtractDocument ---

func TestExtractDocument(t *testing.T) {
	x := New()
	doc := types.Document{
		ID:       "doc-1",
		Title:    "Ignored by extraction",
		Abstract: "TNT detonates at high temperature.",
		FullText: "RDX contains nitrogen atoms.",
	}

	result := x.ExtractDocument(doc)
	if result.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q, want doc-1", result.DocumentID)
	}
	if result.PredicateCounts["detonates"] == 0 {
		t.Errorf("abstract text not extracted")
	}
	if result.PredicateCounts["contains"] == 0 {
		t.Errorf("full text not extracted")
	}
	// Title is not part of the analysis text.
	if result.SubjectCounts["Ignored by extraction"] != 0 {
		t.Errorf("title leaked into extraction")
	}
}

// --- ExtractAll (batch processing) ---

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	x := New()

	docs := []types.Document{
		{ID: "doc-1", Abstract: sampleText, Published: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "doc-2"}, // no text
	}
	cfg := types.ExtractionConfig{CorpusDir: dir, AnalysisDir: dir}

	var buf bytes.Buffer
	summary, err := ExtractAll(x, docs, cfg, &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	if summary.Extracted != 1 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 extracted, 1 skipped, 0 failed", summary)
	}
	if summary.Total() != 2 {
		t.Errorf("Total() = %d, want 2", summary.Total())
	}
	if summary.HasFailures() {
		t.Errorf("HasFailures() = true, want false")
	}
	if summary.Triples == 0 || summary.Relevant == 0 {
		t.Errorf("summary counts empty: %+v", summary)
	}

	out := buf.String()
	if !strings.Contains(out, "extracted doc-1") {
		t.Errorf("output missing extraction line: %q", out)
	}
	if !strings.Contains(out, "skipped doc-2 (no text)") {
		t.Errorf("output missing skip line: %q", out)
	}
	if !strings.Contains(out, "Batch summary:") {
		t.Errorf("output missing batch summary: %q", out)
	}

	// The triples file must exist and load back.
	if _, err := os.Stat(ResultPath(dir, "doc-1")); err != nil {
		t.Fatalf("triples file not written: %v", err)
	}
	results, err := LoadResults(dir)
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("LoadResults returned %d results, want 1", len(results))
	}
	if results[0].DocumentID != "doc-1" {
		t.Errorf("loaded DocumentID = %q, want doc-1", results[0].DocumentID)
	}
	if results[0].TotalTriples() != summary.Triples {
		t.Errorf("loaded %d triples, summary says %d", results[0].TotalTriples(), summary.Triples)
	}
}

func TestReadResultMissing(t *testing.T) {
	if _, err := ReadResult("/nonexistent/result.yaml"); err == nil {
		t.Errorf("expected error for missing result file")
	}
}
