// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- DocumentID ---

func TestDocumentID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"papers/Journal.Pone.0001234.XML", "journal-pone-0001234"},
		{"My Paper (v2).xml", "my-paper-v2"},
		{"simple.xml", "simple"},
		{"/abs/path/data_2020.xml", "data-2020"},
		{"noext", "noext"},
		{"___.xml", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DocumentID(tt.path); got != tt.want {
				t.Errorf("DocumentID(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// --- NewScanner / countKeywords ---

func TestNewScannerSkipsBlankTerms(t *testing.T) {
	s := NewScanner([]string{" ", "", "TNT"})
	if len(s.terms) != 1 {
		t.Errorf("len(terms) = %d, want 1", len(s.terms))
	}
}

func TestCountKeywords(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		text  string
		want  map[string]int
	}{
		{
			name:  "word boundaries block partial matches",
			terms: []string{"TNT", "detonation"},
			text:  "Detonation tests; detonations continue. TNT!",
			want:  map[string]int{"TNT": 1, "detonation": 1},
		},
		{
			name:  "no substring false positives",
			terms: []string{"ate"},
			text:  "detonate at a rate",
			want:  nil,
		},
		{
			name:  "phrases match as substrings",
			terms: []string{"ammonium nitrate"},
			text:  "Ammonium Nitrate stores held ammonium nitrate.",
			want:  map[string]int{"ammonium nitrate": 2},
		},
		{
			name:  "case insensitive",
			terms: []string{"RDX"},
			text:  "rdx and RDX and Rdx",
			want:  map[string]int{"RDX": 3},
		},
		{
			name:  "no matches",
			terms: []string{"TNT"},
			text:  "nothing relevant here",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewScanner(tt.terms).countKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("countKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- ScanFile ---

func TestScanFileJATS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Article1.xml")
	writeFile(t, path, jatsFixture)

	s := NewScanner([]string{"RDX", "temperature"})
	doc, err := s.ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile returned error: %v", err)
	}

	if got, want := doc.ID, "article1"; got != want {
		t.Errorf("ID = %q, want %q", got, want)
	}
	if doc.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", doc.SourcePath, path)
	}
	if doc.ScannedAt.IsZero() {
		t.Error("ScannedAt is zero")
	}
	if got, want := doc.WordCount, 21; got != want {
		t.Errorf("WordCount = %d, want %d", got, want)
	}
	wantCounts := map[string]int{"RDX": 3, "temperature": 1}
	if !reflect.DeepEqual(doc.KeywordCounts, wantCounts) {
		t.Errorf("KeywordCounts = %v, want %v", doc.KeywordCounts, wantCounts)
	}
	if got, want := doc.MatchedTerms, []string{"RDX", "temperature"}; !reflect.DeepEqual(got, want) {
		t.Errorf("MatchedTerms = %v, want %v", got, want)
	}
	wantScore := 100.0*4.0/21.0 + 0.5*2.0
	if !almostEqual(doc.RelevanceScore, wantScore) {
		t.Errorf("RelevanceScore = %v, want %v", doc.RelevanceScore, wantScore)
	}
}

func TestScanFileNoMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.xml")
	writeFile(t, path, `<memo><title>Lunch</title><p>Sandwich orders due.</p></memo>`)

	doc, err := NewScanner([]string{"TNT"}).ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile returned error: %v", err)
	}
	if doc.KeywordCounts != nil {
		t.Errorf("KeywordCounts = %v, want nil", doc.KeywordCounts)
	}
	if doc.MatchedTerms != nil {
		t.Errorf("MatchedTerms = %v, want nil", doc.MatchedTerms)
	}
	if doc.RelevanceScore != 0 {
		t.Errorf("RelevanceScore = %v, want 0", doc.RelevanceScore)
	}
}

// --- CollectFiles ---

func TestCollectFiles(t *testing.T) {
	input := t.TempDir()
	writeFile(t, filepath.Join(input, "a", "x1.xml"), "<doc/>")
	writeFile(t, filepath.Join(input, "a", "x2.xml"), "<doc/>")
	writeFile(t, filepath.Join(input, "a", "skip.txt"), "text")
	writeFile(t, filepath.Join(input, "b", "y1.xml"), "<doc/>")
	writeFile(t, filepath.Join(input, "c", "z1.xml"), "<doc/>")
	writeFile(t, filepath.Join(input, "direct1.xml"), "<doc/>")
	writeFile(t, filepath.Join(input, "notes.txt"), "text")

	t.Run("limits and order", func(t *testing.T) {
		cfg := types.ScanConfig{MaxSubdirs: 2, MaxFilesPerDir: 1}
		got, err := CollectFiles(input, cfg)
		if err != nil {
			t.Fatalf("CollectFiles returned error: %v", err)
		}
		want := []string{
			filepath.Join(input, "a", "x1.xml"),
			filepath.Join(input, "b", "y1.xml"),
			filepath.Join(input, "direct1.xml"),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CollectFiles() = %v, want %v", got, want)
		}
	})

	t.Run("zero limits select nothing", func(t *testing.T) {
		got, err := CollectFiles(input, types.ScanConfig{})
		if err != nil {
			t.Fatalf("CollectFiles returned error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("CollectFiles() = %v, want empty", got)
		}
	})

	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(input, "direct1.xml")
		got, err := CollectFiles(path, types.ScanConfig{})
		if err != nil {
			t.Fatalf("CollectFiles returned error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{path}) {
			t.Errorf("CollectFiles() = %v, want [%s]", got, path)
		}
	})

	t.Run("single non-XML file", func(t *testing.T) {
		if _, err := CollectFiles(filepath.Join(input, "notes.txt"), types.ScanConfig{}); err == nil {
			t.Error("CollectFiles returned nil error for non-XML file")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		if _, err := CollectFiles(filepath.Join(input, "nope"), types.ScanConfig{}); err == nil {
			t.Error("CollectFiles returned nil error for missing path")
		}
	})
}

// --- ScanBatch ---

func TestScanBatch(t *testing.T) {
	input := t.TempDir()
	corpus := t.TempDir()
	writeFile(t, filepath.Join(input, "alpha.xml"), jatsFixture)
	writeFile(t, filepath.Join(input, "broken.xml"), "no markup here at all")

	cfg := types.ScanConfig{CorpusDir: corpus, MaxSubdirs: 3, MaxFilesPerDir: 10}

	var out bytes.Buffer
	sum, err := ScanBatch(input, cfg, &out)
	if err != nil {
		t.Fatalf("ScanBatch returned error: %v", err)
	}
	if sum.Scanned != 1 || sum.Skipped != 0 || sum.Failed != 1 {
		t.Errorf("summary = %+v, want 1 scanned, 0 skipped, 1 failed", sum)
	}
	if !sum.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
	for _, want := range []string{
		"scanned alpha (",
		"failed  broken:",
		"Batch summary: 1 scanned, 0 skipped, 1 failed (total: 2)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat(MetadataPath(corpus, "alpha")); err != nil {
		t.Errorf("metadata record not written: %v", err)
	}

	// Rerun skips the already-scanned document.
	out.Reset()
	sum, err = ScanBatch(input, cfg, &out)
	if err != nil {
		t.Fatalf("ScanBatch rerun returned error: %v", err)
	}
	if sum.Scanned != 0 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Errorf("rerun summary = %+v, want 0 scanned, 1 skipped, 1 failed", sum)
	}
	if !strings.Contains(out.String(), "skipped alpha (already scanned)") {
		t.Errorf("rerun output missing skip line:\n%s", out.String())
	}

	// Force rescans.
	cfg.Force = true
	out.Reset()
	sum, err = ScanBatch(input, cfg, &out)
	if err != nil {
		t.Fatalf("ScanBatch force rerun returned error: %v", err)
	}
	if sum.Scanned != 1 || sum.Skipped != 0 {
		t.Errorf("force summary = %+v, want 1 scanned, 0 skipped", sum)
	}
}

func TestScanBatchMissingInput(t *testing.T) {
	cfg := types.ScanConfig{CorpusDir: t.TempDir(), MaxSubdirs: 1, MaxFilesPerDir: 1}
	if _, err := ScanBatch(filepath.Join(t.TempDir(), "nope"), cfg, &bytes.Buffer{}); err == nil {
		t.Error("ScanBatch returned nil error for missing input")
	}
}

// --- Keywords ---

func TestKeywords(t *testing.T) {
	t.Run("default lexicon", func(t *testing.T) {
		terms, err := Keywords(types.ScanConfig{})
		if err != nil {
			t.Fatalf("Keywords returned error: %v", err)
		}
		found := false
		for _, term := range terms {
			if term == "TNT" {
				found = true
			}
		}
		if !found {
			t.Errorf("default terms missing TNT: %v", terms)
		}
	})

	t.Run("keywords file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.txt")
		writeFile(t, path, "TNT\n\n# comment\nRDX\n")
		terms, err := Keywords(types.ScanConfig{KeywordsFile: path})
		if err != nil {
			t.Fatalf("Keywords returned error: %v", err)
		}
		if want := []string{"TNT", "RDX"}; !reflect.DeepEqual(terms, want) {
			t.Errorf("Keywords() = %v, want %v", terms, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := types.ScanConfig{KeywordsFile: filepath.Join(t.TempDir(), "nope.txt")}
		if _, err := Keywords(cfg); err == nil {
			t.Error("Keywords returned nil error for missing file")
		}
	})
}

// --- metadata records ---

func TestWriteReadDocument(t *testing.T) {
	corpus := t.TempDir()
	want := types.Document{
		ID:             "w1",
		Format:         types.FormatGeneric,
		Title:          "Storage Survey",
		WordCount:      42,
		KeywordCounts:  map[string]int{"TNT": 2},
		RelevanceScore: 5.7619,
		MatchedTerms:   []string{"TNT"},
		Published:      time.Date(2020, time.May, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := WriteDocument(corpus, want); err != nil {
		t.Fatalf("WriteDocument returned error: %v", err)
	}

	got, err := ReadDocument(corpus, "w1")
	if err != nil {
		t.Fatalf("ReadDocument returned error: %v", err)
	}
	if got.ID != want.ID || got.Title != want.Title || got.WordCount != want.WordCount {
		t.Errorf("ReadDocument() = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(got.KeywordCounts, want.KeywordCounts) {
		t.Errorf("KeywordCounts = %v, want %v", got.KeywordCounts, want.KeywordCounts)
	}
	if !got.Published.Equal(want.Published) {
		t.Errorf("Published = %v, want %v", got.Published, want.Published)
	}
}

func TestReadDocumentMissing(t *testing.T) {
	if _, err := ReadDocument(t.TempDir(), "nope"); err == nil {
		t.Error("ReadDocument returned nil error for missing record")
	}
}

func TestLoadCorpus(t *testing.T) {
	corpus := t.TempDir()
	for _, id := range []string{"beta", "alpha"} {
		if err := WriteDocument(corpus, types.Document{ID: id}); err != nil {
			t.Fatalf("WriteDocument returned error: %v", err)
		}
	}
	writeFile(t, filepath.Join(corpus, metadataDir, "readme.txt"), "not a record")

	docs, err := LoadCorpus(corpus)
	if err != nil {
		t.Fatalf("LoadCorpus returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].ID != "alpha" || docs[1].ID != "beta" {
		t.Errorf("order = [%s, %s], want [alpha, beta]", docs[0].ID, docs[1].ID)
	}
}

func TestLoadCorpusMissing(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("LoadCorpus returned nil error for missing corpus")
	}
}
