// Package extract turns document text into semantic triples with heuristic
// confidence scores, and filters them for domain relevance.
// Implements: prd002-triple-extraction (R3-R7);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-analyzer/internal/lexicon"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const triplesDir = "triples"

// Confidence scoring constants (R4.1-R4.5). Boosts are additive over the
// base and the sum is clamped to the ceiling, so accepted confidence always
// lands in [0.5, 1.0].
const (
	confidenceBase    = 0.5
	entityBoost       = 0.3
	actionVerbBoost   = 0.2
	propertyBoost     = 0.2
	confidenceCeiling = 1.0
)

// Extractor applies the pattern table to document text. It owns a read-only
// lexicon and carries no per-call state, so one instance is safe to share
// across documents and goroutines.
type Extractor struct {
	lex lexicon.Lexicon
}

// New returns an Extractor over the built-in lexicon.
func New() *Extractor {
	return &Extractor{lex: lexicon.Default()}
}

// NewWithLexicon returns an Extractor over a caller-supplied lexicon.
func NewWithLexicon(lex lexicon.Lexicon) *Extractor {
	return &Extractor{lex: lex}
}

// Extract splits text into paragraph and sentence spans, applies every
// pattern to each span, and folds the accepted triples into an
// ExtractionResult (R5.1-R5.4). Empty text yields zero triples, zero
// paragraphs, and zero sentences.
func (x *Extractor) Extract(text string) types.ExtractionResult {
	result := types.ExtractionResult{
		PredicateCounts: make(map[string]int),
		SubjectCounts:   make(map[string]int),
		ObjectCounts:    make(map[string]int),
	}

	paragraphs := splitParagraphs(text)
	result.ParagraphCount = len(paragraphs)

	for _, paragraph := range paragraphs {
		for _, t := range x.scanSpan(paragraph, types.LevelParagraph) {
			result.ParagraphTriples = append(result.ParagraphTriples, t)
			countTriple(&result, t)
		}

		sentences := splitSentences(paragraph)
		result.SentenceCount += len(sentences)
		for _, sentence := range sentences {
			for _, t := range x.scanSpan(sentence, types.LevelSentence) {
				result.SentenceTriples = append(result.SentenceTriples, t)
				countTriple(&result, t)
			}
		}
	}

	return result
}

// ExtractDocument runs Extract over a document's analysis text and stamps
// the result with the document ID.
func (x *Extractor) ExtractDocument(doc types.Document) types.ExtractionResult {
	result := x.Extract(doc.AnalysisText())
	result.DocumentID = doc.ID
	return result
}

// FilterRelevant keeps triples whose concatenated roles contain any domain
// entity or property term (R7.1). Order-preserving and pure.
func (x *Extractor) FilterRelevant(triples []types.SemanticTriple) []types.SemanticTriple {
	return FilterRelevant(x.lex, triples)
}

// FilterRelevant is the package-level form for callers holding their own
// lexicon.
func FilterRelevant(lex lexicon.Lexicon, triples []types.SemanticTriple) []types.SemanticTriple {
	var relevant []types.SemanticTriple
	for _, t := range triples {
		if lex.Relevant(t.Subject + " " + t.Predicate + " " + t.Object) {
			relevant = append(relevant, t)
		}
	}
	return relevant
}

// confidence scores one accepted triple (R4.1-R4.5).
func (x *Extractor) confidence(subject, predicate, object string) float64 {
	score := confidenceBase
	if x.lex.ContainsEntity(subject) || x.lex.ContainsEntity(object) {
		score += entityBoost
	}
	if x.lex.IsActionVerb(predicate) {
		score += actionVerbBoost
	}
	if x.lex.ContainsProperty(object) {
		score += propertyBoost
	}
	if score > confidenceCeiling {
		score = confidenceCeiling
	}
	return score
}

// countTriple updates the role frequency maps for one accepted triple.
// Triples from both levels count.
func countTriple(result *types.ExtractionResult, t types.SemanticTriple) {
	result.PredicateCounts[t.Predicate]++
	result.SubjectCounts[t.Subject]++
	result.ObjectCounts[t.Object]++
}

// Summary holds counts from a batch extraction run (R6.4).
type Summary struct {
	Extracted int
	Skipped   int
	Failed    int
	Triples   int
	Relevant  int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed (R6.5).
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll runs the extractor over every document and writes one triples
// file per document under the analysis directory (R6.1-R6.3). Extraction is
// deterministic and cheap, so existing files are rewritten rather than
// change-checked; documents with no text are skipped. Per-document failures
// do not stop the batch.
func ExtractAll(x *Extractor, docs []types.Document, cfg types.ExtractionConfig, w io.Writer) (Summary, error) {
	outDir := filepath.Join(cfg.AnalysisDir, triplesDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating triples directory: %w", err)
	}

	var summary Summary
	for _, doc := range docs {
		if strings.TrimSpace(doc.AnalysisText()) == "" {
			fmt.Fprintf(w, "skipped %s (no text)\n", doc.ID)
			summary.Skipped++
			continue
		}

		result := x.ExtractDocument(doc)
		relevant := x.FilterRelevant(result.AllTriples())

		if err := WriteResult(ResultPath(cfg.AnalysisDir, doc.ID), result); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d triples, %d relevant)\n",
			doc.ID, result.TotalTriples(), len(relevant))
		summary.Extracted++
		summary.Triples += result.TotalTriples()
		summary.Relevant += len(relevant)
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// ResultPath returns the triples file path for a document.
func ResultPath(analysisDir, docID string) string {
	return filepath.Join(analysisDir, triplesDir, docID+"-triples.yaml")
}

// WriteResult marshals an ExtractionResult to a YAML file (R6.2).
func WriteResult(path string, result types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads an ExtractionResult from a YAML file.
func ReadResult(path string) (types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("reading result: %w", err)
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return types.ExtractionResult{}, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return result, nil
}

// LoadResults reads every triples file under the analysis directory.
// os.ReadDir returns entries sorted by name, so the order is deterministic.
func LoadResults(analysisDir string) ([]types.ExtractionResult, error) {
	dir := filepath.Join(analysisDir, triplesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading triples directory %s: %w", dir, err)
	}

	var results []types.ExtractionResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		r, err := ReadResult(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
