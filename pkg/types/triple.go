// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// TripleLevel identifies the span size a triple was extracted from.
// Per prd002-triple-extraction R2.2, R2.3.
type TripleLevel string

const (
	LevelParagraph TripleLevel = "paragraph"
	LevelSentence  TripleLevel = "sentence"
)

// SemanticTriple is one (subject, predicate, object) assertion extracted
// from a text span. Triples are immutable once created; identity is the
// three role strings alone, so confidence and source span never participate
// in equality. Per prd002-triple-extraction R3.1-R3.3.
type SemanticTriple struct {
	// Subject is the trimmed subject role string.
	Subject string `json:"subject" yaml:"subject"`

	// Predicate is the trimmed predicate role string. The at-value pattern
	// always emits the synthetic predicate "measured_at".
	Predicate string `json:"predicate" yaml:"predicate"`

	// Object is the trimmed object role string.
	Object string `json:"object" yaml:"object"`

	// SourceText is the span the triple was extracted from.
	SourceText string `json:"source_text,omitempty" yaml:"source_text,omitempty"`

	// Level records whether the source span was a paragraph or a sentence.
	Level TripleLevel `json:"level" yaml:"level"`

	// Confidence is a heuristic reliability weight in [0.5, 1.0], not a
	// probability. Per prd002 R4.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// TripleKey is the comparable identity of a SemanticTriple.
type TripleKey struct {
	Subject   string
	Predicate string
	Object    string
}

// Key returns the triple's identity. Two triples with equal keys are the
// same assertion regardless of confidence, level, or source span.
func (t SemanticTriple) Key() TripleKey {
	return TripleKey{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}

// String formats the triple for progress output and traces.
func (t SemanticTriple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.Subject, t.Predicate, t.Object)
}

// ExtractionResult holds everything one extraction pass produced for a
// single document text. Triple slices preserve discovery order; frequency
// maps key on the trimmed original-case role strings and count accepted
// triples from both levels. Per prd002-triple-extraction R5.1-R5.4.
type ExtractionResult struct {
	// DocumentID links the result to a corpus document. Set by the
	// pipeline; empty when extracting free-standing text.
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`

	// ParagraphTriples are triples found in paragraph-level spans.
	ParagraphTriples []SemanticTriple `json:"paragraph_triples" yaml:"paragraph_triples"`

	// SentenceTriples are triples found in sentence-level spans.
	SentenceTriples []SemanticTriple `json:"sentence_triples" yaml:"sentence_triples"`

	// PredicateCounts maps predicate strings to occurrence counts.
	PredicateCounts map[string]int `json:"predicate_counts" yaml:"predicate_counts"`

	// SubjectCounts maps subject strings to occurrence counts.
	SubjectCounts map[string]int `json:"subject_counts" yaml:"subject_counts"`

	// ObjectCounts maps object strings to occurrence counts.
	ObjectCounts map[string]int `json:"object_counts" yaml:"object_counts"`

	// ParagraphCount is the number of non-empty paragraphs scanned.
	ParagraphCount int `json:"paragraph_count" yaml:"paragraph_count"`

	// SentenceCount is the number of non-empty sentences scanned.
	SentenceCount int `json:"sentence_count" yaml:"sentence_count"`
}

// AllTriples returns paragraph-level then sentence-level triples as one
// slice. Sentence spans re-match inside their paragraph, so the combined
// slice can carry the same assertion twice; consumers that need identity
// semantics deduplicate via Key.
func (r ExtractionResult) AllTriples() []SemanticTriple {
	all := make([]SemanticTriple, 0, len(r.ParagraphTriples)+len(r.SentenceTriples))
	all = append(all, r.ParagraphTriples...)
	all = append(all, r.SentenceTriples...)
	return all
}

// TotalTriples returns the combined triple count across both levels.
func (r ExtractionResult) TotalTriples() int {
	return len(r.ParagraphTriples) + len(r.SentenceTriples)
}
