// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the corpus-analyzer pipeline.
// Implements: prd001-corpus-scan (Document, R2.6, R3.1-R3.4);
//
//	prd002-triple-extraction (SemanticTriple, ExtractionResult, R2-R5);
//	prd003-classification (ClassificationResult, ComparisonAnalysis, R4-R5);
//	prd004-temporal-trends (KeywordTrend, TemporalAnalysisResult, R1-R4).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import (
	"strings"
	"time"
)

// DocumentFormat identifies which parser produced a scanned document record.
// Per prd001-corpus-scan R2.6.
type DocumentFormat string

const (
	FormatJATS    DocumentFormat = "jats"
	FormatGeneric DocumentFormat = "generic"
	FormatSample  DocumentFormat = "sample"
)

// Document is one scanned article as the analysis core sees it. The scanner
// fills every field; downstream stages treat records as read-only.
// Per prd001-corpus-scan R3.1-R3.4.
type Document struct {
	// ID is a slug derived from the source file name.
	ID string `json:"id" yaml:"id"`

	// SourcePath is the XML file the record was scanned from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// Format records which parser produced the record: jats, generic, or sample.
	Format DocumentFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Title is the article title. Empty when the source lacks one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists the article authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the article abstract text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// FullText is the article body text with markup stripped.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Published is the publication date. Documents with a zero Published
	// are excluded from temporal bucketing but still counted in totals.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// WordCount is the whitespace-token count over title, abstract, and body.
	WordCount int `json:"word_count" yaml:"word_count"`

	// KeywordCounts maps each matched lexicon term to its occurrence count.
	// Nil when the scanner did not run keyword matching. Counts are
	// non-negative; consumers treat missing or inconsistent entries as zero.
	KeywordCounts map[string]int `json:"keyword_counts,omitempty" yaml:"keyword_counts,omitempty"`

	// RelevanceScore is the scanner's domain relevance score. Per prd001 R4.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// MatchedTerms lists the lexicon terms found at least once, sorted.
	MatchedTerms []string `json:"matched_terms,omitempty" yaml:"matched_terms,omitempty"`

	// ScannedAt is when the scanner produced the record.
	ScannedAt time.Time `json:"scanned_at,omitempty" yaml:"scanned_at,omitempty"`
}

// AnalysisText returns the text the extractor scans: abstract followed by
// body text. The title stays out so headline phrasing cannot mint triples.
func (d Document) AnalysisText() string {
	return strings.TrimSpace(d.Abstract + " " + d.FullText)
}

// AllText returns title, abstract, and body joined by single spaces. The
// scanner counts words and keyword matches over this string.
func (d Document) AllText() string {
	return strings.TrimSpace(d.Title + " " + d.Abstract + " " + d.FullText)
}

// TotalKeywords sums all keyword occurrence counts.
func (d Document) TotalKeywords() int {
	total := 0
	for _, n := range d.KeywordCounts {
		total += n
	}
	return total
}

// HasPublished reports whether the document carries a publication date.
func (d Document) HasPublished() bool {
	return !d.Published.IsZero()
}
