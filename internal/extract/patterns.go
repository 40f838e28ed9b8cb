// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns document text into semantic triples.
// patterns.go holds the extraction pattern table and span splitting.
// Implements: prd002-triple-extraction (R1, R2);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// atValuePredicate is the synthetic predicate the at-value pattern emits;
// it never comes from captured text.
const atValuePredicate = "measured_at"

// triplePattern couples a compiled matcher with the capture-group indexes
// that fill each triple role. atValue tags the one pattern whose predicate
// is synthesized instead of captured (R1.5); the formed-by pattern shows why
// role indexes are explicit: its surface order is inverted.
type triplePattern struct {
	name       string
	re         *regexp.Regexp
	subjectIdx int
	predIdx    int
	objectIdx  int
	atValue    bool
}

// patterns is the fixed, ordered extraction pattern list (R1.1-R1.7). Every
// pattern runs against every span; matching is case-insensitive and
// non-overlapping left to right. Role captures span one to three words
// (objects up to four where noted).
var patterns = []triplePattern{
	{
		name:       "subject-verb-object",
		re:         regexp.MustCompile(`(?i)(\b\w+(?:\s+\w+){0,2})\s+(increases?|decreases?|causes?|produces?|exhibits?|shows?|demonstrates?)\s+(\w+(?:\s+\w+){0,3})`),
		subjectIdx: 1, predIdx: 2, objectIdx: 3,
	},
	{
		name:       "has-contains",
		re:         regexp.MustCompile(`(?i)(\b\w+(?:\s+\w+){0,2})\s+(has|contains?|includes?)\s+(\w+(?:\s+\w+){0,3})`),
		subjectIdx: 1, predIdx: 2, objectIdx: 3,
	},
	{
		name:       "is-are",
		re:         regexp.MustCompile(`(?i)(\b\w+(?:\s+\w+){0,2})\s+(is|was|were|are)\s+(\w+(?:\s+\w+){0,3})`),
		subjectIdx: 1, predIdx: 2, objectIdx: 3,
	},
	{
		// Passive voice inverts the surface order: the agent after "by" is
		// the subject, the leading noun phrase the object.
		name:       "formed-by",
		re:         regexp.MustCompile(`(?i)(\w+(?:\s+\w+){0,3})\s+(?:is|was|were)\s+(formed|created|produced|synthesized)\s+by\s+(\w+(?:\s+\w+){0,2})`),
		subjectIdx: 3, predIdx: 2, objectIdx: 1,
	},
	{
		name:       "at-value",
		re:         regexp.MustCompile(`(?i)(\w+(?:\s+\w+){0,2})\s+at\s+(\d+(?:\.\d+)?\s*(?:°C|°F|K|atm|bar|Pa|psi))`),
		subjectIdx: 1, objectIdx: 2,
		atValue: true,
	},
	{
		name:       "reaction",
		re:         regexp.MustCompile(`(?i)(\w+(?:\s+\w+){0,2})\s+(reacts?\s+with|combines?\s+with|forms?)\s+(\w+(?:\s+\w+){0,2})`),
		subjectIdx: 1, predIdx: 2, objectIdx: 3,
	},
	{
		name:       "detonation",
		re:         regexp.MustCompile(`(?i)(\b\w+(?:\s+\w+){0,2})\s+(detonates?|explodes?|burns?)\s+(\w+(?:\s+\w+){0,3})`),
		subjectIdx: 1, predIdx: 2, objectIdx: 3,
	},
}

// paragraphSplitRe splits document text on blank-line boundaries.
var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// sentenceEndRe locates sentence-ending punctuation followed by whitespace.
// RE2 has no lookbehind, so splitSentences slices at the punctuation index
// instead of splitting on a lookbehind pattern.
var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// splitParagraphs returns the non-empty paragraphs of text (R2.1).
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitSentences returns the non-empty sentences of a paragraph, keeping the
// terminal punctuation with each sentence (R2.3). The split is naive: no
// abbreviation handling.
func splitSentences(paragraph string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(paragraph, -1) {
		s := strings.TrimSpace(paragraph[start : loc[0]+1])
		if s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(paragraph[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// scanSpan applies every pattern to one span and returns the accepted
// triples in pattern order, then match order. A malformed match discards
// only that candidate (R3.1).
func (x *Extractor) scanSpan(span string, level types.TripleLevel) []types.SemanticTriple {
	var found []types.SemanticTriple
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(span, -1) {
			t, ok := x.tripleFromMatch(p, m, span, level)
			if !ok {
				continue
			}
			found = append(found, t)
		}
	}
	return found
}

// tripleFromMatch builds a candidate triple from one pattern match,
// rejecting it when a capture is missing or the roles are degenerate.
func (x *Extractor) tripleFromMatch(p triplePattern, m []string, span string, level types.TripleLevel) (types.SemanticTriple, bool) {
	group := func(idx int) string {
		if idx <= 0 || idx >= len(m) {
			return ""
		}
		return strings.TrimSpace(m[idx])
	}

	subject := group(p.subjectIdx)
	object := group(p.objectIdx)
	predicate := atValuePredicate
	if !p.atValue {
		predicate = group(p.predIdx)
	}

	if !validTriple(subject, predicate, object) {
		return types.SemanticTriple{}, false
	}

	return types.SemanticTriple{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		SourceText: span,
		Level:      level,
		Confidence: x.confidence(subject, predicate, object),
	}, true
}

// validTriple enforces the acceptance rule (R3.2): every role longer than
// two characters after trimming, and no two roles equal. The length rule
// intentionally drops "is" predicates from the is-are pattern.
func validTriple(subject, predicate, object string) bool {
	if len(subject) <= 2 || len(predicate) <= 2 || len(object) <= 2 {
		return false
	}
	if subject == predicate || predicate == object || subject == object {
		return false
	}
	return true
}
