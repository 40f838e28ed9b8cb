// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lexicon holds the fixed domain term sets shared by the corpus
// scanner, the triple extractor, and the classifier.
// Implements: prd001-corpus-scan (R4.1); prd002-triple-extraction (R4.2-R4.4);
//
//	docs/ARCHITECTURE § Lexicons.
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Domain term tables. Display case is what scanner reports use as keyword
// keys; all matching is case-insensitive.
var (
	domainEntities = []string{
		"TNT", "RDX", "HMX", "PETN", "TATB",
		"nitroglycerine", "nitrocellulose", "ammonium nitrate",
		"potassium perchlorate", "explosive", "propellant", "detonator",
		"blast", "detonation", "combustion", "ignition",
	}

	actionVerbs = []string{
		"increases", "decreases", "causes", "produces", "exhibits",
		"shows", "demonstrates", "has", "contains", "includes",
		"forms", "creates", "synthesizes", "reacts", "combines",
		"detonates", "explodes", "burns",
	}

	propertyTerms = []string{
		"temperature", "pressure", "density", "velocity", "sensitivity",
		"stability", "performance", "energy", "power", "strength",
		"composition", "structure", "property", "characteristic",
	}
)

// Lexicon is an immutable view over the domain term sets. Construct once
// with Default and share by reference across calls.
type Lexicon struct {
	entities     []string
	properties   []string
	verbs        []string
	entitiesLC   []string
	propertiesLC []string
	verbSet      map[string]bool
}

// Default returns the built-in lexicon.
func Default() Lexicon {
	l := Lexicon{
		entities:     domainEntities,
		properties:   propertyTerms,
		verbs:        actionVerbs,
		entitiesLC:   lowered(domainEntities),
		propertiesLC: lowered(propertyTerms),
		verbSet:      make(map[string]bool, len(actionVerbs)),
	}
	for _, v := range actionVerbs {
		l.verbSet[strings.ToLower(v)] = true
	}
	return l
}

// ContainsEntity reports whether s contains any domain entity, ignoring case.
func (l Lexicon) ContainsEntity(s string) bool {
	return containsAny(strings.ToLower(s), l.entitiesLC)
}

// ContainsProperty reports whether s contains any property term, ignoring case.
func (l Lexicon) ContainsProperty(s string) bool {
	return containsAny(strings.ToLower(s), l.propertiesLC)
}

// IsActionVerb reports whether word, lower-cased, is exactly an action verb.
// Membership is exact, not substring.
func (l Lexicon) IsActionVerb(word string) bool {
	return l.verbSet[strings.ToLower(word)]
}

// Relevant reports whether s contains any domain entity or property term,
// ignoring case. The relevance filter probes the concatenated triple roles
// with this.
func (l Lexicon) Relevant(s string) bool {
	lower := strings.ToLower(s)
	return containsAny(lower, l.entitiesLC) || containsAny(lower, l.propertiesLC)
}

// Entities returns a copy of the domain entity list in display case.
func (l Lexicon) Entities() []string {
	return append([]string(nil), l.entities...)
}

// PropertyTerms returns a copy of the property term list.
func (l Lexicon) PropertyTerms() []string {
	return append([]string(nil), l.properties...)
}

// ActionVerbs returns a copy of the action verb list.
func (l Lexicon) ActionVerbs() []string {
	return append([]string(nil), l.verbs...)
}

// Terms returns the scanner's keyword list: every domain entity and property
// term in display case, sorted.
func (l Lexicon) Terms() []string {
	terms := make([]string, 0, len(l.entities)+len(l.properties))
	terms = append(terms, l.entities...)
	terms = append(terms, l.properties...)
	sort.Strings(terms)
	return terms
}

// TermsFromFile reads a keyword list with one term per line. Blank lines and
// lines starting with "#" are skipped; terms are trimmed and deduplicated,
// preserving first-seen order. Per prd001-corpus-scan R4.2.
func TermsFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}
	seen := make(map[string]bool)
	var terms []string
	for _, line := range strings.Split(string(data), "\n") {
		term := strings.TrimSpace(line)
		if term == "" || strings.HasPrefix(term, "#") {
			continue
		}
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("keywords file %s contains no terms", path)
	}
	return terms, nil
}

func lowered(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
