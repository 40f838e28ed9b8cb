// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify derives rule-based and statistical classifications for
// documents and compares the two methods across a batch.
// Implements: prd003-classification (R1-R5);
//
//	docs/ARCHITECTURE § Classification.
package classify

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/corpus-analyzer/internal/extract"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// Feature names. Rule-based and statistical features share one namespace in
// the importance analysis.
const (
	featTripleDensity      = "triple_density"
	featTripleRatio        = "explosive_triple_ratio"
	featAvgConfidence      = "avg_triple_confidence"
	featPredicateDiversity = "predicate_diversity"
	featEntityCoherence    = "entity_coherence"

	featKeywordFrequency      = "keyword_frequency"
	featUniqueKeywordRatio    = "unique_keyword_ratio"
	featTopKeywordDominance   = "top_keyword_dominance"
	featKeywordEntropy        = "keyword_entropy"
	featLengthNormalizedScore = "length_normalized_score"
	featTitleKeywordPresence  = "title_keyword_presence"
)

// Rule-based classification labels (R3.1).
const (
	LabelHighSemanticContent = "high_explosive_semantic_content"
	LabelHighConfidence      = "high_confidence_relationships"
	LabelCoherentNarrative   = "coherent_explosive_narrative"
	LabelDiverseProcesses    = "diverse_explosive_processes"
)

// Statistical classification labels (R3.2).
const (
	LabelHighKeywordDensity   = "high_keyword_density"
	LabelDiverseTerminology   = "diverse_explosive_terminology"
	LabelTitleIndicates       = "title_indicates_explosive_content"
	LabelHighStatisticalScore = "high_statistical_explosive_score"
)

// Classifier scores documents along two independent paths: a rule-based one
// over extracted triples and a statistical one over the ingester's keyword
// counts. All weights and thresholds are fixed; nothing is learned.
type Classifier struct {
	extractor *extract.Extractor
}

// New returns a Classifier backed by a default extractor.
func New() *Classifier {
	return &Classifier{extractor: extract.New()}
}

// ClassifyDocument derives both feature vectors, scores, and label sets for
// one document. Classification never consults other documents.
func (c *Classifier) ClassifyDocument(doc types.Document) types.ClassificationResult {
	result := types.ClassificationResult{DocumentID: doc.ID}
	c.ruleBased(doc, &result)
	c.statistical(doc, &result)
	return result
}

// ruleBased extracts triples from the document text and reduces them to five
// features (R1.1-R1.5).
func (c *Classifier) ruleBased(doc types.Document, result *types.ClassificationResult) {
	extraction := c.extractor.Extract(doc.AnalysisText())
	all := extraction.AllTriples()
	total := len(all)

	features := make(map[string]float64, 5)
	features[featTripleDensity] = float64(total) / float64(max(1, doc.WordCount))

	ratio := 0.0
	if total > 0 {
		ratio = float64(len(c.extractor.FilterRelevant(all))) / float64(total)
	}
	features[featTripleRatio] = ratio

	avgConfidence := 0.0
	if total > 0 {
		confidences := make([]float64, total)
		for i, t := range all {
			confidences[i] = t.Confidence
		}
		avgConfidence = stat.Mean(confidences, nil)
	}
	features[featAvgConfidence] = avgConfidence

	subjects := make(map[string]struct{})
	objects := make(map[string]struct{})
	predicates := make(map[string]struct{})
	for _, t := range all {
		subjects[t.Subject] = struct{}{}
		objects[t.Object] = struct{}{}
		predicates[t.Predicate] = struct{}{}
	}
	features[featPredicateDiversity] = float64(len(predicates))

	coherent := 0
	for s := range subjects {
		if _, ok := objects[s]; ok {
			coherent++
		}
	}
	// The denominator counts entities holding both roles twice.
	features[featEntityCoherence] = float64(coherent) / float64(max(1, len(subjects)+len(objects)))

	result.RuleFeatures = features
	result.RuleScore = ruleScore(features)
	result.RuleLabels = ruleLabels(features)
}

// statistical reduces the ingester's keyword counts to six features
// (R2.1-R2.6). The four distribution features exist only when the document
// carries a keyword-count mapping.
func (c *Classifier) statistical(doc types.Document, result *types.ClassificationResult) {
	features := make(map[string]float64, 6)

	if doc.KeywordCounts != nil {
		total := doc.TotalKeywords()
		features[featKeywordFrequency] = float64(total) / float64(max(1, doc.WordCount))
		features[featUniqueKeywordRatio] = float64(len(doc.KeywordCounts)) / float64(max(1, total))

		maxCount := 0
		for _, n := range doc.KeywordCounts {
			if n > maxCount {
				maxCount = n
			}
		}
		features[featTopKeywordDominance] = float64(maxCount) / float64(max(1, total))
		features[featKeywordEntropy] = keywordEntropy(doc.KeywordCounts)
	}

	features[featLengthNormalizedScore] = doc.RelevanceScore / math.Log(float64(max(10, doc.WordCount)))

	titleFlag := 0.0
	if titleContainsKeyword(doc) {
		titleFlag = 1.0
	}
	features[featTitleKeywordPresence] = titleFlag

	result.StatFeatures = features
	result.StatScore = statScore(features)
	result.StatLabels = statLabels(features, doc)
}

// ruleScore is the fixed weighted combination of rule-based features.
func ruleScore(f map[string]float64) float64 {
	score := f[featTripleRatio] * 0.30
	score += f[featAvgConfidence] * 0.25
	score += math.Min(1, f[featTripleDensity]*100) * 0.20
	score += math.Min(1, f[featPredicateDiversity]/10) * 0.15
	score += f[featEntityCoherence] * 0.10
	return score
}

// statScore is the fixed weighted combination of statistical features.
// Missing features contribute their zero value.
func statScore(f map[string]float64) float64 {
	score := math.Min(1, f[featKeywordFrequency]*50) * 0.30
	score += f[featUniqueKeywordRatio] * 0.20
	score += (1 - f[featTopKeywordDominance]) * 0.15
	score += math.Min(1, f[featKeywordEntropy]/3) * 0.15
	score += math.Min(1, f[featLengthNormalizedScore]/10) * 0.15
	score += f[featTitleKeywordPresence] * 0.05
	return score
}

func ruleLabels(f map[string]float64) []string {
	var labels []string
	if f[featTripleRatio] > 0.3 {
		labels = append(labels, LabelHighSemanticContent)
	}
	if f[featAvgConfidence] > 0.7 {
		labels = append(labels, LabelHighConfidence)
	}
	if f[featEntityCoherence] > 0.2 {
		labels = append(labels, LabelCoherentNarrative)
	}
	if f[featPredicateDiversity] > 5 {
		labels = append(labels, LabelDiverseProcesses)
	}
	return labels
}

func statLabels(f map[string]float64, doc types.Document) []string {
	var labels []string
	if f[featKeywordFrequency] > 0.02 {
		labels = append(labels, LabelHighKeywordDensity)
	}
	if f[featUniqueKeywordRatio] > 0.5 {
		labels = append(labels, LabelDiverseTerminology)
	}
	if f[featTitleKeywordPresence] > 0.5 {
		labels = append(labels, LabelTitleIndicates)
	}
	if doc.RelevanceScore > 5.0 {
		labels = append(labels, LabelHighStatisticalScore)
	}
	return labels
}

// keywordEntropy is the Shannon entropy of the keyword distribution in bits.
// An empty or all-zero distribution has entropy 0.
func keywordEntropy(counts map[string]int) float64 {
	total := 0
	for _, n := range counts {
		if n > 0 {
			total += n
		}
	}
	if total == 0 {
		return 0
	}
	p := make([]float64, 0, len(counts))
	for _, n := range counts {
		if n > 0 {
			p = append(p, float64(n)/float64(total))
		}
	}
	return stat.Entropy(p) / math.Ln2
}

// titleContainsKeyword reports whether the lower-cased title contains any of
// the document's matched terms as a substring.
func titleContainsKeyword(doc types.Document) bool {
	if doc.Title == "" || len(doc.MatchedTerms) == 0 {
		return false
	}
	title := strings.ToLower(doc.Title)
	for _, term := range doc.MatchedTerms {
		if strings.Contains(title, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
