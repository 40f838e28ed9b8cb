// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// SampleDocuments returns a small synthetic corpus of energetic-materials
// abstracts with hand-assigned keyword statistics. It lets the pipeline run
// end to end without source XML (R5.4).
func SampleDocuments() []types.Document {
	return []types.Document{
		{
			ID:        "sample1",
			Format:    types.FormatSample,
			Title:     "Analysis of TNT Detonation Properties",
			Abstract:  "This study examines the detonation characteristics of TNT under various pressure and temperature conditions. The explosive shows increased sensitivity at elevated temperatures.",
			Published: time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC),
			WordCount: 150,
			KeywordCounts: map[string]int{
				"TNT":         5,
				"detonation":  3,
				"explosive":   4,
				"temperature": 2,
				"pressure":    2,
			},
			RelevanceScore: 8.5,
			MatchedTerms:   []string{"TNT", "detonation", "explosive", "pressure", "temperature"},
		},
		{
			ID:        "sample2",
			Format:    types.FormatSample,
			Title:     "Nitroglycerine Migration in Propellant Systems",
			Abstract:  "Investigation of nitroglycerine migration patterns in double base propellants. The study focuses on plasticizer effects and thermal decomposition processes.",
			Published: time.Date(2021, time.June, 10, 0, 0, 0, 0, time.UTC),
			WordCount: 200,
			KeywordCounts: map[string]int{
				"nitroglycerine": 8,
				"propellant":     6,
				"migration":      4,
				"plasticizer":    3,
				"decomposition":  2,
			},
			RelevanceScore: 7.2,
			MatchedTerms:   []string{"decomposition", "migration", "nitroglycerine", "plasticizer", "propellant"},
		},
		{
			ID:        "sample3",
			Format:    types.FormatSample,
			Title:     "Synthesis of Novel Halolactone Explosives",
			Abstract:  "Novel halolactone compounds were synthesized and evaluated for explosive properties. The compounds show promising detonation characteristics and thermal stability.",
			Published: time.Date(2022, time.March, 20, 0, 0, 0, 0, time.UTC),
			WordCount: 180,
			KeywordCounts: map[string]int{
				"halolactone": 4,
				"explosive":   6,
				"synthesis":   3,
				"detonation":  4,
				"thermal":     2,
				"stability":   2,
			},
			RelevanceScore: 9.1,
			MatchedTerms:   []string{"detonation", "explosive", "halolactone", "stability", "synthesis", "thermal"},
		},
		{
			ID:        "sample4",
			Format:    types.FormatSample,
			Title:     "Ammonium Nitrate Sensitivity Analysis",
			Abstract:  "Comprehensive analysis of ammonium nitrate sensitivity to various stimuli. The study examines ignition thresholds and safety parameters for industrial applications.",
			Published: time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC),
			WordCount: 220,
			KeywordCounts: map[string]int{
				"ammonium nitrate": 7,
				"sensitivity":      5,
				"ignition":         3,
				"explosive":        2,
				"safety":           3,
			},
			RelevanceScore: 6.8,
			MatchedTerms:   []string{"ammonium nitrate", "explosive", "ignition", "safety", "sensitivity"},
		},
	}
}

// ScanSample writes the built-in sample corpus as metadata records, honoring
// the same skip and force semantics as a real scan.
func ScanSample(cfg types.ScanConfig, w io.Writer) (Summary, error) {
	var sum Summary
	for _, doc := range SampleDocuments() {
		if !cfg.Force {
			if _, err := os.Stat(MetadataPath(cfg.CorpusDir, doc.ID)); err == nil {
				fmt.Fprintf(w, "skipped %s (already scanned)\n", doc.ID)
				sum.Skipped++
				continue
			}
		}
		doc.ScannedAt = time.Now().UTC()
		if err := WriteDocument(cfg.CorpusDir, doc); err != nil {
			return sum, err
		}
		fmt.Fprintf(w, "wrote %s (%d words, %d keyword hits, relevance %.2f)\n",
			doc.ID, doc.WordCount, doc.TotalKeywords(), doc.RelevanceScore)
		sum.Scanned++
		sum.Documents = append(sum.Documents, doc)
	}
	fmt.Fprintf(w, "\nBatch summary: %d scanned, %d skipped, %d failed (total: %d)\n",
		sum.Scanned, sum.Skipped, sum.Failed, sum.Total())
	return sum, nil
}
