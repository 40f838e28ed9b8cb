// Package ingest scans XML article corpora into Document metadata records
// with keyword counts and relevance scores.
// Implements: prd001-corpus-scan (R1-R5);
//
//	docs/ARCHITECTURE § Corpus scanning.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-analyzer/internal/lexicon"
	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const metadataDir = "metadata"

// Summary holds the outcome of a batch scan.
type Summary struct {
	Scanned   int
	Skipped   int
	Failed    int
	Documents []types.Document
}

// Total returns the number of files processed.
func (s Summary) Total() int {
	return s.Scanned + s.Skipped + s.Failed
}

// HasFailures reports whether any files failed to parse.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Keywords returns the scan term list: the terms from cfg.KeywordsFile when
// set, otherwise the built-in lexicon (R4.1, R4.2).
func Keywords(cfg types.ScanConfig) ([]string, error) {
	if cfg.KeywordsFile != "" {
		return lexicon.TermsFromFile(cfg.KeywordsFile)
	}
	return lexicon.Default().Terms(), nil
}

// Scanner parses article files and computes keyword statistics against a
// fixed term list.
type Scanner struct {
	terms    []string
	patterns map[string]*regexp.Regexp
}

// NewScanner compiles a word-boundary pattern per single-word term. Phrase
// terms are matched by substring instead (R3.2).
func NewScanner(terms []string) *Scanner {
	s := &Scanner{patterns: make(map[string]*regexp.Regexp)}
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		s.terms = append(s.terms, term)
		if !strings.Contains(t, " ") {
			s.patterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
		}
	}
	return s
}

// ScanFile parses one XML article and fills in the derived statistics
// (R2, R3).
func (s *Scanner) ScanFile(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, err
	}
	doc, err := Parse(data)
	if err != nil {
		return types.Document{}, err
	}
	doc.ID = DocumentID(path)
	doc.SourcePath = path
	doc.ScannedAt = time.Now().UTC()
	s.annotate(&doc)
	return doc, nil
}

// annotate computes word count, keyword counts, matched terms, and the
// relevance score over the combined document text (R3.1-R3.4).
func (s *Scanner) annotate(doc *types.Document) {
	text := doc.AllText()
	doc.WordCount = len(strings.Fields(text))
	doc.KeywordCounts = s.countKeywords(text)
	doc.MatchedTerms = sortedTerms(doc.KeywordCounts)

	total := 0
	for _, n := range doc.KeywordCounts {
		total += n
	}
	// Keyword density per hundred words, plus half a point per distinct term.
	doc.RelevanceScore = 100*float64(total)/float64(max(1, doc.WordCount)) +
		0.5*float64(len(doc.KeywordCounts))
}

func (s *Scanner) countKeywords(text string) map[string]int {
	lower := strings.ToLower(text)
	counts := make(map[string]int)
	for _, term := range s.terms {
		var n int
		if re, ok := s.patterns[term]; ok {
			n = len(re.FindAllStringIndex(lower, -1))
		} else {
			n = strings.Count(lower, strings.ToLower(strings.TrimSpace(term)))
		}
		if n > 0 {
			counts[term] = n
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func sortedTerms(counts map[string]int) []string {
	if len(counts) == 0 {
		return nil
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// DocumentID derives a stable identifier from an article file name: the base
// name without extension, lowercased, with non-alphanumeric runs collapsed
// to single dashes.
func DocumentID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		return "document"
	}
	return id
}

// CollectFiles picks the XML files to scan. A single .xml input path is
// scanned alone; a directory contributes up to MaxFilesPerDir files from
// each of the first MaxSubdirs subdirectories, in name order, plus up to
// MaxFilesPerDir files at the top level (R1.1-R1.3).
func CollectFiles(inputPath string, cfg types.ScanConfig) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading input path: %w", err)
	}
	if !info.IsDir() {
		if !isXMLFile(inputPath) {
			return nil, fmt.Errorf("input file %s is not an XML file", inputPath)
		}
		return []string{inputPath}, nil
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []string
	subdirs := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if subdirs >= cfg.MaxSubdirs {
			break
		}
		subdirs++
		sub, err := xmlFilesIn(filepath.Join(inputPath, e.Name()), cfg.MaxFilesPerDir)
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}

	direct, err := xmlFilesIn(inputPath, cfg.MaxFilesPerDir)
	if err != nil {
		return nil, err
	}
	return append(files, direct...), nil
}

func xmlFilesIn(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if len(files) >= limit {
			break
		}
		if e.IsDir() || !isXMLFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func isXMLFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xml")
}

// ScanBatch collects XML files under inputPath, parses each one, and writes
// a metadata record per document. It continues past per-file parse failures
// (R5.2). Documents already in the corpus are skipped unless cfg.Force is
// set (R5.1).
func ScanBatch(inputPath string, cfg types.ScanConfig, w io.Writer) (Summary, error) {
	terms, err := Keywords(cfg)
	if err != nil {
		return Summary{}, err
	}
	files, err := CollectFiles(inputPath, cfg)
	if err != nil {
		return Summary{}, err
	}

	scanner := NewScanner(terms)
	var sum Summary
	for _, path := range files {
		id := DocumentID(path)
		if !cfg.Force {
			if _, err := os.Stat(MetadataPath(cfg.CorpusDir, id)); err == nil {
				fmt.Fprintf(w, "skipped %s (already scanned)\n", id)
				sum.Skipped++
				continue
			}
		}
		doc, err := scanner.ScanFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			sum.Failed++
			continue
		}
		if err := WriteDocument(cfg.CorpusDir, doc); err != nil {
			return sum, err
		}
		fmt.Fprintf(w, "scanned %s (%d words, %d keyword hits, relevance %.2f)\n",
			doc.ID, doc.WordCount, doc.TotalKeywords(), doc.RelevanceScore)
		sum.Scanned++
		sum.Documents = append(sum.Documents, doc)
	}
	fmt.Fprintf(w, "\nBatch summary: %d scanned, %d skipped, %d failed (total: %d)\n",
		sum.Scanned, sum.Skipped, sum.Failed, sum.Total())
	return sum, nil
}

// MetadataPath returns the metadata record location for a document ID.
func MetadataPath(corpusDir, id string) string {
	return filepath.Join(corpusDir, metadataDir, id+".yaml")
}

// WriteDocument writes a Document record under the corpus metadata
// directory (R5.3).
func WriteDocument(corpusDir string, doc types.Document) error {
	path := MetadataPath(corpusDir, doc.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s: %w", doc.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", doc.ID, err)
	}
	return nil
}

// ReadDocument loads one Document record by ID.
func ReadDocument(corpusDir, id string) (types.Document, error) {
	data, err := os.ReadFile(MetadataPath(corpusDir, id))
	if err != nil {
		return types.Document{}, fmt.Errorf("reading document %s: %w", id, err)
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Document{}, fmt.Errorf("parsing document %s: %w", id, err)
	}
	return doc, nil
}

// LoadCorpus reads every Document record under the corpus directory, in
// file-name order.
func LoadCorpus(corpusDir string) ([]types.Document, error) {
	entries, err := os.ReadDir(filepath.Join(corpusDir, metadataDir))
	if err != nil {
		return nil, fmt.Errorf("reading corpus metadata: %w", err)
	}
	var docs []types.Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		doc, err := ReadDocument(corpusDir, strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
