// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scanned documents, extracted triples, and
// classification results in a searchable SQLite database.
// Implements: prd005-results-store (R1-R5);
//
//	docs/ARCHITECTURE § Results store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

const (
	metadataDir    = "metadata"
	triplesDir     = "triples"
	reportsDir     = "reports"
	indexDir       = "index"
	dbFile         = "analysis.db"
	triplesSuffix  = "-triples.yaml"
	comparisonFile = "classification-comparison.yaml"
)

// Store manages the analysis results SQLite database.
type Store struct {
	db          *sql.DB
	corpusDir   string
	analysisDir string
	maxResults  int
}

// NewStore opens or creates the results database at
// analysisDir/index/analysis.db. It creates the schema if it does not
// exist (R1.1, R1.2).
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.AnalysisDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:          db,
		corpusDir:   cfg.CorpusDir,
		analysisDir: cfg.AnalysisDir,
		maxResults:  maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			published TEXT,
			format TEXT,
			abstract TEXT,
			word_count INTEGER,
			relevance_score REAL,
			matched_terms TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id),
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			level TEXT NOT NULL,
			confidence REAL,
			source_text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_document_id ON triples(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			document_id TEXT PRIMARY KEY REFERENCES documents(id),
			rule_score REAL,
			stat_score REAL,
			rule_labels TEXT,
			stat_labels TEXT,
			rule_features TEXT,
			stat_features TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			document_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='triples_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE triples_fts USING fts5(subject, predicate, object, source_text, content=triples, content_rowid=rowid)`,
			`CREATE TRIGGER triples_ai AFTER INSERT ON triples BEGIN
				INSERT INTO triples_fts(rowid, subject, predicate, object, source_text)
				VALUES (new.rowid, new.subject, new.predicate, new.object, new.source_text);
			END`,
			`CREATE TRIGGER triples_ad AFTER DELETE ON triples BEGIN
				INSERT INTO triples_fts(triples_fts, rowid, subject, predicate, object, source_text)
				VALUES('delete', old.rowid, old.subject, old.predicate, old.object, old.source_text);
			END`,
			`CREATE TRIGGER triples_au AFTER UPDATE ON triples BEGIN
				INSERT INTO triples_fts(triples_fts, rowid, subject, predicate, object, source_text)
				VALUES('delete', old.rowid, old.subject, old.predicate, old.object, old.source_text);
				INSERT INTO triples_fts(rowid, subject, predicate, object, source_text)
				VALUES (new.rowid, new.subject, new.predicate, new.object, new.source_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a results indexing run (R2.5).
type IngestSummary struct {
	Documents  int
	Indexed    int
	Updated    int
	Skipped    int
	Failed     int
	Classified int
}

// Total returns the number of extraction files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any extraction files failed to index.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest populates the database from the corpus and analysis directories:
// document metadata first, then per-document triple extractions, then the
// classification comparison when present. Extraction files are re-indexed
// only when their modification time changes (R2.1-R2.4). On success it
// refreshes index/export.yaml (R5.3).
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	n, err := s.ingestDocuments(ctx)
	if err != nil {
		return summary, err
	}
	summary.Documents = n
	if n > 0 {
		fmt.Fprintf(w, "documents: %d\n", n)
	}

	if err := s.ingestExtractions(ctx, w, &summary); err != nil {
		return summary, err
	}

	classified, err := s.ingestClassifications(ctx)
	if err != nil {
		return summary, err
	}
	summary.Classified = classified
	if classified > 0 {
		fmt.Fprintf(w, "classifications: %d\n", classified)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Refresh the export after a changed index (R5.3).
	if summary.Indexed > 0 || summary.Updated > 0 || summary.Classified > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// ingestDocuments upserts every corpus metadata record (R2.1). A missing
// metadata directory is not an error: the corpus may not be scanned yet.
func (s *Store) ingestDocuments(ctx context.Context) (int, error) {
	metaDir := filepath.Join(s.corpusDir, metadataDir)
	entries, err := os.ReadDir(metaDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading corpus metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		doc := loadDocumentMetadata(metaDir, strings.TrimSuffix(entry.Name(), ".yaml"))
		if doc == nil {
			continue
		}
		if err := upsertDocument(ctx, tx, doc); err != nil {
			return 0, err
		}
		count++
	}

	return count, tx.Commit()
}

// ingestExtractions indexes each triples YAML under analysis/triples/,
// skipping files whose modification time is unchanged (R2.2, R2.3).
func (s *Store) ingestExtractions(ctx context.Context, w io.Writer, summary *IngestSummary) error {
	extractDir := filepath.Join(s.analysisDir, triplesDir)
	entries, err := os.ReadDir(extractDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), triplesSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), triplesSuffix)
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE document_id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestExtraction(ctx, docID, &result, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d triples)\n", docID, result.TotalTriples())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d triples)\n", docID, result.TotalTriples())
			summary.Indexed++
		}
	}

	return nil
}

func (s *Store) ingestExtraction(ctx context.Context, docID string, result *types.ExtractionResult, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old triples if updating (R2.3).
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE document_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old triples: %w", err)
		}
	}

	if err := ensureDocument(ctx, tx, s.corpusDir, docID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (document_id, subject, predicate, object, level, confidence, source_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, triple := range result.AllTriples() {
		_, err := stmt.ExecContext(ctx,
			docID, triple.Subject, triple.Predicate, triple.Object,
			string(triple.Level), triple.Confidence, triple.SourceText,
		)
		if err != nil {
			return fmt.Errorf("inserting triple %s: %w", triple, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (document_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		docID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// ingestClassifications upserts every result row from the classification
// comparison report (R2.4). A missing report is not an error.
func (s *Store) ingestClassifications(ctx context.Context) (int, error) {
	path := filepath.Join(s.analysisDir, reportsDir, comparisonFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading classification report: %w", err)
	}

	var analysis types.ComparisonAnalysis
	if err := yaml.Unmarshal(data, &analysis); err != nil {
		return 0, fmt.Errorf("parsing classification report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range analysis.Results {
		if err := ensureDocument(ctx, tx, s.corpusDir, r.DocumentID); err != nil {
			return 0, err
		}
		ruleLabels, _ := json.Marshal(r.RuleLabels)
		statLabels, _ := json.Marshal(r.StatLabels)
		ruleFeatures, _ := json.Marshal(r.RuleFeatures)
		statFeatures, _ := json.Marshal(r.StatFeatures)
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO classifications
			 (document_id, rule_score, stat_score, rule_labels, stat_labels, rule_features, stat_features)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.DocumentID, r.RuleScore, r.StatScore,
			string(ruleLabels), string(statLabels),
			string(ruleFeatures), string(statFeatures),
		)
		if err != nil {
			return 0, fmt.Errorf("upserting classification %s: %w", r.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(analysis.Results), nil
}

// ensureDocument upserts the document's metadata record, or a bare ID stub
// when the corpus has no record for it (R2.1).
func ensureDocument(ctx context.Context, tx *sql.Tx, corpusDir, docID string) error {
	doc := loadDocumentMetadata(filepath.Join(corpusDir, metadataDir), docID)
	if doc == nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO documents (id) VALUES (?)`, docID,
		); err != nil {
			return fmt.Errorf("inserting document stub: %w", err)
		}
		return nil
	}
	return upsertDocument(ctx, tx, doc)
}

func upsertDocument(ctx context.Context, tx *sql.Tx, doc *types.Document) error {
	authorsJSON, _ := json.Marshal(doc.Authors)
	termsJSON, _ := json.Marshal(doc.MatchedTerms)
	published := ""
	if doc.HasPublished() {
		published = doc.Published.Format(time.RFC3339)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, authors, published, format, abstract, word_count, relevance_score, matched_terms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, published=excluded.published,
			format=excluded.format, abstract=excluded.abstract,
			word_count=excluded.word_count, relevance_score=excluded.relevance_score,
			matched_terms=excluded.matched_terms`,
		doc.ID, doc.Title, string(authorsJSON), published, string(doc.Format),
		doc.Abstract, doc.WordCount, doc.RelevanceScore, string(termsJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

// loadDocumentMetadata reads a Document record from metaDir/[docID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadDocumentMetadata(metaDir, docID string) *types.Document {
	data, err := os.ReadFile(filepath.Join(metaDir, docID+".yaml"))
	if err != nil {
		return nil
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return &doc
}
