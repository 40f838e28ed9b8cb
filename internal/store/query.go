// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/corpus-analyzer/pkg/types"
)

// QueryOptions holds parameters for triple store queries (R3).
type QueryOptions struct {
	// Text is the FTS5 full-text search string, matched against
	// subject, predicate, object, and source text (R3.1).
	Text string

	// Predicate filters by normalized predicate (R3.2).
	Predicate string

	// DocumentID filters by source document (R3.2).
	DocumentID string

	// Level filters by extraction level (R3.2).
	Level types.TripleLevel

	// MinConfidence drops triples scored below the threshold (R3.2).
	MinConfidence float64

	// MaxResults limits result count. Zero uses store default (R3.4).
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Predicate == "" && q.DocumentID == "" &&
		q.Level == "" && q.MinConfidence == 0
}

// SearchResult is a SemanticTriple with its source document metadata (R4.1).
type SearchResult struct {
	types.SemanticTriple
	DocumentID      string   `json:"document_id" yaml:"document_id"`
	DocumentTitle   string   `json:"document_title,omitempty" yaml:"document_title,omitempty"`
	DocumentAuthors []string `json:"document_authors,omitempty" yaml:"document_authors,omitempty"`
}

// Search queries the triple store with optional full-text search and
// structured filters (R3). Results are ranked by relevance for full-text
// queries or sorted by document and extraction order for structured-only
// queries (R3.3).
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT t.document_id, t.subject, t.predicate, t.object, t.level,
				t.confidence, t.source_text, d.title, d.authors, triples_fts.rank
			FROM triples_fts
			JOIN triples t ON t.rowid = triples_fts.rowid
			LEFT JOIN documents d ON t.document_id = d.id
			WHERE triples_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT t.document_id, t.subject, t.predicate, t.object, t.level,
				t.confidence, t.source_text, d.title, d.authors, 0 AS rank
			FROM triples t
			LEFT JOIN documents d ON t.document_id = d.id
			WHERE 1=1`)
	}

	if opts.Predicate != "" {
		qb.WriteString(` AND t.predicate = ?`)
		args = append(args, opts.Predicate)
	}

	if opts.DocumentID != "" {
		qb.WriteString(` AND t.document_id = ?`)
		args = append(args, opts.DocumentID)
	}

	if opts.Level != "" {
		qb.WriteString(` AND t.level = ?`)
		args = append(args, string(opts.Level))
	}

	if opts.MinConfidence > 0 {
		qb.WriteString(` AND t.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}

	if useFTS {
		qb.WriteString(` ORDER BY triples_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.document_id, t.rowid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying triple store: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr          SearchResult
			level       string
			title       sql.NullString
			authorsJSON sql.NullString
			rank        float64
		)

		if err := rows.Scan(
			&sr.DocumentID, &sr.Subject, &sr.Predicate, &sr.Object, &level,
			&sr.Confidence, &sr.SourceText, &title, &authorsJSON, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		sr.Level = types.TripleLevel(level)
		if title.Valid {
			sr.DocumentTitle = title.String
		}
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &sr.DocumentAuthors)
		}

		results = append(results, sr)
	}

	return results, rows.Err()
}
