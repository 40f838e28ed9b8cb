// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a triple with document metadata for export (R5.4).
type ExportEntry struct {
	DocumentID string          `json:"document_id" yaml:"document_id"`
	Subject    string          `json:"subject" yaml:"subject"`
	Predicate  string          `json:"predicate" yaml:"predicate"`
	Object     string          `json:"object" yaml:"object"`
	Level      string          `json:"level" yaml:"level"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
	SourceText string          `json:"source_text,omitempty" yaml:"source_text,omitempty"`
	Document   *ExportDocument `json:"document,omitempty" yaml:"document,omitempty"`
}

// ExportDocument holds the document-level fields included in each export entry.
type ExportDocument struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the triple store to analysis/index/export.yaml (R5.1).
// It supports the same filters as Search (R5.5).
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.analysisDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the triple store to analysis/index/export.json (R5.2).
// It supports the same filters as Search (R5.5).
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.analysisDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 || opts.MaxResults > exportLimit {
		opts.MaxResults = exportLimit
	}
	results, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			DocumentID: r.DocumentID,
			Subject:    r.Subject,
			Predicate:  r.Predicate,
			Object:     r.Object,
			Level:      string(r.Level),
			Confidence: r.Confidence,
			SourceText: r.SourceText,
		}
		if r.DocumentTitle != "" || len(r.DocumentAuthors) > 0 {
			entries[i].Document = &ExportDocument{
				Title:   r.DocumentTitle,
				Authors: r.DocumentAuthors,
			}
		}
	}

	return entries, nil
}
