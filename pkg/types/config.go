package types

// ScanConfig holds settings for the corpus scanning stage.
// Per prd001-corpus-scan R1.2-R1.4, R5.1.
type ScanConfig struct {
	// CorpusDir is the base directory for scanned output (contains metadata/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxSubdirs bounds how many subdirectories of the input directory are
	// scanned (default 10).
	MaxSubdirs int `json:"max_subdirs" yaml:"max_subdirs"`

	// MaxFilesPerDir bounds how many XML files are scanned per directory
	// (default 50).
	MaxFilesPerDir int `json:"max_files_per_dir" yaml:"max_files_per_dir"`

	// KeywordsFile optionally overrides the built-in lexicon with a file of
	// one keyword per line ("#" comments allowed).
	KeywordsFile string `json:"keywords_file,omitempty" yaml:"keywords_file,omitempty"`

	// Force re-scans files whose metadata records already exist.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// ExtractionConfig holds settings for the triple extraction stage.
// Per prd002-triple-extraction R6.1-R6.2.
type ExtractionConfig struct {
	// CorpusDir is the base directory for the corpus (contains metadata/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// AnalysisDir is the base directory for analysis output (contains triples/).
	AnalysisDir string `json:"analysis_dir" yaml:"analysis_dir"`
}

// AnalysisConfig holds settings shared by the classification and trend
// reporting stages. Per prd003-classification R6.1, prd004-temporal-trends R5.1.
type AnalysisConfig struct {
	// CorpusDir is the base directory for the corpus (contains metadata/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// AnalysisDir is the base directory for analysis output (contains reports/).
	AnalysisDir string `json:"analysis_dir" yaml:"analysis_dir"`
}

// StoreConfig holds settings for the results store stage.
// Per prd005-results-store R1.1, R3.4.
type StoreConfig struct {
	// CorpusDir is the base directory for the corpus (contains metadata/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// AnalysisDir is the base directory for analysis artifacts (contains
	// triples/, reports/, index/).
	AnalysisDir string `json:"analysis_dir" yaml:"analysis_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
