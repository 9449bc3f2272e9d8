package batch

import (
	"strings"
	"time"
)

// Config contains batch pipeline configuration
type Config struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`                           // 4
	MaxFilesPerSecond float64 `yaml:"max_files_per_second" mapstructure:"max_files_per_second"` // 0 = unpaced
	ReportFormat      string  `yaml:"report_format" mapstructure:"report_format"`               // csv
	OutputDir         string  `yaml:"output_dir" mapstructure:"output_dir"`                     // redacted
	IncludePattern    string  `yaml:"include_pattern" mapstructure:"include_pattern"`           // *.json
	Pretty            bool    `yaml:"pretty" mapstructure:"pretty"`
}

// ReportRow is one line of a batch report: a declaration of one document,
// or a document that could not be processed.
type ReportRow struct {
	File    string `csv:"file" parquet:"file" json:"file"`
	Kind    string `csv:"kind" parquet:"kind" json:"kind"`
	Index   int64  `csv:"index" parquet:"index" json:"index"`
	Name    string `csv:"name" parquet:"name" json:"name"`
	Reason  string `csv:"reason" parquet:"reason" json:"reason"`
	Method  string `csv:"method" parquet:"method" json:"method"`
	Path    string `csv:"path" parquet:"path" json:"path"`
	Matches int64  `csv:"matches" parquet:"matches" json:"matches"`
	Action  string `csv:"action" parquet:"action" json:"action"`
	Error   string `csv:"error" parquet:"error" json:"error,omitempty"`
}

var reportHeader = []string{"file", "kind", "index", "name", "reason", "method", "path", "matches", "action", "error"}

// FileResult is the outcome of resolving one document
type FileResult struct {
	Path       string        `json:"path"`
	OutputPath string        `json:"output_path,omitempty"`
	Kind       string        `json:"kind,omitempty"`
	Applied    int           `json:"applied"`
	Events     int           `json:"events"`
	Duration   time.Duration `json:"duration"`
	Rows       []ReportRow   `json:"-"`
}

// ProcessingResult represents the result of processing a directory
type ProcessingResult struct {
	RunID           string        `json:"run_id"`
	TotalFiles      int64         `json:"total_files"`
	ProcessedOK     int64         `json:"processed_ok"`
	ProcessedFailed int64         `json:"processed_failed"`
	Declarations    int64         `json:"declarations"`
	Applied         int64         `json:"applied"`
	Duration        time.Duration `json:"duration"`
	Errors          []string      `json:"errors,omitempty"`
	Rows            []ReportRow   `json:"-"`
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	FilesRead      int64     `json:"files_read"`
	FilesResolved  int64     `json:"files_resolved"`
	FilesFailed    int64     `json:"files_failed"`
	Declarations   int64     `json:"declarations"`
	Applied        int64     `json:"applied"`
	ProcessingRate float64   `json:"processing_rate"` // files per second
}

// FileFormat represents supported report formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return FormatCSV
	case strings.HasSuffix(filename, ".parquet"):
		return FormatParquet
	case strings.HasSuffix(filename, ".json"):
		return FormatJSON
	default:
		return FormatCSV // Default to CSV
	}
}
