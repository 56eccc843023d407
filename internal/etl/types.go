package etl

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DataRecord represents a single record from the input dataset
type DataRecord struct {
	Misspelling string `csv:"misspelling" parquet:"misspelling" json:"misspelling"`
	Correction  string `csv:"correction" parquet:"correction" json:"correction"`
}

// ProcessingResult represents the result of processing a dataset
type ProcessingResult struct {
	TotalRecords     int64             `json:"total_records"`
	ValidRecords     int64             `json:"valid_records"`
	InvalidRecords   int64             `json:"invalid_records"`
	Upserted         int64             `json:"upserted"`
	Duplicates       int64             `json:"duplicates"`
	FailedBatches    int64             `json:"failed_batches"`
	Duration         time.Duration     `json:"duration"`
	DatabaseTime     time.Duration     `json:"database_time"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
	Errors           []string          `json:"errors,omitempty"`
}

// Config contains ETL pipeline configuration
type Config struct {
	BatchSize       int    `yaml:"batch_size" mapstructure:"batch_size"`               // 500
	WorkerCount     int    `yaml:"worker_count" mapstructure:"worker_count"`           // 4
	MaxEditDistance int    `yaml:"max_edit_distance" mapstructure:"max_edit_distance"` // 0 disables the check
	ValidateData    bool   `yaml:"validate_data" mapstructure:"validate_data"`
	DryRun          bool   `yaml:"dry_run" mapstructure:"dry_run"`
	Source          string `yaml:"source" mapstructure:"source"` // stored with each entry; defaults to the file name
	ProgressReport  int    `yaml:"progress_report" mapstructure:"progress_report"`
}

// ValidationError represents a data validation error
type ValidationError struct {
	Row     int64  `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Message)
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	RecordsRead    int64     `json:"records_read"`
	RecordsValid   int64     `json:"records_valid"`
	RecordsInvalid int64     `json:"records_invalid"`
	DatabaseWrites int64     `json:"database_writes"`
	BatchesDone    int64     `json:"batches_done"`
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".parquet":
		return FormatParquet
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatCSV
	}
}
