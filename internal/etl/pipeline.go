package etl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raaihank/spell-sentinel/internal/dictstore"
	"github.com/raaihank/spell-sentinel/internal/textutil"
)

// maxValidationErrors bounds how many rejected rows a result reports
const maxValidationErrors = 100

// Sink receives validated dictionary entries
type Sink interface {
	Upsert(ctx context.Context, entries []dictstore.Entry) (*dictstore.UpsertResult, error)
}

// Pipeline loads misspelling datasets into the dictionary store
type Pipeline struct {
	sink   Sink
	config *Config
	logger *zap.Logger

	stats   ProcessingStats
	started atomic.Int64 // unix nanos of the current run
	mu      sync.Mutex   // guards result during a run
}

// rowError marks a record that could not be read but does not stop the run
type rowError struct {
	err error
}

func (e *rowError) Error() string { return e.err.Error() }

// NewPipeline creates a new ETL pipeline. sink may be nil for dry runs.
func NewPipeline(sink Sink, config *Config, logger *zap.Logger) *Pipeline {
	cfg := *config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.ProgressReport <= 0 {
		cfg.ProgressReport = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		sink:   sink,
		config: &cfg,
		logger: logger,
	}
}

// ProcessFile processes a dataset file (CSV, Parquet, or JSON lines)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*ProcessingResult, error) {
	format := DetectFileFormat(filePath)
	source := p.config.Source
	if source == "" {
		source = filepath.Base(filePath)
	}

	p.logger.Info("Starting ETL pipeline",
		zap.String("file", filePath),
		zap.String("format", string(format)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount),
		zap.Bool("dry_run", p.config.DryRun))

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatParquet:
		reader := parquet.NewReader(file)
		defer reader.Close()

		return p.run(ctx, source, func() (*DataRecord, error) {
			var record DataRecord
			if err := reader.Read(&record); err != nil {
				return nil, err
			}
			return &record, nil
		})
	default:
		return p.Process(ctx, file, format, source)
	}
}

// Process reads CSV or JSON-lines records from r
func (p *Pipeline) Process(ctx context.Context, r io.Reader, format FileFormat, source string) (*ProcessingResult, error) {
	switch format {
	case FormatCSV:
		return p.run(ctx, source, csvReader(r))
	case FormatJSON:
		return p.run(ctx, source, jsonReader(r))
	default:
		return nil, fmt.Errorf("unsupported stream format: %s", format)
	}
}

// csvReader yields misspelling,correction rows. A leading header row is
// skipped.
func csvReader(r io.Reader) func() (*DataRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	first := true

	return func() (*DataRecord, error) {
		for {
			row, err := reader.Read()
			if err == io.EOF {
				return nil, io.EOF
			}
			if err != nil {
				var parseErr *csv.ParseError
				if errors.As(err, &parseErr) {
					return nil, &rowError{err: err}
				}
				return nil, err
			}

			if first {
				first = false
				if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "misspelling") {
					continue
				}
			}

			if len(row) < 2 {
				return nil, &rowError{err: fmt.Errorf("expected 2 columns, got %d", len(row))}
			}
			return &DataRecord{Misspelling: row[0], Correction: row[1]}, nil
		}
	}
}

// jsonReader yields one JSON object per record
func jsonReader(r io.Reader) func() (*DataRecord, error) {
	decoder := json.NewDecoder(r)

	return func() (*DataRecord, error) {
		var record DataRecord
		if err := decoder.Decode(&record); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, &rowError{err: err}
			}
			return nil, err
		}
		return &record, nil
	}
}

// run validates records from next and upserts them in batches on the
// configured number of workers
func (p *Pipeline) run(ctx context.Context, source string, next func() (*DataRecord, error)) (*ProcessingResult, error) {
	start := time.Now()
	p.resetStats(start)
	result := &ProcessingResult{}

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []dictstore.Entry, p.config.WorkerCount)

	// Producer
	g.Go(func() error {
		defer close(batches)

		var row int64
		batch := make([]dictstore.Entry, 0, p.config.BatchSize)

		for {
			record, err := next()
			if err == io.EOF {
				break
			}
			row++
			atomic.AddInt64(&p.stats.RecordsRead, 1)

			if err != nil {
				var re *rowError
				if !errors.As(err, &re) {
					return fmt.Errorf("failed to read record %d: %w", row, err)
				}
				p.reject(result, ValidationError{Row: row, Field: "record", Message: re.Error()})
				continue
			}

			if verr := p.validateRecord(row, record); verr != nil {
				p.reject(result, *verr)
				continue
			}

			atomic.AddInt64(&p.stats.RecordsValid, 1)
			batch = append(batch, dictstore.Entry{
				Misspelling: record.Misspelling,
				Correction:  record.Correction,
				Source:      source,
			})

			if row%int64(p.config.ProgressReport) == 0 {
				p.reportProgress()
			}

			if len(batch) >= p.config.BatchSize {
				select {
				case batches <- batch:
				case <-gctx.Done():
					return gctx.Err()
				}
				batch = make([]dictstore.Entry, 0, p.config.BatchSize)
			}
		}

		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Workers
	for i := 0; i < p.config.WorkerCount; i++ {
		g.Go(func() error {
			for batch := range batches {
				p.processBatch(gctx, batch, result)
			}
			return gctx.Err()
		})
	}

	err := g.Wait()

	result.TotalRecords = atomic.LoadInt64(&p.stats.RecordsRead)
	result.ValidRecords = atomic.LoadInt64(&p.stats.RecordsValid)
	result.InvalidRecords = atomic.LoadInt64(&p.stats.RecordsInvalid)
	result.Duration = time.Since(start)

	if err != nil {
		return result, err
	}

	p.logger.Info("ETL pipeline completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("valid_records", result.ValidRecords),
		zap.Int64("invalid_records", result.InvalidRecords),
		zap.Int64("upserted", result.Upserted),
		zap.Int64("duplicates", result.Duplicates),
		zap.Int64("failed_batches", result.FailedBatches),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("database_time", result.DatabaseTime))

	return result, nil
}

// processBatch writes one batch. Failures are recorded and the run
// continues with the next batch.
func (p *Pipeline) processBatch(ctx context.Context, batch []dictstore.Entry, result *ProcessingResult) {
	defer atomic.AddInt64(&p.stats.BatchesDone, 1)

	if p.config.DryRun || p.sink == nil {
		p.logger.Debug("Dry run, skipping batch", zap.Int("batch_size", len(batch)))
		return
	}

	dbStart := time.Now()
	res, err := p.sink.Upsert(ctx, batch)
	elapsed := time.Since(dbStart)

	p.mu.Lock()
	defer p.mu.Unlock()

	result.DatabaseTime += elapsed
	if err != nil {
		p.logger.Error("Batch processing failed", zap.Error(err), zap.Int("batch_size", len(batch)))
		result.FailedBatches++
		result.Errors = append(result.Errors, err.Error())
		return
	}

	result.Upserted += res.Upserted
	result.Duplicates += res.Duplicates
	atomic.AddInt64(&p.stats.DatabaseWrites, res.Upserted)
}

func (p *Pipeline) reject(result *ProcessingResult, verr ValidationError) {
	atomic.AddInt64(&p.stats.RecordsInvalid, 1)
	p.logger.Debug("Invalid record", zap.Int64("row", verr.Row), zap.String("field", verr.Field), zap.String("reason", verr.Message))

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(result.ValidationErrors) < maxValidationErrors {
		result.ValidationErrors = append(result.ValidationErrors, verr)
	}
}

// validateRecord normalizes record in place and reports why it cannot be
// stored
func (p *Pipeline) validateRecord(row int64, record *DataRecord) *ValidationError {
	record.Misspelling = strings.ToLower(strings.TrimSpace(record.Misspelling))
	record.Correction = strings.ToLower(strings.Join(strings.Fields(record.Correction), " "))

	if record.Misspelling == "" {
		return &ValidationError{Row: row, Field: "misspelling", Message: "is empty"}
	}
	if record.Correction == "" {
		return &ValidationError{Row: row, Field: "correction", Value: record.Misspelling, Message: "is empty"}
	}
	if record.Misspelling == record.Correction {
		return &ValidationError{Row: row, Field: "correction", Value: record.Correction, Message: "equals the misspelling"}
	}

	if !p.config.ValidateData {
		return nil
	}

	if !isWord(record.Misspelling) {
		return &ValidationError{Row: row, Field: "misspelling", Value: record.Misspelling, Message: "must be a single word"}
	}
	for _, word := range strings.Split(record.Correction, " ") {
		if !isWord(word) {
			return &ValidationError{Row: row, Field: "correction", Value: record.Correction, Message: "contains non-word characters"}
		}
	}

	if p.config.MaxEditDistance > 0 {
		if d := levenshtein.ComputeDistance(record.Misspelling, record.Correction); d > p.config.MaxEditDistance {
			return &ValidationError{
				Row:     row,
				Field:   "correction",
				Value:   record.Correction,
				Message: fmt.Sprintf("is %d edits away (max %d)", d, p.config.MaxEditDistance),
			}
		}
	}

	return nil
}

// isWord reports whether s is one tokenizer word
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !textutil.IsWordRune(r) {
			return false
		}
	}
	return true
}

// reportProgress reports current processing progress
func (p *Pipeline) reportProgress() {
	elapsed := time.Since(time.Unix(0, p.started.Load()))
	read := atomic.LoadInt64(&p.stats.RecordsRead)

	p.logger.Info("Processing progress",
		zap.Int64("records_read", read),
		zap.Int64("records_valid", atomic.LoadInt64(&p.stats.RecordsValid)),
		zap.Int64("records_invalid", atomic.LoadInt64(&p.stats.RecordsInvalid)),
		zap.Float64("rate_per_sec", float64(read)/elapsed.Seconds()),
		zap.Duration("elapsed", elapsed))
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats(start time.Time) {
	atomic.StoreInt64(&p.stats.RecordsRead, 0)
	atomic.StoreInt64(&p.stats.RecordsValid, 0)
	atomic.StoreInt64(&p.stats.RecordsInvalid, 0)
	atomic.StoreInt64(&p.stats.DatabaseWrites, 0)
	atomic.StoreInt64(&p.stats.BatchesDone, 0)
	p.started.Store(start.UnixNano())
}

// GetStats returns current processing statistics
func (p *Pipeline) GetStats() ProcessingStats {
	return ProcessingStats{
		StartTime:      time.Unix(0, p.started.Load()),
		RecordsRead:    atomic.LoadInt64(&p.stats.RecordsRead),
		RecordsValid:   atomic.LoadInt64(&p.stats.RecordsValid),
		RecordsInvalid: atomic.LoadInt64(&p.stats.RecordsInvalid),
		DatabaseWrites: atomic.LoadInt64(&p.stats.DatabaseWrites),
		BatchesDone:    atomic.LoadInt64(&p.stats.BatchesDone),
	}
}
