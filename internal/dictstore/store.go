package dictstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres caps a statement at 65535 bind parameters; three per row
const maxRowsPerStatement = 1000

const schema = `
CREATE TABLE IF NOT EXISTS spelling_corrections (
	misspelling TEXT PRIMARY KEY,
	correction  TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (misspelling <> correction)
);
CREATE INDEX IF NOT EXISTS idx_spelling_corrections_source ON spelling_corrections (source);`

// Store persists dictionary entries in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// NewStore connects to the database and configures the pool
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	logger.Info("Dictionary store initialized successfully",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return &Store{db: db, logger: logger}, nil
}

// EnsureSchema creates the dictionary table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create dictionary schema: %w", err)
	}
	return nil
}

// Upsert writes entries in one transaction. Existing misspellings take the
// new correction and source.
func (s *Store) Upsert(ctx context.Context, entries []Entry) (*UpsertResult, error) {
	result := &UpsertResult{}
	if len(entries) == 0 {
		return result, nil
	}

	start := time.Now()
	unique := dedupe(entries)
	result.Duplicates = int64(len(entries) - len(unique))

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(unique); i += maxRowsPerStatement {
		end := i + maxRowsPerStatement
		if end > len(unique) {
			end = len(unique)
		}

		query, args := buildUpsert(unique[i:end])
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			s.logger.Error("Batch upsert failed", zap.Error(err), zap.Int("rows", end-i))
			return nil, fmt.Errorf("batch upsert failed: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			affected = int64(end - i)
		}
		result.Upserted += affected
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}

	result.Duration = time.Since(start)
	s.logger.Debug("Batch upsert completed",
		zap.Int64("upserted", result.Upserted),
		zap.Int64("duplicates", result.Duplicates),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// All returns every stored misspelling mapped to its correction
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	var entries []Entry
	query := `SELECT misspelling, correction, source, created_at, updated_at FROM spelling_corrections`
	if err := s.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to load dictionary entries: %w", err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Misspelling] = e.Correction
	}
	return out, nil
}

// Count returns the number of stored entries
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM spelling_corrections"); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// GetStats returns entry counts per source
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT source, COUNT(*) FROM spelling_corrections GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to get dictionary stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{BySource: make(map[string]int64)}
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary stats: %w", err)
		}
		stats.BySource[source] = count
		stats.TotalEntries += count
	}

	return stats, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// dedupe keeps the last entry for each misspelling, preserving first-seen
// order. Postgres rejects a statement that upserts the same key twice.
func dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Misspelling]; ok {
			out[i] = e
			continue
		}
		index[e.Misspelling] = len(out)
		out = append(out, e)
	}
	return out
}

// buildUpsert renders a multi-row upsert for entries
func buildUpsert(entries []Entry) (string, []interface{}) {
	valueStrings := make([]string, 0, len(entries))
	valueArgs := make([]interface{}, 0, len(entries)*3)

	for i, e := range entries {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		valueArgs = append(valueArgs, e.Misspelling, e.Correction, e.Source)
	}

	query := fmt.Sprintf(`
		INSERT INTO spelling_corrections (misspelling, correction, source)
		VALUES %s
		ON CONFLICT (misspelling) DO UPDATE
		SET correction = EXCLUDED.correction, source = EXCLUDED.source, updated_at = NOW()`,
		strings.Join(valueStrings, ","))

	return query, valueArgs
}

// maskDatabaseURL masks sensitive information in database URL for logging
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
