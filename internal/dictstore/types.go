package dictstore

import (
	"time"
)

// Entry is one misspelling and its canonical correction
type Entry struct {
	Misspelling string    `db:"misspelling" json:"misspelling"`
	Correction  string    `db:"correction" json:"correction"`
	Source      string    `db:"source" json:"source"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Stats represents dictionary table statistics
type Stats struct {
	TotalEntries int64            `json:"total_entries"`
	BySource     map[string]int64 `json:"by_source"`
}

// UpsertResult represents the result of a batch upsert operation
type UpsertResult struct {
	Upserted   int64         `json:"upserted"`
	Duplicates int64         `json:"duplicates"` // repeated misspellings collapsed within the batch
	Duration   time.Duration `json:"duration"`
}
