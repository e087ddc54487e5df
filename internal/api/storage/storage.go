package storage

import (
	"time"

	"github.com/hqnguyen/ingest-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the API service
type Storage struct {
	db *sqlx.DB
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// IngestionJob is a job row plus its member document ids in processing order
type IngestionJob struct {
	JobID       string    `db:"id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	DocumentIDs []string  `db:"-"`
}

// Document is a stored document with its chunk count
type Document struct {
	DocumentID string    `db:"id"`
	Name       string    `db:"name"`
	ChunkCount int       `db:"chunk_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// DocumentChunk is one contiguous slice of a document's text
type DocumentChunk struct {
	ChunkID    string `db:"id"`
	DocumentID string `db:"document_id"`
	ChunkIndex int    `db:"chunk_index"`
	Text       string `db:"text"`
}

// ChunkPage is one page of a document's chunks, ordered by chunk index
type ChunkPage struct {
	Chunks  []DocumentChunk
	Total   int
	Page    int
	PerPage int
}
