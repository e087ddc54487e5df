package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hqnguyen/ingest-be/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimJob transitions a job from pending to running using an optimistic
// update. Zero affected rows means the job is unknown, already claimed by
// another consumer, or finalized; the caller drops the message.
func (s *Storage) ClaimJob(ctx context.Context, jobID string) error {
	query := `
		UPDATE ingestion_jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND status = $3
		RETURNING id
	`

	var claimedID string
	err := s.db.QueryRowContext(ctx, query, domain.JobStatusRunning, jobID, domain.JobStatusPending).Scan(&claimedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim job - unknown, already claimed, or finalized",
				slog.String("job_id", jobID),
			)
			return domain.ErrJobNotClaimable
		}
		return fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Info("Job claimed",
		slog.String("job_id", jobID),
	)

	return nil
}

// FinalizeJob moves a running job to a terminal status. The status guard
// keeps transitions monotonic: a job that already reached done or failed
// is never rewritten.
func (s *Storage) FinalizeJob(ctx context.Context, jobID, status string) error {
	query := `
		UPDATE ingestion_jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND status = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, jobID, domain.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to finalize job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		s.logger.Warn("Job finalize - no rows affected (job may not be running)",
			slog.String("job_id", jobID),
			slog.String("status", status),
		)
		return nil
	}

	s.logger.Info("Job status updated",
		slog.String("job_id", jobID),
		slog.String("status", status),
	)

	return nil
}

// ListJobDocuments returns the job's member documents in the order fixed
// at trigger time.
func (s *Storage) ListJobDocuments(ctx context.Context, jobID string) ([]domain.JobDocument, error) {
	query := `
		SELECT d.id, d.name
		FROM ingestion_job_documents m
		JOIN documents d ON d.id = m.document_id
		WHERE m.job_id = $1
		ORDER BY m.position
	`

	var docs []domain.JobDocument
	if err := s.db.SelectContext(ctx, &docs, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list job documents: %w", err)
	}

	return docs, nil
}

// ListDocumentChunks returns the full chunk text sequence of a document,
// ordered by chunk index.
func (s *Storage) ListDocumentChunks(ctx context.Context, documentID string) ([]string, error) {
	query := `
		SELECT text
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index
	`

	var chunks []string
	if err := s.db.SelectContext(ctx, &chunks, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to list document chunks: %w", err)
	}

	return chunks, nil
}
