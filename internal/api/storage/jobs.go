package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hqnguyen/ingest-be/internal/api/domain"
	"github.com/jmoiron/sqlx"
)

// CreateJob persists a pending job and its member document snapshot in a
// single transaction. job.DocumentIDs defines the processing order.
func (s *Storage) CreateJob(ctx context.Context, job *IngestionJob) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ingestion_jobs (id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = tx.ExecContext(ctx, query, job.JobID, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	memberQuery := `
		INSERT INTO ingestion_job_documents (job_id, document_id, position)
		VALUES ($1, $2, $3)
	`

	for i, docID := range job.DocumentIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, job.JobID, docID, i); err != nil {
			return fmt.Errorf("failed to attach document to job: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job creation: %w", err)
	}

	return nil
}

// GetJobByID loads one job with its member document ids
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*IngestionJob, error) {
	var job IngestionJob
	query := `
		SELECT id, status, created_at, updated_at
		FROM ingestion_jobs
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	memberQuery := `
		SELECT document_id
		FROM ingestion_job_documents
		WHERE job_id = $1
		ORDER BY position
	`

	if err := s.db.SelectContext(ctx, &job.DocumentIDs, memberQuery, jobID); err != nil {
		return nil, fmt.Errorf("failed to load job documents: %w", err)
	}

	return &job, nil
}

type JobFilter struct {
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListJobs returns jobs newest first, one extra row beyond PageSize so the
// caller can detect whether more results exist.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]IngestionJob, error) {
	query := `
		SELECT id, status, created_at, updated_at
		FROM ingestion_jobs
	`
	args := []interface{}{}

	if filter.Cursor != nil {
		query += " WHERE (created_at, id) < ($1, $2)"
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	// Order by created_at DESC, id DESC for consistent pagination
	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, filter.PageSize+1)

	var jobs []IngestionJob
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	if err := s.attachDocumentIDs(ctx, jobs); err != nil {
		return nil, err
	}

	return jobs, nil
}

// attachDocumentIDs batch-loads the member snapshot for a set of jobs
func (s *Storage) attachDocumentIDs(ctx context.Context, jobs []IngestionJob) error {
	if len(jobs) == 0 {
		return nil
	}

	jobIDs := make([]string, len(jobs))
	for i, job := range jobs {
		jobIDs[i] = job.JobID
	}

	query, args, err := sqlx.In(`
		SELECT job_id, document_id
		FROM ingestion_job_documents
		WHERE job_id IN (?)
		ORDER BY job_id, position
	`, jobIDs)
	if err != nil {
		return fmt.Errorf("failed to build membership query: %w", err)
	}

	var rows []struct {
		JobID      string `db:"job_id"`
		DocumentID string `db:"document_id"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load job documents: %w", err)
	}

	byJob := make(map[string][]string, len(jobs))
	for _, row := range rows {
		byJob[row.JobID] = append(byJob[row.JobID], row.DocumentID)
	}

	for i := range jobs {
		jobs[i].DocumentIDs = byJob[jobs[i].JobID]
	}

	return nil
}
