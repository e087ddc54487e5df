package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/api/domain"
	"github.com/jmoiron/sqlx"
)

// CreateDocument persists a document and its chunk rows in a single
// transaction. Chunk order follows the slice order.
func (s *Storage) CreateDocument(ctx context.Context, doc *Document, chunks []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = tx.ExecContext(ctx, query, doc.DocumentID, doc.Name, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	chunkQuery := `
		INSERT INTO document_chunks (id, document_id, chunk_index, text)
		VALUES ($1, $2, $3, $4)
	`

	for i, text := range chunks {
		if _, err := tx.ExecContext(ctx, chunkQuery, uuid.New().String(), doc.DocumentID, i, text); err != nil {
			return fmt.Errorf("failed to create document chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document creation: %w", err)
	}

	doc.ChunkCount = len(chunks)
	return nil
}

// GetDocumentByID loads one document with its chunk count
func (s *Storage) GetDocumentByID(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	query := `
		SELECT d.id, d.name, d.created_at, d.updated_at,
			(SELECT COUNT(*) FROM document_chunks c WHERE c.document_id = d.id) AS chunk_count
		FROM documents d
		WHERE d.id = $1
	`

	err := s.db.GetContext(ctx, &doc, query, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListDocuments returns all documents, newest first
func (s *Storage) ListDocuments(ctx context.Context) ([]Document, error) {
	query := `
		SELECT d.id, d.name, d.created_at, d.updated_at,
			(SELECT COUNT(*) FROM document_chunks c WHERE c.document_id = d.id) AS chunk_count
		FROM documents d
		ORDER BY d.created_at DESC, d.id DESC
	`

	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// ResolveDocumentIDs returns the subset of ids that exist, preserving the
// input order. Unknown ids are silently dropped.
func (s *Storage) ResolveDocumentIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM documents WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build resolve query: %w", err)
	}

	var found []string
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to resolve document ids: %w", err)
	}

	exists := make(map[string]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	resolved := make([]string, 0, len(found))
	for _, id := range ids {
		if exists[id] {
			resolved = append(resolved, id)
		}
	}

	return resolved, nil
}

// ListChunks returns one page of a document's chunks ordered by chunk index
func (s *Storage) ListChunks(ctx context.Context, documentID string, page, perPage int) (*ChunkPage, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`
	if err := s.db.GetContext(ctx, &total, countQuery, documentID); err != nil {
		return nil, fmt.Errorf("failed to count document chunks: %w", err)
	}

	query := `
		SELECT id, document_id, chunk_index, text
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index
		LIMIT $2 OFFSET $3
	`

	var chunks []DocumentChunk
	if err := s.db.SelectContext(ctx, &chunks, query, documentID, perPage, (page-1)*perPage); err != nil {
		return nil, fmt.Errorf("failed to list document chunks: %w", err)
	}

	return &ChunkPage{
		Chunks:  chunks,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// DeleteDocument removes a document; chunk and membership rows cascade
func (s *Storage) DeleteDocument(ctx context.Context, documentID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrDocumentNotFound
	}

	return nil
}
