package handler

import (
	"context"
	"log/slog"

	"github.com/hqnguyen/ingest-be/internal/api/storage"
	"github.com/hqnguyen/ingest-be/shared/metrics"
)

// JobStore is the job persistence surface the handlers depend on
type JobStore interface {
	CreateJob(ctx context.Context, job *storage.IngestionJob) error
	GetJobByID(ctx context.Context, jobID string) (*storage.IngestionJob, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]storage.IngestionJob, error)
}

// DocumentStore is the document persistence surface the handlers depend on
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *storage.Document, chunks []string) error
	GetDocumentByID(ctx context.Context, documentID string) (*storage.Document, error)
	ListDocuments(ctx context.Context) ([]storage.Document, error)
	ResolveDocumentIDs(ctx context.Context, ids []string) ([]string, error)
	ListChunks(ctx context.Context, documentID string, page, perPage int) (*storage.ChunkPage, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Publisher enqueues ingestion work
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Jobs      JobStore
	Documents DocumentStore
	Publisher Publisher
	Metrics   *metrics.Metrics
}

// IngestionHandler handles ingestion trigger/status HTTP requests
type IngestionHandler struct {
	logger    *slog.Logger
	jobs      JobStore
	documents DocumentStore
	publisher Publisher
	metrics   *metrics.Metrics
}

// NewIngestionHandler creates a new IngestionHandler instance
func NewIngestionHandler(deps *Dependencies) *IngestionHandler {
	return &IngestionHandler{
		logger:    deps.Logger,
		jobs:      deps.Jobs,
		documents: deps.Documents,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
	}
}

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	logger    *slog.Logger
	documents DocumentStore
}

// NewDocumentHandler creates a new DocumentHandler instance
func NewDocumentHandler(deps *Dependencies) *DocumentHandler {
	return &DocumentHandler{
		logger:    deps.Logger,
		documents: deps.Documents,
	}
}
