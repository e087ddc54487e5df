package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hqnguyen/ingest-be/internal/api/domain"
	"github.com/hqnguyen/ingest-be/internal/api/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeJobStore struct {
	createErr error
	created   []*storage.IngestionJob

	getJob *storage.IngestionJob
	getErr error

	listJobs  []storage.IngestionJob
	listErr   error
	gotFilter storage.JobFilter
}

func (f *fakeJobStore) CreateJob(ctx context.Context, job *storage.IngestionJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, job)
	return nil
}

func (f *fakeJobStore) GetJobByID(ctx context.Context, jobID string) (*storage.IngestionJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getJob, nil
}

func (f *fakeJobStore) ListJobs(ctx context.Context, filter storage.JobFilter) ([]storage.IngestionJob, error) {
	f.gotFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listJobs, nil
}

type fakeDocumentStore struct {
	createErr error
	createdID string
	gotChunks []string

	getDoc *storage.Document
	getErr error

	listDocs []storage.Document
	listErr  error

	resolved   []string
	resolveErr error
	gotResolve []string

	chunkPage  *storage.ChunkPage
	chunkErr   error
	gotPage    int
	gotPerPage int

	deleteErr error
	deletedID string
}

func (f *fakeDocumentStore) CreateDocument(ctx context.Context, doc *storage.Document, chunks []string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdID = doc.DocumentID
	f.gotChunks = chunks
	doc.ChunkCount = len(chunks)
	return nil
}

func (f *fakeDocumentStore) GetDocumentByID(ctx context.Context, documentID string) (*storage.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getDoc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	return f.getDoc, nil
}

func (f *fakeDocumentStore) ListDocuments(ctx context.Context) ([]storage.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listDocs, nil
}

func (f *fakeDocumentStore) ResolveDocumentIDs(ctx context.Context, ids []string) ([]string, error) {
	f.gotResolve = ids
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.resolved, nil
}

func (f *fakeDocumentStore) ListChunks(ctx context.Context, documentID string, page, perPage int) (*storage.ChunkPage, error) {
	f.gotPage = page
	f.gotPerPage = perPage
	if f.chunkErr != nil {
		return nil, f.chunkErr
	}
	return f.chunkPage, nil
}

func (f *fakeDocumentStore) DeleteDocument(ctx context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = documentID
	return nil
}

type fakePublisher struct {
	publishErr error
	published  [][]byte
}

func (f *fakePublisher) PublishWithRetry(ctx context.Context, body []byte, contentType string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, body)
	return nil
}

func performRequest(handler gin.HandlerFunc, method, path, body string, params ...gin.Param) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Request = req
	c.Params = append(c.Params, params...)

	handler(c)
	// Flush any status set via c.Status to the recorder, as gin's engine
	// does after the handler chain.
	c.Writer.WriteHeaderNow()
	return w
}
