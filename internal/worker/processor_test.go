package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/worker/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	claimErr error
	claimed  []string

	docs        []domain.JobDocument
	docsErr     error
	chunks      map[string][]string
	chunksErrOn string

	finalized map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chunks:    map[string][]string{},
		finalized: map[string]string{},
	}
}

func (f *fakeStore) ClaimJob(ctx context.Context, jobID string) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	f.claimed = append(f.claimed, jobID)
	return nil
}

func (f *fakeStore) FinalizeJob(ctx context.Context, jobID, status string) error {
	f.finalized[jobID] = status
	return nil
}

func (f *fakeStore) ListJobDocuments(ctx context.Context, jobID string) ([]domain.JobDocument, error) {
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.docs, nil
}

func (f *fakeStore) ListDocumentChunks(ctx context.Context, documentID string) ([]string, error) {
	if documentID == f.chunksErrOn {
		return nil, errors.New("chunk load failed")
	}
	return f.chunks[documentID], nil
}

type delivery struct {
	documentID   string
	documentName string
	chunks       []string
}

type fakeIngester struct {
	failOn     string
	deliveries []delivery
}

func (f *fakeIngester) IngestChunks(ctx context.Context, documentID, documentName string, chunks []string) error {
	if documentID == f.failOn {
		return errors.New("endpoint returned 500")
	}
	f.deliveries = append(f.deliveries, delivery{
		documentID:   documentID,
		documentName: documentName,
		chunks:       chunks,
	})
	return nil
}

func newTestWorker(store Store, ingester Ingester) *Worker {
	return NewWorker(&Config{
		Logger:   newTestLogger(),
		Storage:  store,
		Ingester: ingester,
	})
}

func TestProcessJobDeliversAllDocuments(t *testing.T) {
	jobID := uuid.New().String()
	docA := uuid.New().String()
	docB := uuid.New().String()

	store := newFakeStore()
	store.docs = []domain.JobDocument{
		{DocumentID: docA, Name: "first.txt"},
		{DocumentID: docB, Name: "second.txt"},
	}
	store.chunks[docA] = []string{"chunk one", "chunk two"}
	// docB has no chunks at all

	ingester := &fakeIngester{}
	w := newTestWorker(store, ingester)

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.NoError(t, err)

	// Job was claimed and finalized done
	assert.Equal(t, []string{jobID}, store.claimed)
	assert.Equal(t, domain.JobStatusDone, store.finalized[jobID])

	// Every member document got exactly one delivery, in membership order
	require.Len(t, ingester.deliveries, 2)

	assert.Equal(t, docA, ingester.deliveries[0].documentID)
	assert.Equal(t, "first.txt", ingester.deliveries[0].documentName)
	assert.Equal(t, []string{"chunk one", "chunk two"}, ingester.deliveries[0].chunks)

	// A zero-chunk document is still delivered, with no chunks
	assert.Equal(t, docB, ingester.deliveries[1].documentID)
	assert.Empty(t, ingester.deliveries[1].chunks)
}

func TestProcessJobFailsFastOnDeliveryError(t *testing.T) {
	jobID := uuid.New().String()
	docA := uuid.New().String()
	docB := uuid.New().String()
	docC := uuid.New().String()

	store := newFakeStore()
	store.docs = []domain.JobDocument{
		{DocumentID: docA, Name: "a.txt"},
		{DocumentID: docB, Name: "b.txt"},
		{DocumentID: docC, Name: "c.txt"},
	}
	store.chunks[docA] = []string{"a"}
	store.chunks[docB] = []string{"b"}
	store.chunks[docC] = []string{"c"}

	ingester := &fakeIngester{failOn: docB}
	w := newTestWorker(store, ingester)

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.Error(t, err)

	// The job is failed and the remaining document is never attempted
	assert.Equal(t, domain.JobStatusFailed, store.finalized[jobID])
	require.Len(t, ingester.deliveries, 1)
	assert.Equal(t, docA, ingester.deliveries[0].documentID)
}

func TestProcessJobFailsWhenChunkLoadFails(t *testing.T) {
	jobID := uuid.New().String()
	docA := uuid.New().String()

	store := newFakeStore()
	store.docs = []domain.JobDocument{{DocumentID: docA, Name: "a.txt"}}
	store.chunksErrOn = docA

	ingester := &fakeIngester{}
	w := newTestWorker(store, ingester)

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.Error(t, err)

	assert.Equal(t, domain.JobStatusFailed, store.finalized[jobID])
	assert.Empty(t, ingester.deliveries)
}

func TestProcessJobFailsWhenDocumentListFails(t *testing.T) {
	jobID := uuid.New().String()

	store := newFakeStore()
	store.docsErr = errors.New("db down")

	w := newTestWorker(store, &fakeIngester{})

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.Error(t, err)

	assert.Equal(t, domain.JobStatusFailed, store.finalized[jobID])
}

func TestProcessJobDropsUnclaimableJob(t *testing.T) {
	jobID := uuid.New().String()

	store := newFakeStore()
	store.claimErr = domain.ErrJobNotClaimable

	ingester := &fakeIngester{}
	w := newTestWorker(store, ingester)

	// Unknown or already-handled jobs drop the message without error
	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.NoError(t, err)

	assert.Empty(t, ingester.deliveries)
	assert.Empty(t, store.finalized)
}

func TestProcessJobClaimStoreFailure(t *testing.T) {
	jobID := uuid.New().String()

	store := newFakeStore()
	store.claimErr = errors.New("db down")

	w := newTestWorker(store, &fakeIngester{})

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.Error(t, err)

	// Not finalized: the claim never happened
	assert.Empty(t, store.finalized)
}

func TestProcessJobEmptyMembership(t *testing.T) {
	jobID := uuid.New().String()

	store := newFakeStore()
	ingester := &fakeIngester{}
	w := newTestWorker(store, ingester)

	err := w.processJob(context.Background(), &domain.JobMessage{JobID: jobID})
	require.NoError(t, err)

	// A job with no documents completes immediately
	assert.Equal(t, domain.JobStatusDone, store.finalized[jobID])
	assert.Empty(t, ingester.deliveries)
}
