package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/worker/domain"
	"github.com/hqnguyen/ingest-be/shared/metrics"
	"github.com/hqnguyen/ingest-be/shared/rabbitmq"
)

// Store is the persistence surface the worker depends on
type Store interface {
	ClaimJob(ctx context.Context, jobID string) error
	FinalizeJob(ctx context.Context, jobID, status string) error
	ListJobDocuments(ctx context.Context, jobID string) ([]domain.JobDocument, error)
	ListDocumentChunks(ctx context.Context, documentID string) ([]string, error)
}

// Ingester delivers one document's chunks to the RAG endpoint
type Ingester interface {
	IngestChunks(ctx context.Context, documentID, documentName string, chunks []string) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Storage       Store
	RabbitClient  *rabbitmq.Client
	Ingester      Ingester
	Metrics       *metrics.Metrics
	Concurrency   int
	PrefetchCount int
}

// Worker consumes the ingestion queue and drives jobs through their
// status lifecycle.
type Worker struct {
	logger        *slog.Logger
	storage       Store
	rabbitClient  *rabbitmq.Client
	ingester      Ingester
	metrics       *metrics.Metrics
	concurrency   int
	prefetchCount int
	workerID      string
	jobsChan      chan *domain.JobMessage
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		storage:       cfg.Storage,
		rabbitClient:  cfg.RabbitClient,
		ingester:      cfg.Ingester,
		metrics:       cfg.Metrics,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		workerID:      "ingest-worker-" + uuid.New().String()[:8],
		jobsChan:      make(chan *domain.JobMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes the queue until the context is canceled or the delivery
// channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.dispatch(ctx, deliveries)
	return nil
}

// Stop gracefully stops the worker, waiting for in-flight jobs
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// workerLoop processes dispatched jobs one at a time. The message is
// always acked after processing: failed jobs are finalized in the store,
// never redelivered.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	w.logger.Info("Worker goroutine started",
		slog.String("worker_id", w.workerID),
		slog.Int("worker_num", workerNum),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.Int("worker_num", workerNum),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.Int("worker_num", workerNum),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			if err := w.processJob(ctx, msg); err != nil {
				w.logger.Error("Job processing ended with failure",
					slog.String("job_id", msg.JobID),
					slog.String("error", err.Error()),
				)
			}

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("Failed to get RabbitMQ channel for ACK",
					slog.String("job_id", msg.JobID),
				)
				continue
			}

			if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
				w.logger.Error("Failed to ACK message",
					slog.String("job_id", msg.JobID),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}
