package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hqnguyen/ingest-be/internal/worker/domain"
	"github.com/hqnguyen/ingest-be/shared/metrics"
)

// processJob executes the per-job delivery protocol:
// claim pending->running, deliver each member document's chunks in order,
// finalize done on full success or failed on the first error. Documents
// after a failed delivery are not attempted.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	w.logger.Info("Processing job",
		slog.String("job_id", msg.JobID),
		slog.String("worker_id", w.workerID),
	)

	if err := w.storage.ClaimJob(ctx, msg.JobID); err != nil {
		if errors.Is(err, domain.ErrJobNotClaimable) {
			// Unknown or already handled job: drop the message
			w.logger.Warn("Dropping message for unclaimable job",
				slog.String("job_id", msg.JobID),
			)
			w.countFinished(metrics.OutcomeDropped)
			return nil
		}
		return fmt.Errorf("failed to claim job: %w", err)
	}

	docs, err := w.storage.ListJobDocuments(ctx, msg.JobID)
	if err != nil {
		w.finalize(ctx, msg.JobID, domain.JobStatusFailed)
		return fmt.Errorf("failed to load job documents: %w", err)
	}

	for _, doc := range docs {
		chunks, err := w.storage.ListDocumentChunks(ctx, doc.DocumentID)
		if err != nil {
			w.logger.Error("Failed to load document chunks",
				slog.String("job_id", msg.JobID),
				slog.String("document_id", doc.DocumentID),
				slog.String("error", err.Error()),
			)
			w.finalize(ctx, msg.JobID, domain.JobStatusFailed)
			return fmt.Errorf("failed to load chunks for document %s: %w", doc.DocumentID, err)
		}

		start := time.Now()
		err = w.ingester.IngestChunks(ctx, doc.DocumentID, doc.Name, chunks)
		w.observeDelivery(time.Since(start), err)

		if err != nil {
			w.logger.Error("Chunk delivery failed",
				slog.String("job_id", msg.JobID),
				slog.String("document_id", doc.DocumentID),
				slog.String("error", err.Error()),
			)
			w.finalize(ctx, msg.JobID, domain.JobStatusFailed)
			return fmt.Errorf("delivery failed for document %s: %w", doc.DocumentID, err)
		}

		w.logger.Info("Document delivered",
			slog.String("job_id", msg.JobID),
			slog.String("document_id", doc.DocumentID),
			slog.Int("chunk_count", len(chunks)),
		)
	}

	w.finalize(ctx, msg.JobID, domain.JobStatusDone)

	w.logger.Info("Job completed",
		slog.String("job_id", msg.JobID),
		slog.Int("document_count", len(docs)),
	)

	return nil
}

// finalize records the terminal status; a finalize failure is logged but
// does not change the outcome of the message.
func (w *Worker) finalize(ctx context.Context, jobID, status string) {
	if err := w.storage.FinalizeJob(ctx, jobID, status); err != nil {
		w.logger.Error("Failed to finalize job",
			slog.String("job_id", jobID),
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
	}

	switch status {
	case domain.JobStatusDone:
		w.countFinished(metrics.OutcomeDone)
	case domain.JobStatusFailed:
		w.countFinished(metrics.OutcomeFailed)
	}
}

func (w *Worker) countFinished(outcome string) {
	if w.metrics != nil {
		w.metrics.JobsFinishedTotal.WithLabelValues(outcome).Inc()
	}
}

func (w *Worker) observeDelivery(elapsed time.Duration, err error) {
	if w.metrics == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	w.metrics.DeliveriesTotal.WithLabelValues(result).Inc()
	w.metrics.DeliveryDuration.Observe(elapsed.Seconds())
}
