package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/api/domain"
	"github.com/hqnguyen/ingest-be/internal/api/dto"
	"github.com/hqnguyen/ingest-be/internal/api/storage"
)

// queueMessage is the wire format published per triggered job
type queueMessage struct {
	JobID string `json:"job_id"`
}

// TriggerIngestion handles POST /api/v1/ingestion/trigger
// Creates a pending job for the given documents and enqueues it. The
// response carries the pending job; processing happens asynchronously.
func (h *IngestionHandler) TriggerIngestion(c *gin.Context) {
	var req dto.TriggerIngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if len(req.DocumentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "document_ids must not be empty",
		})
		return
	}

	seen := make(map[string]bool, len(req.DocumentIDs))
	for _, id := range req.DocumentIDs {
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "document_ids must be valid UUIDs",
			})
			return
		}
		if seen[id] {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "document_ids must not contain duplicates",
			})
			return
		}
		seen[id] = true
	}

	resolved, err := h.documents.ResolveDocumentIDs(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		h.logger.Error("Failed to resolve document ids", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve documents",
		})
		return
	}

	if len(resolved) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No documents found for the given ids",
		})
		return
	}

	now := time.Now().UTC()
	job := storage.IngestionJob{
		JobID:       uuid.New().String(),
		Status:      domain.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		DocumentIDs: resolved,
	}

	if err := h.jobs.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create ingestion job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create ingestion job",
		})
		return
	}

	body, err := json.Marshal(queueMessage{JobID: job.JobID})
	if err != nil {
		h.logger.Error("Failed to marshal queue message", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue ingestion job",
		})
		return
	}

	if err := h.publisher.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		// The pending job row stays behind; re-triggering creates a new job.
		h.logger.Error("Failed to enqueue ingestion job",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue ingestion job",
		})
		return
	}

	if h.metrics != nil {
		h.metrics.JobsTriggeredTotal.Inc()
	}

	h.logger.Info("Ingestion job enqueued",
		slog.String("job_id", job.JobID),
		slog.Int("document_count", len(resolved)),
	)

	c.JSON(http.StatusCreated, toJobDTO(&job))
}

// GetJobStatus handles GET /api/v1/ingestion/status/:job_id
func (h *IngestionHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		status := domain.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get job", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to get job"})
			return
		}
		c.JSON(status, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, toJobDTO(job))
}

// ListJobStatus handles GET /api/v1/ingestion/status
// Lists jobs newest first with cursor pagination
func (h *IngestionHandler) ListJobStatus(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), storage.JobFilter{
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		jobResponse[i] = toJobDTO(&jobs[i])
	}

	var nextCursor string
	if hasMore {
		lastJob := jobs[len(jobs)-1]
		nextCursor = EncodeJobCursor(&storage.JobCursor{
			CreatedAt: lastJob.CreatedAt,
			JobID:     lastJob.JobID,
		})
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

func toJobDTO(job *storage.IngestionJob) dto.JobDTO {
	docIDs := job.DocumentIDs
	if docIDs == nil {
		docIDs = []string{}
	}

	return dto.JobDTO{
		JobID:       job.JobID,
		Status:      job.Status,
		DocumentIDs: docIDs,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   job.UpdatedAt.Format(time.RFC3339Nano),
	}
}
