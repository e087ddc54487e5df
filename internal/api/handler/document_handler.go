package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/api/domain"
	"github.com/hqnguyen/ingest-be/internal/api/dto"
	"github.com/hqnguyen/ingest-be/internal/api/storage"
	"github.com/hqnguyen/ingest-be/internal/chunker"
)

// CreateDocument handles POST /api/v1/documents
// Stores the submitted text and its fixed-size chunks
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	now := time.Now().UTC()
	doc := storage.Document{
		DocumentID: uuid.New().String(),
		Name:       req.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	chunks := chunker.Split(req.Content, chunker.DefaultChunkSize)

	if err := h.documents.CreateDocument(c.Request.Context(), &doc, chunks); err != nil {
		h.logger.Error("Failed to create document", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create document",
		})
		return
	}

	h.logger.Info("Document created",
		slog.String("document_id", doc.DocumentID),
		slog.String("name", doc.Name),
		slog.Int("chunk_count", doc.ChunkCount),
	)

	c.JSON(http.StatusCreated, toDocumentDTO(&doc))
}

// GetDocument handles GET /api/v1/documents/:document_id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	documentID := c.Param("document_id")

	if _, err := uuid.Parse(documentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "document_id must be a valid UUID",
		})
		return
	}

	doc, err := h.documents.GetDocumentByID(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.logger.Error("Failed to get document", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document"})
		return
	}

	c.JSON(http.StatusOK, toDocumentDTO(doc))
}

// ListDocuments handles GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list documents", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list documents",
		})
		return
	}

	response := make([]dto.DocumentDTO, len(docs))
	for i := range docs {
		response[i] = toDocumentDTO(&docs[i])
	}

	c.JSON(http.StatusOK, gin.H{"documents": response})
}

// ListChunks handles GET /api/v1/documents/:document_id/chunks
// Returns one page of the document's chunks ordered by chunk index
func (h *DocumentHandler) ListChunks(c *gin.Context) {
	documentID := c.Param("document_id")

	if _, err := uuid.Parse(documentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "document_id must be a valid UUID",
		})
		return
	}

	var req dto.ListChunksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}

	if req.PerPage <= 0 {
		req.PerPage = 10
	}

	if req.PerPage > 100 {
		req.PerPage = 100
	}

	if _, err := h.documents.GetDocumentByID(c.Request.Context(), documentID); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.logger.Error("Failed to get document", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document"})
		return
	}

	page, err := h.documents.ListChunks(c.Request.Context(), documentID, req.Page, req.PerPage)
	if err != nil {
		h.logger.Error("Failed to list document chunks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list document chunks",
		})
		return
	}

	chunks := make([]dto.ChunkDTO, len(page.Chunks))
	for i, chunk := range page.Chunks {
		chunks[i] = dto.ChunkDTO{
			ChunkID:    chunk.ChunkID,
			ChunkIndex: chunk.ChunkIndex,
			Text:       chunk.Text,
		}
	}

	c.JSON(http.StatusOK, dto.ChunkPageResponse{
		Chunks:  chunks,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	})
}

// DeleteDocument handles DELETE /api/v1/documents/:document_id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	documentID := c.Param("document_id")

	if _, err := uuid.Parse(documentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "document_id must be a valid UUID",
		})
		return
	}

	if err := h.documents.DeleteDocument(c.Request.Context(), documentID); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.logger.Error("Failed to delete document", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.Status(http.StatusNoContent)
}

func toDocumentDTO(doc *storage.Document) dto.DocumentDTO {
	return dto.DocumentDTO{
		DocumentID: doc.DocumentID,
		Name:       doc.Name,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  doc.UpdatedAt.Format(time.RFC3339Nano),
	}
}
