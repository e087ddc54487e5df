// Package ragclient delivers document chunks to the external RAG
// ingestion endpoint.
package ragclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one delivery call, including connection setup.
const DefaultTimeout = 5 * time.Second

// Config holds RAG endpoint settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is an HTTP client for the RAG ingestion endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new RAG client
func NewClient(config *Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type ingestChunksRequest struct {
	DocumentUUID string   `json:"document_uuid"`
	DocumentName string   `json:"document_name"`
	Chunks       []string `json:"chunks"`
}

// IngestChunks POSTs one document's full chunk sequence to the endpoint.
// Any 2xx response is success; everything else, including transport
// errors, is a delivery failure. A document with zero chunks is still
// sent with an empty chunk array.
func (c *Client) IngestChunks(ctx context.Context, documentID, documentName string, chunks []string) error {
	if chunks == nil {
		chunks = []string{}
	}

	body, err := json.Marshal(ingestChunksRequest{
		DocumentUUID: documentID,
		DocumentName: documentName,
		Chunks:       chunks,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal ingest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest/chunks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver chunks for document %s: %w", documentID, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint returned status %d for document %s", resp.StatusCode, documentID)
	}

	c.logger.Debug("Chunks delivered",
		slog.String("document_id", documentID),
		slog.Int("chunk_count", len(chunks)),
	)

	return nil
}
