package ragclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngestChunks(t *testing.T) {
	tests := []struct {
		name       string
		chunks     []string
		statusCode int
		wantErr    bool
	}{
		{
			name:       "successful delivery",
			chunks:     []string{"first chunk", "second chunk"},
			statusCode: http.StatusOK,
			wantErr:    false,
		},
		{
			name:       "created is also success",
			chunks:     []string{"chunk"},
			statusCode: http.StatusCreated,
			wantErr:    false,
		},
		{
			name:       "server error fails delivery",
			chunks:     []string{"chunk"},
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name:       "client error fails delivery",
			chunks:     []string{"chunk"},
			statusCode: http.StatusUnprocessableEntity,
			wantErr:    true,
		},
		{
			name:       "nil chunks serialize as empty array",
			chunks:     nil,
			statusCode: http.StatusOK,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody map[string]interface{}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/ingest/chunks", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(&Config{BaseURL: server.URL}, newTestLogger())

			err := client.IngestChunks(context.Background(), "doc-123", "report.txt", tt.chunks)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, "doc-123", gotBody["document_uuid"])
			assert.Equal(t, "report.txt", gotBody["document_name"])

			// chunks must always be present, never null
			chunks, ok := gotBody["chunks"].([]interface{})
			require.True(t, ok, "chunks should be a JSON array")
			assert.Len(t, chunks, len(tt.chunks))
		})
	}
}

func TestIngestChunksTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(&Config{BaseURL: server.URL}, newTestLogger())

	err := client.IngestChunks(context.Background(), "doc-123", "report.txt", []string{"chunk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to deliver chunks")
}

func TestIngestChunksTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, newTestLogger())

	err := client.IngestChunks(context.Background(), "doc-123", "report.txt", []string{"chunk"})
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingest/chunks", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL + "/"}, newTestLogger())

	require.NoError(t, client.IngestChunks(context.Background(), "doc-123", "report.txt", nil))
}
