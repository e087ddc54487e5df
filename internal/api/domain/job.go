package domain

import (
	"errors"
	"net/http"
)

// Ingestion job statuses. Transitions are monotonic:
// pending -> running -> done | failed.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

var (
	// ErrJobNotFound is returned when an ingestion job id does not resolve
	ErrJobNotFound = errors.New("ingestion job not found")

	// ErrDocumentNotFound is returned when a document id does not resolve
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoDocumentsResolved is returned when none of the requested
	// document ids exist, so no job can be created
	ErrNoDocumentsResolved = errors.New("no documents resolved for ingestion")

	// ErrValidation is returned for malformed trigger input
	ErrValidation = errors.New("invalid request")
)

// HTTPStatus maps domain errors to HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrNoDocumentsResolved):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
