package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrCounterUnavailable is returned when the invoice counter cannot
	// be read; generation stops before any side effect
	ErrCounterUnavailable = errors.New("invoice counter unavailable")

	// ErrDuplicateInvoice is returned when an invoice already covers the
	// requested project and service period
	ErrDuplicateInvoice = errors.New("invoice already exists for period")

	// ErrPDFGeneration is returned when the invoice document cannot be rendered
	ErrPDFGeneration = errors.New("failed to generate invoice pdf")

	// ErrArtifactUpload is returned when the rendered PDF cannot be stored
	ErrArtifactUpload = errors.New("failed to upload invoice pdf")

	// ErrMetadataPersist is returned when the PDF was stored but the
	// invoice record could not be saved; the artifact is orphaned
	ErrMetadataPersist = errors.New("failed to save invoice record")
)
