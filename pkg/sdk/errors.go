package docindex

import "github.com/kailas-cloud/docindex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidDocument  = domain.ErrInvalidDocument
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrIndexUnavailable = domain.ErrIndexUnavailable
	ErrStoreUnavailable = domain.ErrStoreUnavailable
)
