package domain

import "errors"

var (
	// ErrIndexUnavailable signals that the search index backend is unreachable or timed out.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrStoreUnavailable signals that the relational store failed; the enclosing transaction is aborted.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidQuery signals malformed search text or pagination parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidDocument signals a document that failed validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownKind signals a searchable kind that was never registered.
	ErrUnknownKind = errors.New("unknown searchable kind")
)
