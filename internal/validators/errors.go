package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyDocumentID     = errors.New("document id is required")
	ErrMismatchedIDPrefix  = errors.New("document id prefix does not match its type")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrEmptyAccess         = errors.New("access array cannot be empty")
	ErrMissingParentID     = errors.New("parent id is required for this document type")
	ErrZeroUpdatedAt       = errors.New("updated_at timestamp is required")
	ErrEmptyDocumentBatch  = errors.New("document batch cannot be empty")
	ErrBatchLengthMismatch = errors.New("declared batch length does not match document count")
)
