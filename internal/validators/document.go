package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-wish-keeper/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldID targets the type-prefixed document identifier.
	FieldID = "id"

	// FieldType targets the collection tag of a document.
	FieldType = "type"

	// FieldAccess targets the access array of a document.
	FieldAccess = "access"

	// FieldParentID targets the parent reference of items and marks.
	FieldParentID = "parent_id"

	// FieldUpdatedAt targets the last-modification timestamp.
	FieldUpdatedAt = "updated_at"

	// FieldDocuments targets the document list of a push batch.
	FieldDocuments = "documents"

	// FieldLength targets the declared length of a push batch.
	FieldLength = "length"
)

// defaultDocumentFields is the set validated when no field scoping is given.
var defaultDocumentFields = []string{FieldID, FieldType, FieldAccess, FieldParentID, FieldUpdatedAt}

// DocumentValidator implements the Validator interface for the sync protocol
// inputs: Document and PushRequest. It performs structural checks only; the
// access rules themselves are enforced by the sync authority service.
//
// It supports both value and pointer receivers for every model type and
// allows optional field-level scoping via variadic field name arguments.
type DocumentValidator struct {
}

// NewDocumentValidator constructs a new DocumentValidator and returns it as
// the Validator interface.
func NewDocumentValidator() Validator {
	return &DocumentValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// Supported types:
//   - models.Document / *models.Document
//   - models.PushRequest / *models.PushRequest
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *DocumentValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Document:
		return v.validateDocument(ctx, value, fields...)
	case *models.Document:
		return v.validateDocument(ctx, *value, fields...)

	case models.PushRequest:
		return v.validatePushRequest(ctx, value, fields...)
	case *models.PushRequest:
		return v.validatePushRequest(ctx, *value, fields...)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, obj)
	}
}

func (v *DocumentValidator) validateDocument(_ context.Context, doc models.Document, fields ...string) error {
	if len(fields) == 0 {
		fields = defaultDocumentFields
	}

	for _, field := range fields {
		switch field {
		case FieldID:
			if doc.ID == "" {
				return ErrEmptyDocumentID
			}
			prefix, _, found := strings.Cut(doc.ID, ":")
			if !found || models.DocType(prefix) != doc.Type {
				return fmt.Errorf("%w: %q", ErrMismatchedIDPrefix, doc.ID)
			}

		case FieldType:
			if _, ok := models.CollectionByType(doc.Type); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownDocumentType, doc.Type)
			}

		case FieldAccess:
			if len(doc.Access) == 0 {
				return ErrEmptyAccess
			}

		case FieldParentID:
			if doc.ParentID == "" && (doc.Type == models.DocTypeItem || doc.Type == models.DocTypeMark) {
				return fmt.Errorf("%w: %q", ErrMissingParentID, doc.ID)
			}

		case FieldUpdatedAt:
			if doc.UpdatedAt.IsZero() {
				return ErrZeroUpdatedAt
			}

		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}

func (v *DocumentValidator) validatePushRequest(ctx context.Context, request models.PushRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDocuments, FieldLength}
	}

	for _, field := range fields {
		switch field {
		case FieldDocuments:
			if len(request.Documents) == 0 {
				return ErrEmptyDocumentBatch
			}
			for _, doc := range request.Documents {
				if err := v.validateDocument(ctx, doc); err != nil {
					return fmt.Errorf("document %s: %w", doc.ID, err)
				}
			}

		case FieldLength:
			if request.Length != len(request.Documents) {
				return ErrBatchLengthMismatch
			}

		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}
