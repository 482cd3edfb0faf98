// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() models.Document {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return models.Document{
		ID:        "item:018f4e7a-0000-7000-8000-000000000001",
		Type:      models.DocTypeItem,
		Access:    []string{"alice"},
		CreatedBy: "alice",
		ParentID:  "list:018f4e7a-0000-7000-8000-000000000002",
		CreatedAt: ts,
		UpdatedAt: ts,
		Fields:    json.RawMessage(`{"title":"bicycle"}`),
	}
}

func TestDocumentValidator_ValidDocument(t *testing.T) {
	v := NewDocumentValidator()

	doc := validDocument()
	require.NoError(t, v.Validate(context.Background(), doc))
	require.NoError(t, v.Validate(context.Background(), &doc))
}

func TestDocumentValidator_Document(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Document)
		wantErr error
	}{
		{
			name:    "empty id",
			mutate:  func(d *models.Document) { d.ID = "" },
			wantErr: ErrEmptyDocumentID,
		},
		{
			name:    "id prefix does not match type",
			mutate:  func(d *models.Document) { d.ID = "list:abc" },
			wantErr: ErrMismatchedIDPrefix,
		},
		{
			name:    "id without prefix",
			mutate:  func(d *models.Document) { d.ID = "abc" },
			wantErr: ErrMismatchedIDPrefix,
		},
		{
			name: "unknown type",
			mutate: func(d *models.Document) {
				d.Type = "password"
				d.ID = "password:abc"
			},
			wantErr: ErrUnknownDocumentType,
		},
		{
			name:    "empty access",
			mutate:  func(d *models.Document) { d.Access = nil },
			wantErr: ErrEmptyAccess,
		},
		{
			name:    "item without parent",
			mutate:  func(d *models.Document) { d.ParentID = "" },
			wantErr: ErrMissingParentID,
		},
		{
			name:    "zero updated_at",
			mutate:  func(d *models.Document) { d.UpdatedAt = time.Time{} },
			wantErr: ErrZeroUpdatedAt,
		},
	}

	v := NewDocumentValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(&doc)

			err := v.Validate(context.Background(), doc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDocumentValidator_ListNeedsNoParent(t *testing.T) {
	v := NewDocumentValidator()

	doc := validDocument()
	doc.ID = "list:018f4e7a-0000-7000-8000-000000000003"
	doc.Type = models.DocTypeList
	doc.ParentID = ""

	require.NoError(t, v.Validate(context.Background(), doc))
}

func TestDocumentValidator_FieldScoping(t *testing.T) {
	v := NewDocumentValidator()

	doc := validDocument()
	doc.Access = nil

	// Only the id is checked, so the empty access array passes.
	require.NoError(t, v.Validate(context.Background(), doc, FieldID))
	require.ErrorIs(t, v.Validate(context.Background(), doc, FieldAccess), ErrEmptyAccess)
	require.ErrorIs(t, v.Validate(context.Background(), doc, "nonsense"), ErrUnknownField)
}

func TestDocumentValidator_PushRequest(t *testing.T) {
	v := NewDocumentValidator()
	ctx := context.Background()

	valid := models.PushRequest{Documents: []models.Document{validDocument()}, Length: 1}
	require.NoError(t, v.Validate(ctx, valid))
	require.NoError(t, v.Validate(ctx, &valid))

	empty := models.PushRequest{}
	require.ErrorIs(t, v.Validate(ctx, empty), ErrEmptyDocumentBatch)

	mismatched := models.PushRequest{Documents: []models.Document{validDocument()}, Length: 3}
	require.ErrorIs(t, v.Validate(ctx, mismatched), ErrBatchLengthMismatch)

	broken := valid
	broken.Documents = []models.Document{{}}
	require.ErrorIs(t, v.Validate(ctx, broken), ErrEmptyDocumentID)
}

func TestDocumentValidator_UnsupportedType(t *testing.T) {
	v := NewDocumentValidator()

	require.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
}
