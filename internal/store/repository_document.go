// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/jackc/pgerrcode"
)

// documentRepository is the PostgreSQL-backed implementation of
// [ServerDocumentRepository]. It moves rows only; the sync authority rules
// are applied by the service layer before anything reaches this type.
type documentRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewDocumentRepository constructs a [ServerDocumentRepository] backed by the
// provided database connection and logger.
func NewDocumentRepository(db *DB, logger *logger.Logger) ServerDocumentRepository {
	logger.Debug().Msg("creating document repository")
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

// GetDocument retrieves a single document by id, tombstoned or not.
//
// Error handling:
//   - No matching row → [ErrNotFound].
//   - Any other driver-level error → wrapped and returned.
func (r *documentRepository) GetDocument(ctx context.Context, id string) (models.Document, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getServerDocument, id)

	doc, err := scanServerDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.GetDocument").Msg("error: scanning error")
		return models.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}

	return doc, nil
}

// FindVisible returns every live document of collection t whose access array
// contains principal. The access check runs inside PostgreSQL via the jsonb
// key-existence operator, backed by the GIN index on the access column.
func (r *documentRepository) FindVisible(ctx context.Context, principal string, t models.DocType) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, findVisibleDocuments, string(t), principal)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.FindVisible").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanServerDocument(rows)
		if err != nil {
			log.Err(err).Str("func", "*documentRepository.FindVisible").Msg("error: scanning error")
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// InsertDocument stores a brand-new document row.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrDuplicate].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *documentRepository) InsertDocument(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx)

	access, fields, err := encodeJSONColumns(doc)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertServerDocument,
		doc.ID, string(doc.Type), access, doc.CreatedBy, doc.ParentID,
		doc.CreatedAt, doc.UpdatedAt, doc.Deleted, fields)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.InsertDocument").Msg("error: insert failed")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrDuplicate
		default:
			return fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return nil
}

// UpdateDocument overwrites the mutable columns of an existing document.
// Type, created_by and created_at never change after insert.
func (r *documentRepository) UpdateDocument(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx)

	access, fields, err := encodeJSONColumns(doc)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, updateServerDocument,
		doc.ID, access, doc.ParentID, doc.UpdatedAt, doc.Deleted, fields)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.UpdateDocument").Msg("error: update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

func encodeJSONColumns(doc models.Document) (access string, fields any, err error) {
	raw, err := json.Marshal(doc.Access)
	if err != nil {
		return "", nil, fmt.Errorf("encode access array of %s: %w", doc.ID, err)
	}
	if len(doc.Fields) > 0 {
		fields = string(doc.Fields)
	}
	return string(raw), fields, nil
}

func scanServerDocument(row rowScanner) (models.Document, error) {
	var (
		doc     models.Document
		docType string
		access  []byte
		fields  sql.NullString
	)

	err := row.Scan(&doc.ID, &docType, &access, &doc.CreatedBy, &doc.ParentID,
		&doc.CreatedAt, &doc.UpdatedAt, &doc.Deleted, &fields)
	if err != nil {
		return models.Document{}, err
	}

	doc.Type = models.DocType(docType)
	if err = json.Unmarshal(access, &doc.Access); err != nil {
		return models.Document{}, fmt.Errorf("decode access array of %s: %w", doc.ID, err)
	}
	if fields.Valid && fields.String != "" {
		doc.Fields = json.RawMessage(fields.String)
	}

	return doc, nil
}
