package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/migrations"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// localDocumentStore is the SQLite-backed implementation of [DocumentStore].
// All writes go through a single mutex so the revision check, sequence
// increment, and row write form one serialized unit; readers are not blocked.
type localDocumentStore struct {
	db   *sql.DB
	log  *logger.Logger
	feed *changeFeed

	mu sync.Mutex
}

// NewLocalDocumentStore opens (creating if necessary) the SQLite database at
// cfg.Path, applies pending schema migrations, and returns a ready store.
// The path ":memory:" opens a throwaway in-process database, used by tests.
func NewLocalDocumentStore(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (DocumentStore, error) {
	if cfg.Path != ":memory:" {
		if err := createLocalDBFileIfNotExists(cfg.Path); err != nil {
			log.Err(err).Str("func", "NewLocalDocumentStore").Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000")
	if err != nil {
		log.Err(err).Str("func", "NewLocalDocumentStore").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to local DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewLocalDocumentStore").Msg("error connecting database (ping)")
		return nil, err
	}

	if err = migrations.MigrateClient(conn); err != nil {
		return nil, fmt.Errorf("local store migration failed: %w", err)
	}
	log.Debug().Str("func", "NewLocalDocumentStore").Msg("local document store ready")

	return &localDocumentStore{
		db:   conn,
		log:  log,
		feed: newChangeFeed(),
	}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}

func (s *localDocumentStore) Get(ctx context.Context, id string) (models.Document, error) {
	row := s.db.QueryRowContext(ctx, getDocument, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}

	return doc, nil
}

func (s *localDocumentStore) Put(ctx context.Context, doc models.Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin put tx: %w", err)
	}
	defer tx.Rollback()

	var curRev, curPushed, curDeleted int64
	err = tx.QueryRowContext(ctx, getDocumentHead, doc.ID).Scan(&curRev, &curPushed, &curDeleted)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read document head %s: %w", doc.ID, err)
	}

	if exists && doc.Rev != curRev {
		return 0, fmt.Errorf("put %s (rev %d, current %d): %w", doc.ID, doc.Rev, curRev, ErrRevConflict)
	}
	if !exists && doc.Rev != 0 {
		return 0, fmt.Errorf("put %s (rev %d of unknown document): %w", doc.ID, doc.Rev, ErrRevConflict)
	}

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return 0, err
	}

	access, err := json.Marshal(doc.Access)
	if err != nil {
		return 0, fmt.Errorf("encode access array: %w", err)
	}
	fields := fieldsValue(doc.Fields)

	if exists {
		_, err = tx.ExecContext(ctx, updateDocument,
			string(doc.Type), string(access), doc.CreatedBy, doc.ParentID,
			doc.CreatedAt, doc.UpdatedAt, boolToInt(doc.Deleted), fields,
			seq, seq, doc.ID)
	} else {
		_, err = tx.ExecContext(ctx, insertDocument,
			doc.ID, string(doc.Type), string(access), doc.CreatedBy, doc.ParentID,
			doc.CreatedAt, doc.UpdatedAt, boolToInt(doc.Deleted), fields,
			seq, seq)
	}
	if err != nil {
		return 0, fmt.Errorf("write document %s: %w", doc.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit put %s: %w", doc.ID, err)
	}

	stored := doc
	stored.Rev = seq
	stored.PushedSeq = curPushed
	s.feed.notify(Change{Seq: seq, ID: doc.ID, Deleted: stored.Deleted, Doc: &stored})

	return seq, nil
}

func (s *localDocumentStore) SoftDelete(ctx context.Context, id string, rev int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin soft-delete tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, getDocument, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %s: %w", id, err)
	}

	// Tombstoning twice must not emit a second deletion notification.
	if doc.Deleted {
		return nil
	}
	if doc.Rev != rev {
		return fmt.Errorf("soft-delete %s (rev %d, current %d): %w", id, rev, doc.Rev, ErrRevConflict)
	}

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, softDeleteDocument, now, seq, seq, id); err != nil {
		return fmt.Errorf("soft-delete document %s: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit soft-delete %s: %w", id, err)
	}

	doc.Deleted = true
	doc.UpdatedAt = now
	doc.Rev = seq
	s.feed.notify(Change{Seq: seq, ID: id, Deleted: true, Doc: &doc})

	return nil
}

func (s *localDocumentStore) Find(ctx context.Context, sel Selector) ([]models.Document, error) {
	builder := sq.Select(
		"id", "type", "access", "created_by", "parent_id",
		"created_at", "updated_at", "deleted", "fields", "rev", "pushed_seq",
	).From("documents")

	if sel.Type != "" {
		builder = builder.Where(sq.Eq{"type": string(sel.Type)})
	}
	if sel.ParentID != "" {
		builder = builder.Where(sq.Eq{"parent_id": sel.ParentID})
	}
	if sel.CreatedBy != "" {
		builder = builder.Where(sq.Eq{"created_by": sel.CreatedBy})
	}
	if !sel.IncludeDeleted {
		builder = builder.Where(sq.Eq{"deleted": 0})
	}

	// Rides the (type, parent_id, updated_at) compound index.
	query, args, err := builder.OrderBy("type", "parent_id", "updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan found document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (s *localDocumentStore) ChangesSince(ctx context.Context, since int64) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, changesSince, since)
	if err != nil {
		return nil, fmt.Errorf("read changes since %d: %w", since, err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		doc, seq, err := scanDocumentWithSeq(rows)
		if err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		changes = append(changes, Change{Seq: seq, ID: doc.ID, Deleted: doc.Deleted, Doc: &doc})
	}

	return changes, rows.Err()
}

func (s *localDocumentStore) MarkPushed(ctx context.Context, ids []string, seq int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Update("documents").
		Set("pushed_seq", seq).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark-pushed query: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark documents pushed: %w", err)
	}

	return nil
}

func (s *localDocumentStore) Watch() (<-chan Change, func()) {
	return s.feed.subscribe()
}

func (s *localDocumentStore) Close() error {
	s.feed.closeAll()
	if dropped := s.feed.droppedCount(); dropped > 0 {
		s.log.Warn().Int64("dropped", dropped).Msg("change feed dropped events for slow subscribers")
	}
	return s.db.Close()
}

func nextSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, incrementSequence); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, selectSequence).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (models.Document, error) {
	var (
		doc     models.Document
		docType string
		access  string
		deleted int64
		fields  sql.NullString
	)

	err := row.Scan(&doc.ID, &docType, &access, &doc.CreatedBy, &doc.ParentID,
		&doc.CreatedAt, &doc.UpdatedAt, &deleted, &fields, &doc.Rev, &doc.PushedSeq)
	if err != nil {
		return models.Document{}, err
	}

	return buildDocument(doc, docType, access, deleted, fields)
}

func scanDocumentWithSeq(row rowScanner) (models.Document, int64, error) {
	var (
		doc     models.Document
		docType string
		access  string
		deleted int64
		fields  sql.NullString
		seq     int64
	)

	err := row.Scan(&doc.ID, &docType, &access, &doc.CreatedBy, &doc.ParentID,
		&doc.CreatedAt, &doc.UpdatedAt, &deleted, &fields, &doc.Rev, &doc.PushedSeq, &seq)
	if err != nil {
		return models.Document{}, 0, err
	}

	doc, err = buildDocument(doc, docType, access, deleted, fields)
	return doc, seq, err
}

func buildDocument(doc models.Document, docType, access string, deleted int64, fields sql.NullString) (models.Document, error) {
	doc.Type = models.DocType(docType)
	doc.Deleted = deleted != 0

	if err := json.Unmarshal([]byte(access), &doc.Access); err != nil {
		return models.Document{}, fmt.Errorf("decode access array of %s: %w", doc.ID, err)
	}
	if fields.Valid && fields.String != "" {
		doc.Fields = json.RawMessage(fields.String)
	}

	return doc, nil
}

func fieldsValue(fields json.RawMessage) any {
	if len(fields) == 0 {
		return nil
	}
	return string(fields)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
