package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
)

// Storages aggregates the server-side repositories over one shared database
// connection pool.
type Storages struct {
	UserRepository           UserRepository
	ServerDocumentRepository ServerDocumentRepository

	db *DB
}

// NewStorages connects to PostgreSQL, runs the server migrations, and wires
// the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Storages{
		UserRepository:           NewUserRepository(db, log),
		ServerDocumentRepository: NewDocumentRepository(db, log),
		db:                       db,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storages) Close() error {
	return s.db.Close()
}
