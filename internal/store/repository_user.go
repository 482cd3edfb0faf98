package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new account. user.Password must already be a derived
// hash; the repository stores it verbatim in the password_hash column.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrDuplicate].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) error {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Principal, user.Name, user.Password)

	if err := row.Scan(&user.Principal, &user.Name, &user.Password, &user.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrDuplicate
		default:
			return fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return nil
}

// FindUserByPrincipal retrieves the stored account for the given principal,
// password hash included.
//
// Error handling:
//   - No matching row → [ErrNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByPrincipal(ctx context.Context, principal string) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, findUserByPrincipal, principal)

	if err := row.Scan(&found.Principal, &found.Name, &found.Password, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}

		log.Err(err).Str("func", "*userRepository.FindUserByPrincipal").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}
