// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	dbschema "github.com/taibuivan/rexauth/internal/platform/database/schema"
	"github.com/taibuivan/rexauth/internal/platform/dberr"
	"github.com/taibuivan/rexauth/internal/platform/postgres"
	"github.com/taibuivan/rexauth/pkg/uuidv7"
)

var _ UserRepository = (*PostgresUserRepository)(nil)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// Uniqueness of email is enforced by the identity_email_key constraint; schema
// fields beyond email/password are kept in the extra JSONB column.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// selectColumns is the shared projection of both lookups.
var selectColumns = strings.Join(dbschema.AuthIdentity.Columns(), ", ")

/*
Create persists a new identity into the auth.identity table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrDuplicateEmail, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dbschema.AuthIdentity.Table, selectColumns,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	extra := user.Extra
	if extra == nil {
		extra = map[string]any{}
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.TokenVersion,
		extra,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves an identity by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated identity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, dbschema.AuthIdentity.Table, dbschema.AuthIdentity.Email,
	)

	user, err := repository.scanOne(context, query, email)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}
	return user, nil
}

/*
FindByID retrieves an identity by its primary key.

Description: A token subject that is not a valid UUID cannot match any row and is
reported as ErrUserNotFound instead of a query error.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated identity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	if !uuidv7.Valid(id) {
		return nil, ErrUserNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, dbschema.AuthIdentity.Table, dbschema.AuthIdentity.ID,
	)

	user, err := repository.scanOne(context, query, id)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}
	return user, nil
}

/*
IncrementTokenVersion bumps tokenversion with a single conditional UPDATE.

Description: The WHERE clause pins the expected version, so of two concurrent
refreshes holding the same token only one row update succeeds.

Parameters:
  - context: context.Context
  - id: string
  - expected: int64

Returns:
  - int64: New version
  - error: ErrVersionConflict, ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) IncrementTokenVersion(context context.Context, id string, expected int64) (int64, error) {
	table := dbschema.AuthIdentity
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1, %s = $3
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		table.Table,
		table.TokenVersion, table.TokenVersion, table.UpdatedAt,
		table.ID, table.TokenVersion,
		table.TokenVersion,
	)

	if !uuidv7.Valid(id) {
		return 0, ErrUserNotFound
	}

	var version int64
	err := repository.pool.QueryRow(context, query, id, expected, time.Now()).Scan(&version)
	if err == nil {
		return version, nil
	}

	if !dberr.IsNoRows(err) {
		return 0, fmt.Errorf("postgres_user_repo_increment_version_failed: %w", err)
	}

	// No row matched: tell a vanished identity apart from a lost race.
	if _, findErr := repository.FindByID(context, id); findErr != nil {
		return 0, findErr
	}
	return 0, ErrVersionConflict
}

// Ping verifies that the PostgreSQL connection pool is healthy.
func (repository *PostgresUserRepository) Ping(context context.Context) error {
	return postgres.Ping(context, repository.pool)
}

// scanOne runs a single-row identity query and maps pgx errors onto store sentinels.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TokenVersion,
		&user.Extra,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsNoRows(err) || dberr.IsInvalidInput(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
