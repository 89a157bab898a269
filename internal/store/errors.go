// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is the parent of every uniqueness violation. Handlers map it
// to 409 with errors.Is.
var ErrConflict = errors.New("conflict")

var (
	ErrSlugTaken         = fmt.Errorf("%w: post with this slug already exists", ErrConflict)
	ErrCategorySlugTaken = fmt.Errorf("%w: category with this slug already exists", ErrConflict)
	ErrUserExists        = fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	ErrUsernameTaken     = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrAlreadySubscribed = fmt.Errorf("%w: email is already subscribed", ErrConflict)
)

// ErrMissingRelation reports a post or comment whose author or category
// no longer exists.
var ErrMissingRelation = errors.New("author or category not found")

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// querier is satisfied by both *sql.DB and *sql.Tx so lookups can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
