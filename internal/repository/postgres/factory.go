package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/typing-backend/internal/db"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

func NewRepositories(q db.DBTX) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{q},
		TypingTests:  &typingTestsRepo{q},
		Certificates: &certificatesRepo{q},
		Texts:        &textsRepo{q},
	}
}

type Store struct {
	db *sql.DB
}

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

func (s *Store) Repos() repo.Repositories { return NewRepositories(s.db) }

// WithTx runs fn with repositories sharing one read-committed transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r repo.Repositories) error) error {
	return db.WithTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewRepositories(tx))
	})
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", repo.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgInvalidText:
			return repo.ErrNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
