package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// defaultReadTimeout bounds a whole snapshot read.
const defaultReadTimeout = 15 * time.Second

// BaseRepository holds the connection shared by postgres sources.
type BaseRepository struct {
	db          *sqlx.DB
	readTimeout time.Duration
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, readTimeout: defaultReadTimeout}
}

// Ping checks the database connection.
func (r *BaseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithReadTx runs fn in a read-only repeatable-read transaction so every
// query in fn sees the same data.
func (r *BaseRepository) WithReadTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if r.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.readTimeout)
		defer cancel()
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit read transaction: %w", err)
	}
	return nil
}
