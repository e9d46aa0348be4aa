package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReplaceConfig defines an atomic delete-then-load for rows owned by a
// single parent key.
type ReplaceConfig struct {
	Table   string   // target table
	KeyCol  string   // parent key column (e.g. "job_id")
	Columns []string // all columns being inserted
}

// ReplaceRows atomically swaps the rows belonging to one parent key:
// existing rows are deleted and the new set is loaded via the COPY protocol
// inside a single transaction. A zero-length rows slice clears the set.
func ReplaceRows(ctx context.Context, pool Pool, cfg ReplaceConfig, keyVal any, rows [][]any) (int64, error) {
	if cfg.Table == "" || cfg.KeyCol == "" {
		return 0, eris.New("db: replace: table and key column required")
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx)

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		pgx.Identifier{cfg.Table}.Sanitize(),
		pgx.Identifier{cfg.KeyCol}.Sanitize(),
	)
	if _, err := tx.Exec(ctx, deleteSQL, keyVal); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{cfg.Table}, cfg.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY into %s", cfg.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}
