package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records statements and replays canned results.
type fakeDB struct {
	execs   []execCall
	execTag pgconn.CommandTag
	execErr error
	row     pgx.Row
	rows    pgx.Rows
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.rows == nil {
		return nil, fmt.Errorf("no rows configured")
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	if f.row == nil {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return f.row
}

type fakeRow struct {
	scan func(dest ...any) error
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.scan(dest...)
}
