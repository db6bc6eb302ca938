package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"data-jobs/internal/database"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dest)
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.data[r.i-1], dest)
}

func assign(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(vals), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = vals[i].(int)
		case *int64:
			*p = vals[i].(int64)
		case *bool:
			*p = vals[i].(bool)
		case *string:
			*p = vals[i].(string)
		case *time.Time:
			*p = vals[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type copyCall struct {
	table   string
	columns []string
	rows    [][]any
}

type fakeDB struct {
	rows    []fakeRow
	results [][][]any
	queries []string
	args    [][]any

	tx       *fakeTx
	beginErr error
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close() error               { return nil }
func (f *fakeDB) SQLDB() *sql.DB             { return nil }

func (f *fakeDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return 0, nil
}

func (f *fakeDB) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	if len(f.results) == 0 {
		return &fakeRows{}, nil
	}
	data := f.results[0]
	f.results = f.results[1:]
	return &fakeRows{data: data}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, query string, args ...any) database.Row {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	if len(f.rows) == 0 {
		return fakeRow{err: fmt.Errorf("no row queued for %q", query)}
	}
	r := f.rows[0]
	f.rows = f.rows[1:]
	return r
}

func (f *fakeDB) Begin(context.Context) (database.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	if f.tx == nil {
		f.tx = &fakeTx{}
	}
	return f.tx, nil
}

type fakeTx struct {
	execs  []string
	copies []copyCall

	// copyErrOn makes CopyFrom into that table fail.
	copyErrOn string

	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	t.execs = append(t.execs, query)
	return 0, nil
}

func (t *fakeTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return &fakeRows{}, nil
}

func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row {
	return fakeRow{err: fmt.Errorf("unexpected QueryRow in tx")}
}

func (t *fakeTx) CopyFrom(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == t.copyErrOn {
		return 0, fmt.Errorf("copy failed")
	}
	t.copies = append(t.copies, copyCall{table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}
