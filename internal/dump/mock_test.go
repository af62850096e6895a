package dump

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---------- fake querier ----------

// fakeQuerier serves canned rows per table name and records the queries it
// saw.
type fakeQuerier struct {
	tables  map[string]*fakeTable
	queries []string
	err     error
}

type fakeTable struct {
	columns []string
	rows    [][]any
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sql)
	if q.err != nil {
		return nil, q.err
	}
	for name, table := range q.tables {
		if strings.Contains(sql, `"`+name+`"`) {
			return &fakeRows{columns: table.columns, rows: table.rows}, nil
		}
	}
	return &fakeRows{}, nil
}

// ---------- fake rows ----------

type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx-1], nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Scan(dest ...any) error     { return nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte        { return nil }
func (r *fakeRows) Conn() *pgx.Conn            { return nil }

// ---------- fake pool ----------

// fakePool records executed SQL and can fail statements matching a
// substring.
type fakePool struct {
	execs    []string
	failOn   string
	tx       *fakeTx
	beginErr error
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, sql)
	if p.failOn != "" && strings.Contains(sql, p.failOn) {
		return pgconn.CommandTag{}, fmt.Errorf("forced failure on %q", p.failOn)
	}
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	if p.tx == nil {
		p.tx = &fakeTx{}
	}
	return p.tx, nil
}

// ---------- fake tx ----------

type fakeTx struct {
	execs      []string
	execArgs   [][]any
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	t.execArgs = append(t.execArgs, arguments)
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, fmt.Errorf("forced failure on %q", t.failOn)
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &fakeRows{}, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }
