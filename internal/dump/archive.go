package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/config"
	"github.com/dentalcore/backupd/internal/model"
)

// Archive is a downloaded backup ready to be restored. The two variants
// carry their own restore strategies; the ledger record's format tag decides
// which one a set of bytes becomes.
type Archive interface {
	Format() string
	Restore(ctx context.Context, tenant *model.Tenant) error
}

// Pool is the subset of pgxpool.Pool the restorer needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Restorer materializes archives and destructively replaces tenant data with
// their contents. Both restore paths stage the incoming data fully before
// anything live is dropped, so a failed restore leaves the schema as it was.
type Restorer struct {
	logger      zerolog.Logger
	pool        Pool
	databaseURL string
	psqlPath    string
	run         commandRunner
}

func NewRestorer(logger zerolog.Logger, pool Pool, cfg *config.Config) *Restorer {
	return &Restorer{
		logger:      logger.With().Str("component", "restorer").Logger(),
		pool:        pool,
		databaseURL: cfg.DatabaseURL,
		psqlPath:    cfg.PSQLPath,
		run:         runCommand,
	}
}

// Open turns ledger metadata plus archive bytes into the matching variant.
// Record-format archives are decoded and validated here, before any restore
// work starts.
func (r *Restorer) Open(record *model.Backup, data []byte) (Archive, error) {
	switch record.Format {
	case model.BackupFormatSQL:
		return &RelationalArchive{restorer: r, data: data}, nil
	case model.BackupFormatJSON:
		d, err := DecodeRecordDump(data)
		if err != nil {
			return nil, err
		}
		return &RecordArchive{restorer: r, dump: d}, nil
	default:
		return nil, fmt.Errorf("unknown backup format %q", record.Format)
	}
}

// RelationalArchive is a plain-SQL pg_dump, replayed through psql.
type RelationalArchive struct {
	restorer *Restorer
	data     []byte
}

func (a *RelationalArchive) Format() string { return model.BackupFormatSQL }

// Restore sets the live schema aside under a temporary name, lets the dump
// rebuild the schema from scratch, then carries the current ledger tables
// across and drops the set-aside copy. If the replay fails the original
// schema is renamed back into place, so there is no partially-truncated
// intermediate state.
func (a *RelationalArchive) Restore(ctx context.Context, tenant *model.Tenant) error {
	if err := ValidateSchemaName(tenant.SchemaName); err != nil {
		return err
	}

	r := a.restorer
	oldName := tenant.SchemaName + "_restore_old"
	live := pgx.Identifier{tenant.SchemaName}.Sanitize()
	old := pgx.Identifier{oldName}.Sanitize()

	r.logger.Info().Str("tenant", tenant.ID).Str("schema", tenant.SchemaName).Msg("starting relational restore")

	if _, err := r.pool.Exec(ctx, "DROP SCHEMA IF EXISTS "+old+" CASCADE"); err != nil {
		return fmt.Errorf("drop stale staging schema: %w", err)
	}
	if _, err := r.pool.Exec(ctx, "ALTER SCHEMA "+live+" RENAME TO "+old); err != nil {
		return fmt.Errorf("set live schema aside: %w", err)
	}

	if replayErr := a.replay(ctx); replayErr != nil {
		// Put the original schema back; the replay may have left a partial
		// schema behind.
		_, _ = r.pool.Exec(ctx, "DROP SCHEMA IF EXISTS "+live+" CASCADE")
		if _, err := r.pool.Exec(ctx, "ALTER SCHEMA "+old+" RENAME TO "+live); err != nil {
			return fmt.Errorf("replay dump: %v (restoring original schema also failed: %w)", replayErr, err)
		}
		return fmt.Errorf("replay dump: %w", replayErr)
	}

	// The dump's ledger contents are stale relative to entries recorded
	// since the backup was taken; keep the current rows.
	for _, table := range LedgerTables {
		dst := pgx.Identifier{tenant.SchemaName, table}.Sanitize()
		src := pgx.Identifier{oldName, table}.Sanitize()
		if _, err := r.pool.Exec(ctx, "TRUNCATE "+dst); err != nil {
			return fmt.Errorf("reset ledger table %s: %w", table, err)
		}
		if _, err := r.pool.Exec(ctx, "INSERT INTO "+dst+" SELECT * FROM "+src); err != nil {
			return fmt.Errorf("carry ledger table %s across: %w", table, err)
		}
	}

	if _, err := r.pool.Exec(ctx, "DROP SCHEMA "+old+" CASCADE"); err != nil {
		return fmt.Errorf("drop set-aside schema: %w", err)
	}

	r.logger.Info().Str("tenant", tenant.ID).Msg("relational restore complete")
	return nil
}

func (a *RelationalArchive) replay(ctx context.Context) error {
	r := a.restorer
	args := []string{
		"--set", "ON_ERROR_STOP=1",
		"--single-transaction",
		"--quiet",
		"--dbname=" + r.databaseURL,
	}

	_, stderr, err := r.run(ctx, a.data, r.psqlPath, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("psql: %w: %s", err, msg)
		}
		return fmt.Errorf("psql: %w", err)
	}
	return nil
}

// RecordArchive is a record-level JSON dump, replayed row by row.
type RecordArchive struct {
	restorer *Restorer
	dump     *RecordDump
}

func (a *RecordArchive) Format() string { return model.BackupFormatJSON }

// Restore deletes all rows of every in-scope domain table and re-inserts the
// dumped rows inside a single transaction. Ledger tables are never touched,
// and ledger rows present in the dump are not replayed.
func (a *RecordArchive) Restore(ctx context.Context, tenant *model.Tenant) error {
	if err := ValidateSchemaName(tenant.SchemaName); err != nil {
		return err
	}

	r := a.restorer
	r.logger.Info().Str("tenant", tenant.ID).Str("schema", tenant.SchemaName).Msg("starting record restore")

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin restore transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Children before parents.
	for i := len(DomainTables) - 1; i >= 0; i-- {
		table := pgx.Identifier{tenant.SchemaName, DomainTables[i]}.Sanitize()
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear table %s: %w", DomainTables[i], err)
		}
	}

	for _, tr := range a.dump.Tables {
		if !isDomainTable(tr.Name) {
			continue
		}
		if err := insertRecords(ctx, tx, tenant.SchemaName, &tr); err != nil {
			return fmt.Errorf("reload table %s: %w", tr.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	r.logger.Info().Str("tenant", tenant.ID).Msg("record restore complete")
	return nil
}

func insertRecords(ctx context.Context, tx pgx.Tx, schema string, tr *TableRecords) error {
	if len(tr.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(tr.Columns))
	placeholders := make([]string, len(tr.Columns))
	for i, c := range tr.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{schema, tr.Name}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	for _, row := range tr.Rows {
		// Simple protocol sends values as text literals, letting the
		// column types drive the parsing of the JSON-decoded values.
		args := append([]any{pgx.QueryExecModeSimpleProtocol}, denormalizeRow(row)...)
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

func denormalizeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case json.Number:
			out[i] = t.String()
		default:
			out[i] = v
		}
	}
	return out
}
