package dump

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/config"
	"github.com/dentalcore/backupd/internal/model"
)

// Snapshot is a produced dump: the archive bytes plus the format tag that
// selects the matching restore strategy.
type Snapshot struct {
	Data   []byte
	Format string
}

// NativeDumpError is the expected failure of the pg_dump path: tool absent,
// non-zero exit, or connectivity trouble. The producer recovers from it by
// falling back to the record-level dump; any other error is fatal.
type NativeDumpError struct {
	Stderr string
	Err    error
}

func (e *NativeDumpError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("pg_dump: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("pg_dump: %v", e.Err)
}

func (e *NativeDumpError) Unwrap() error { return e.Err }

// Querier is the subset of pgxpool.Pool the record-level dump needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// commandRunner executes an external tool, feeding stdin if non-nil and
// returning stdout and stderr. Swapped out in tests.
type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)

// Producer serializes one tenant's schema. It prefers a schema-scoped
// pg_dump and falls back to a record-level JSON dump of the domain tables
// when the native tool fails.
type Producer struct {
	logger      zerolog.Logger
	db          Querier
	databaseURL string
	pgDumpPath  string
	run         commandRunner
}

func NewProducer(logger zerolog.Logger, db Querier, cfg *config.Config) *Producer {
	return &Producer{
		logger:      logger.With().Str("component", "snapshot-producer").Logger(),
		db:          db,
		databaseURL: cfg.DatabaseURL,
		pgDumpPath:  cfg.PGDumpPath,
		run:         runCommand,
	}
}

// Produce dumps the tenant's schema. When both the native and the fallback
// path fail the returned error carries both causes and nothing is uploaded.
func (p *Producer) Produce(ctx context.Context, tenant *model.Tenant) (*Snapshot, error) {
	if err := ValidateSchemaName(tenant.SchemaName); err != nil {
		return nil, err
	}

	data, nativeErr := p.nativeDump(ctx, tenant)
	if nativeErr == nil {
		return &Snapshot{Data: data, Format: model.BackupFormatSQL}, nil
	}

	p.logger.Warn().Err(nativeErr).
		Str("tenant", tenant.ID).
		Msg("native dump failed, falling back to record dump")

	data, err := EncodeRecordDump(ctx, p.db, tenant.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("record dump after native dump failure (%v): %w", nativeErr, err)
	}
	return &Snapshot{Data: data, Format: model.BackupFormatJSON}, nil
}

func (p *Producer) nativeDump(ctx context.Context, tenant *model.Tenant) ([]byte, error) {
	args := []string{
		"--schema=" + tenant.SchemaName,
		"--format=plain",
		"--inserts",
		"--no-owner",
		"--no-privileges",
		"--dbname=" + p.databaseURL,
	}

	stdout, stderr, err := p.run(ctx, nil, p.pgDumpPath, args...)
	if err != nil {
		return nil, &NativeDumpError{Stderr: strings.TrimSpace(string(stderr)), Err: err}
	}
	return stdout, nil
}

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}
