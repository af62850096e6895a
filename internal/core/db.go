package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dentalcore/backupd/internal/model"
)

// DB is the database surface the services use; satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// tenantTable returns the schema-qualified, quoted name of a table inside
// the tenant's schema.
func tenantTable(tenant *model.Tenant, table string) string {
	return pgx.Identifier{tenant.SchemaName, table}.Sanitize()
}
