package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dentalcore/backupd/internal/dump"
	"github.com/dentalcore/backupd/internal/model"
)

// TenantService manages clinic tenants and provisions their schemas.
type TenantService struct {
	db DB
}

func NewTenantService(db DB) *TenantService {
	return &TenantService{db: db}
}

// Create inserts the tenant row and provisions its schema with the domain
// and ledger tables.
func (s *TenantService) Create(ctx context.Context, tenant *model.Tenant) error {
	if err := dump.ValidateSchemaName(tenant.SchemaName); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO tenants (id, name, schema_name, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tenant.ID, tenant.Name, tenant.SchemaName, tenant.Active,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}

	if err := s.Provision(ctx, tenant); err != nil {
		return fmt.Errorf("provision tenant schema: %w", err)
	}
	return nil
}

func (s *TenantService) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.db.QueryRow(ctx,
		`SELECT id, name, schema_name, active, created_at, updated_at
		 FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.SchemaName, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return &t, nil
}

func (s *TenantService) List(ctx context.Context, limit int, cursor string) ([]model.Tenant, bool, error) {
	query := `SELECT id, name, schema_name, active, created_at, updated_at FROM tenants`
	args := []any{}
	if cursor != "" {
		query += ` WHERE id > $1`
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.SchemaName, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate tenants: %w", err)
	}

	hasMore := len(tenants) > limit
	if hasMore {
		tenants = tenants[:limit]
	}
	return tenants, hasMore, nil
}

// ListActive returns every tenant the sweeper should visit.
func (s *TenantService) ListActive(ctx context.Context) ([]model.Tenant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, schema_name, active, created_at, updated_at
		 FROM tenants WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.SchemaName, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, nil
}

// Deactivate removes the tenant from the sweep without touching its schema
// or archives.
func (s *TenantService) Deactivate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate tenant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return nil
}

// Provision creates the tenant's schema and its tables. Idempotent, so it
// doubles as a repair path for half-provisioned tenants.
func (s *TenantService) Provision(ctx context.Context, tenant *model.Tenant) error {
	if err := dump.ValidateSchemaName(tenant.SchemaName); err != nil {
		return err
	}

	schema := pgx.Identifier{tenant.SchemaName}.Sanitize()
	if _, err := s.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, ddl := range tenantTableDDL {
		stmt := strings.ReplaceAll(ddl, "{schema}", schema)
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create tenant table: %w", err)
		}
	}
	return nil
}

// tenantTableDDL creates the clinic domain tables and the backup ledger
// inside a tenant schema. Parents come before children.
var tenantTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS {schema}.patients (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		birth_date DATE,
		phone      TEXT,
		email      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.clinicians (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		specialty      TEXT,
		license_number TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.appointments (
		id           TEXT PRIMARY KEY,
		patient_id   TEXT NOT NULL REFERENCES {schema}.patients (id),
		clinician_id TEXT NOT NULL REFERENCES {schema}.clinicians (id),
		starts_at    TIMESTAMPTZ NOT NULL,
		ends_at      TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL DEFAULT 'booked',
		notes        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.treatment_plans (
		id           TEXT PRIMARY KEY,
		patient_id   TEXT NOT NULL REFERENCES {schema}.patients (id),
		clinician_id TEXT REFERENCES {schema}.clinicians (id),
		title        TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'draft',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.treatments (
		id           TEXT PRIMARY KEY,
		plan_id      TEXT NOT NULL REFERENCES {schema}.treatment_plans (id),
		tooth_number INT,
		description  TEXT NOT NULL,
		cost_cents   BIGINT NOT NULL DEFAULT 0,
		performed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.clinical_notes (
		id         TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES {schema}.patients (id),
		author     TEXT,
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.inventory_items (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		quantity      INT NOT NULL DEFAULT 0,
		unit          TEXT,
		reorder_level INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.invoices (
		id          TEXT PRIMARY KEY,
		patient_id  TEXT NOT NULL REFERENCES {schema}.patients (id),
		total_cents BIGINT NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'open',
		issued_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.invoice_items (
		id                TEXT PRIMARY KEY,
		invoice_id        TEXT NOT NULL REFERENCES {schema}.invoices (id),
		inventory_item_id TEXT REFERENCES {schema}.inventory_items (id),
		description       TEXT NOT NULL,
		amount_cents      BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.ratings (
		id           TEXT PRIMARY KEY,
		patient_id   TEXT NOT NULL REFERENCES {schema}.patients (id),
		clinician_id TEXT NOT NULL REFERENCES {schema}.clinicians (id),
		score        INT NOT NULL,
		comment      TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.backup_records (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		size_bytes   BIGINT NOT NULL,
		format       TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		created_by   TEXT,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.backup_schedule (
		id           INT PRIMARY KEY CHECK (id = 1),
		kind         TEXT NOT NULL DEFAULT 'disabled',
		hour         INT NOT NULL DEFAULT 3,
		minute       INT NOT NULL DEFAULT 0,
		weekday      INT NOT NULL DEFAULT 0,
		day_of_month INT NOT NULL DEFAULT 1,
		next_at      TIMESTAMPTZ,
		last_run_at  TIMESTAMPTZ
	)`,
}
