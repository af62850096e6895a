package model

import "time"

// Backup is one row in a tenant's backup ledger. Rows are append-only: they
// are written exactly once after a successful upload and never mutated.
type Backup struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	Format      string    `json:"format"`
	Trigger     string    `json:"trigger"`
	CreatedBy   *string   `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	// BackupFormatSQL is a schema-scoped pg_dump in plain insert format.
	BackupFormatSQL = "sql"
	// BackupFormatJSON is the record-level fallback dump.
	BackupFormatJSON = "json"
)

const (
	TriggerManual    = "manual"
	TriggerAutomatic = "automatic"
)
