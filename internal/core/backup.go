package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/dump"
	"github.com/dentalcore/backupd/internal/metrics"
	"github.com/dentalcore/backupd/internal/model"
	"github.com/dentalcore/backupd/internal/platform"
	"github.com/dentalcore/backupd/internal/storage"
)

// Producer serializes one tenant's schema into an archive.
type Producer interface {
	Produce(ctx context.Context, tenant *model.Tenant) (*dump.Snapshot, error)
}

// ObjectStore holds the archive bytes; the ledger only holds metadata.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ArchiveOpener turns ledger metadata plus downloaded bytes into a
// restorable archive variant.
type ArchiveOpener interface {
	Open(record *model.Backup, data []byte) (dump.Archive, error)
}

// BackupService runs backups end to end and owns the tenant's ledger.
type BackupService struct {
	db       DB
	producer Producer
	store    ObjectStore
	opener   ArchiveOpener
	logger   zerolog.Logger
}

func NewBackupService(db DB, producer Producer, store ObjectStore, opener ArchiveOpener, logger zerolog.Logger) *BackupService {
	return &BackupService{
		db:       db,
		producer: producer,
		store:    store,
		opener:   opener,
		logger:   logger.With().Str("component", "backup-service").Logger(),
	}
}

const backupColumns = "id, name, storage_path, size_bytes, format, trigger_kind, created_by, created_at"

// Run produces, uploads, and records one backup. The ledger insert is the
// commit point: an uploaded-but-unrecorded archive counts as not backed up,
// and an upload failure records nothing. The archive bytes are returned so
// manual triggers can hand them straight back to the caller.
func (s *BackupService) Run(ctx context.Context, tenant *model.Tenant, trigger string, createdBy *string) (*model.Backup, []byte, error) {
	snap, err := s.producer.Produce(ctx, tenant)
	if err != nil {
		metrics.BackupRuns.WithLabelValues(trigger, "failure").Inc()
		return nil, nil, fmt.Errorf("produce snapshot for tenant %s: %w", tenant.ID, err)
	}

	now := time.Now().UTC()
	key := storage.ObjectKey(tenant.ID, snap.Format, now)

	location, err := s.store.Upload(ctx, key, snap.Data)
	if err != nil {
		metrics.BackupRuns.WithLabelValues(trigger, "failure").Inc()
		return nil, nil, fmt.Errorf("upload archive for tenant %s: %w", tenant.ID, err)
	}

	backup := &model.Backup{
		ID:          platform.NewID(),
		TenantID:    tenant.ID,
		Name:        storage.ArchiveName(key),
		StoragePath: location,
		SizeBytes:   int64(len(snap.Data)),
		Format:      snap.Format,
		Trigger:     trigger,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO `+tenantTable(tenant, "backup_records")+` (`+backupColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		backup.ID, backup.Name, backup.StoragePath, backup.SizeBytes,
		backup.Format, backup.Trigger, backup.CreatedBy, backup.CreatedAt,
	)
	if err != nil {
		metrics.BackupRuns.WithLabelValues(trigger, "failure").Inc()
		return nil, nil, fmt.Errorf("record backup for tenant %s: %w", tenant.ID, err)
	}

	metrics.BackupRuns.WithLabelValues(trigger, "success").Inc()
	s.logger.Info().
		Str("tenant", tenant.ID).
		Str("name", backup.Name).
		Str("format", backup.Format).
		Int64("size_bytes", backup.SizeBytes).
		Msg("backup recorded")

	return backup, snap.Data, nil
}

// ListByTenant returns the tenant's ledger, most recent first. Archive names
// embed a sortable timestamp, so they double as the pagination cursor.
func (s *BackupService) ListByTenant(ctx context.Context, tenant *model.Tenant, limit int, cursor string) ([]model.Backup, bool, error) {
	query := `SELECT ` + backupColumns + ` FROM ` + tenantTable(tenant, "backup_records")
	args := []any{}
	if cursor != "" {
		query += ` WHERE name < $1`
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY name DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list backups for tenant %s: %w", tenant.ID, err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		var b model.Backup
		if err := rows.Scan(&b.ID, &b.Name, &b.StoragePath, &b.SizeBytes,
			&b.Format, &b.Trigger, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan backup: %w", err)
		}
		b.TenantID = tenant.ID
		backups = append(backups, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate backups: %w", err)
	}

	hasMore := len(backups) > limit
	if hasMore {
		backups = backups[:limit]
	}
	return backups, hasMore, nil
}

func (s *BackupService) GetByID(ctx context.Context, tenant *model.Tenant, id string) (*model.Backup, error) {
	var b model.Backup
	err := s.db.QueryRow(ctx,
		`SELECT `+backupColumns+` FROM `+tenantTable(tenant, "backup_records")+` WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.StoragePath, &b.SizeBytes,
		&b.Format, &b.Trigger, &b.CreatedBy, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("backup %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", id, err)
	}
	b.TenantID = tenant.ID
	return &b, nil
}

// Download fetches a recorded archive's bytes from the object store.
func (s *BackupService) Download(ctx context.Context, tenant *model.Tenant, id string) (*model.Backup, []byte, error) {
	backup, err := s.GetByID(ctx, tenant, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.store.Download(ctx, backup.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("download backup %s: %w", id, err)
	}
	return backup, data, nil
}

// Delete removes the remote object and then the ledger row. A remote
// deletion failure aborts before the row is touched, so the catalog never
// points at nothing without also still naming the object.
func (s *BackupService) Delete(ctx context.Context, tenant *model.Tenant, id string) error {
	backup, err := s.GetByID(ctx, tenant, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, backup.StoragePath); err != nil {
		return fmt.Errorf("delete remote archive %s: %w", backup.StoragePath, err)
	}

	_, err = s.db.Exec(ctx,
		`DELETE FROM `+tenantTable(tenant, "backup_records")+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete backup record %s: %w", id, err)
	}

	s.logger.Info().Str("tenant", tenant.ID).Str("name", backup.Name).Msg("backup deleted")
	return nil
}

// Restore destructively replaces the tenant's data with the archive's
// contents. Without confirmation it only returns the entry as a preview;
// nothing is mutated.
func (s *BackupService) Restore(ctx context.Context, tenant *model.Tenant, id string, confirmed bool) (*model.Backup, bool, error) {
	backup, err := s.GetByID(ctx, tenant, id)
	if err != nil {
		return nil, false, err
	}

	if !confirmed {
		return backup, false, nil
	}

	data, err := s.store.Download(ctx, backup.StoragePath)
	if err != nil {
		metrics.Restores.WithLabelValues("failure").Inc()
		return nil, false, fmt.Errorf("download archive for restore: %w", err)
	}

	archive, err := s.opener.Open(backup, data)
	if err != nil {
		metrics.Restores.WithLabelValues("failure").Inc()
		return nil, false, fmt.Errorf("open archive %s: %w", backup.Name, err)
	}

	if err := archive.Restore(ctx, tenant); err != nil {
		metrics.Restores.WithLabelValues("failure").Inc()
		return nil, false, fmt.Errorf("restore backup %s: %w", id, err)
	}

	metrics.Restores.WithLabelValues("success").Inc()
	s.logger.Info().Str("tenant", tenant.ID).Str("name", backup.Name).Msg("backup restored")
	return backup, true, nil
}
