package storage

import (
	"fmt"
	"path"
	"time"

	"github.com/dentalcore/backupd/internal/model"
)

// keyTimeFormat is UTC and lexicographically sortable, so listing a tenant's
// prefix yields archives in chronological order.
const keyTimeFormat = "20060102T150405"

// ObjectKey builds the tenant-scoped object key for an archive:
// {tenantID}/backup-{format}-{tenantID}-{timestamp}.{ext}
func ObjectKey(tenantID, format string, t time.Time) string {
	return fmt.Sprintf("%s/backup-%s-%s-%s.%s",
		tenantID, format, tenantID, t.UTC().Format(keyTimeFormat), FormatExt(format))
}

// ArchiveName is the ledger-facing name of an archive: the final element of
// its object key.
func ArchiveName(key string) string {
	return path.Base(key)
}

// FormatExt maps a backup format to its file extension.
func FormatExt(format string) string {
	switch format {
	case model.BackupFormatSQL:
		return "sql"
	case model.BackupFormatJSON:
		return "json"
	default:
		return "bin"
	}
}
