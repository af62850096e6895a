package storage

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dentalcore/backupd/internal/model"
)

func TestObjectKey_Convention(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	key := ObjectKey("clinic_a1b2c3d4e5", model.BackupFormatSQL, at)

	assert.Equal(t, "clinic_a1b2c3d4e5/backup-sql-clinic_a1b2c3d4e5-20250102T030405.sql", key)
	assert.True(t, strings.HasPrefix(key, "clinic_a1b2c3d4e5/"), "key must be tenant-scoped")
}

func TestObjectKey_JSONFormat(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	key := ObjectKey("clinic_x", model.BackupFormatJSON, at)
	assert.True(t, strings.HasSuffix(key, ".json"))
}

func TestObjectKey_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2025, 1, 2, 8, 0, 0, 0, loc) // 03:00 UTC
	key := ObjectKey("clinic_x", model.BackupFormatSQL, at)
	assert.Contains(t, key, "20250102T030000")
}

func TestObjectKey_LexicographicOrderMatchesTime(t *testing.T) {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var keys []string
	for _, d := range []time.Duration{0, time.Second, time.Minute, time.Hour, 24 * time.Hour, 31 * 24 * time.Hour} {
		keys = append(keys, ObjectKey("clinic_x", model.BackupFormatSQL, base.Add(d)))
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	assert.Equal(t, keys, sorted, "chronological order must equal lexicographic order")
}

func TestArchiveName(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	key := ObjectKey("clinic_x", model.BackupFormatSQL, at)
	assert.Equal(t, "backup-sql-clinic_x-20250102T030405.sql", ArchiveName(key))
}
