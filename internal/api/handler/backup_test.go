package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/model"
)

func newBackupHandler() *Backup {
	// Missing-param paths fail before either service is touched.
	return NewBackup(nil, nil)
}

func TestBackupListByTenant_MissingTenantID(t *testing.T) {
	h := newBackupHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/tenants//backups", nil), "tenantID", "")

	h.ListByTenant(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestBackupCreate_MissingTenantID(t *testing.T) {
	h := newBackupHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants//backups", nil), "tenantID", "")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupRestore_MissingTenantID(t *testing.T) {
	h := newBackupHandler()
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants//backups/b1/restore", nil), "tenantID", "")

	h.Restore(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// newBackupHandlerWithDB wires real services over a mocked database so error
// translation from the ledger lookups can be exercised end to end.
func newBackupHandlerWithDB(db core.DB) *Backup {
	svc := core.NewBackupService(db, nil, nil, nil, zerolog.Nop())
	return NewBackup(svc, core.NewTenantService(db))
}

// scanHandlerTenant fills the tenants scan targets with an active clinic.
// Scan order: ID, Name, SchemaName, Active, CreatedAt, UpdatedAt.
func scanHandlerTenant(dest ...any) error {
	now := time.Now()
	*(dest[0].(*string)) = "clinic_1"
	*(dest[1].(*string)) = "North Smile"
	*(dest[2].(*string)) = "clinic_north"
	*(dest[3].(*bool)) = true
	*(dest[4].(*time.Time)) = now
	*(dest[5].(*time.Time)) = now
	return nil
}

func sqlContains(substr string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, substr) })
}

func TestBackupDelete_UnknownBackup_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	h := newBackupHandlerWithDB(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM tenants"), mock.Anything).
		Return(&handlerMockRow{scanFunc: scanHandlerTenant})
	db.On("QueryRow", mock.Anything, sqlContains("backup_records"), mock.Anything).
		Return(&handlerMockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodDelete, "/tenants/clinic_1/backups/missing", nil),
		map[string]string{"tenantID": "clinic_1", "id": "missing"})

	h.Delete(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "not found")
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackupRestore_UnknownBackup_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	h := newBackupHandlerWithDB(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM tenants"), mock.Anything).
		Return(&handlerMockRow{scanFunc: scanHandlerTenant})
	db.On("QueryRow", mock.Anything, sqlContains("backup_records"), mock.Anything).
		Return(&handlerMockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	rec := httptest.NewRecorder()
	r := withChiURLParams(
		newRequest(http.MethodPost, "/tenants/clinic_1/backups/missing/restore",
			map[string]any{"confirmed": true}),
		map[string]string{"tenantID": "clinic_1", "id": "missing"})

	h.Restore(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupDownload_UnknownBackup_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	h := newBackupHandlerWithDB(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM tenants"), mock.Anything).
		Return(&handlerMockRow{scanFunc: scanHandlerTenant})
	db.On("QueryRow", mock.Anything, sqlContains("backup_records"), mock.Anything).
		Return(&handlerMockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/tenants/clinic_1/backups/missing/download", nil),
		map[string]string{"tenantID": "clinic_1", "id": "missing"})

	h.Download(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// A failing database is a server fault, not a missing resource.
func TestBackupGet_QueryFailure_InternalError(t *testing.T) {
	db := &handlerMockDB{}
	h := newBackupHandlerWithDB(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM tenants"), mock.Anything).
		Return(&handlerMockRow{scanFunc: scanHandlerTenant})
	db.On("QueryRow", mock.Anything, sqlContains("backup_records"), mock.Anything).
		Return(&handlerMockRow{scanFunc: func(dest ...any) error {
			return errors.New("connection reset")
		}})

	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/tenants/clinic_1/backups/b1", nil),
		map[string]string{"tenantID": "clinic_1", "id": "b1"})

	h.Get(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestArchiveContentType(t *testing.T) {
	assert.Equal(t, "application/sql", archiveContentType(model.BackupFormatSQL))
	assert.Equal(t, "application/json", archiveContentType(model.BackupFormatJSON))
}
