package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentalcore/backupd/internal/api/middleware"
	"github.com/dentalcore/backupd/internal/api/request"
	"github.com/dentalcore/backupd/internal/api/response"
	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/model"
)

type Backup struct {
	svc     *core.BackupService
	tenants *core.TenantService
}

func NewBackup(svc *core.BackupService, tenants *core.TenantService) *Backup {
	return &Backup{svc: svc, tenants: tenants}
}

// resolveTenant loads the tenant named in the route. Every backup operation
// is scoped to an explicit tenant handle.
func (h *Backup) resolveTenant(w http.ResponseWriter, r *http.Request) *model.Tenant {
	tenantID, err := request.RequireID(chi.URLParam(r, "tenantID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	tenant, err := h.tenants.GetByID(r.Context(), tenantID)
	if err != nil {
		response.WriteError(w, errStatus(err), err.Error())
		return nil
	}
	return tenant
}

func (h *Backup) ListByTenant(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}

	pg := request.ParsePagination(r)

	backups, hasMore, err := h.svc.ListByTenant(r.Context(), tenant, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(backups) > 0 {
		nextCursor = backups[len(backups)-1].Name
	}
	response.WritePaginated(w, http.StatusOK, backups, nextCursor, hasMore)
}

// Create runs a backup synchronously and either returns the ledger record or,
// with ?download=true, streams the archive bytes straight back.
func (h *Backup) Create(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}

	var createdBy *string
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		createdBy = &identity.ID
	}

	backup, data, err := h.svc.Run(r.Context(), tenant, model.TriggerManual, createdBy)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if request.BoolQuery(r, "download") {
		response.WriteArchive(w, backup.Name, archiveContentType(backup.Format), data)
		return
	}

	response.WriteJSON(w, http.StatusCreated, backup)
}

func (h *Backup) Get(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backup, err := h.svc.GetByID(r.Context(), tenant, id)
	if err != nil {
		response.WriteError(w, errStatus(err), err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, backup)
}

func (h *Backup) Download(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backup, data, err := h.svc.Download(r.Context(), tenant, id)
	if err != nil {
		response.WriteError(w, errStatus(err), err.Error())
		return
	}

	response.WriteArchive(w, backup.Name, archiveContentType(backup.Format), data)
}

func (h *Backup) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), tenant, id); err != nil {
		response.WriteError(w, errStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore replaces the tenant's live data with an archive's contents. Without
// confirmed=true in the body it only previews the restore.
func (h *Backup) Restore(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.RestoreBackup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	backup, restored, err := h.svc.Restore(r.Context(), tenant, id, req.Confirmed)
	if err != nil {
		response.WriteError(w, errStatus(err), err.Error())
		return
	}

	if !restored {
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"restored": false,
			"backup":   backup,
			"warning":  "restore replaces all current data for this clinic; resend with confirmed=true",
		})
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"restored": true,
		"backup":   backup,
	})
}

func archiveContentType(format string) string {
	if format == model.BackupFormatJSON {
		return "application/json"
	}
	return "application/sql"
}
