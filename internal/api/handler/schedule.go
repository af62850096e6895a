package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentalcore/backupd/internal/api/request"
	"github.com/dentalcore/backupd/internal/api/response"
	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/model"
)

type Schedule struct {
	svc     *core.ScheduleService
	tenants *core.TenantService
}

func NewSchedule(svc *core.ScheduleService, tenants *core.TenantService) *Schedule {
	return &Schedule{svc: svc, tenants: tenants}
}

func (h *Schedule) resolveTenant(w http.ResponseWriter, r *http.Request) *model.Tenant {
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

func (h *Schedule) Get(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}

	sch, err := h.svc.Get(r.Context(), tenant)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, sch)
}

func (h *Schedule) Update(w http.ResponseWriter, r *http.Request) {
	tenant := h.resolveTenant(w, r)
	if tenant == nil {
		return
	}

	var req request.UpdateSchedule
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, err := req.ToModel()
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Update(r.Context(), tenant, sch); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, sch)
}
