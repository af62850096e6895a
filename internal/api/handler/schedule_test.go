package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleGet_MissingTenantID(t *testing.T) {
	h := NewSchedule(nil, nil)
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/tenants//schedule", nil), "tenantID", "")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleUpdate_MissingTenantID(t *testing.T) {
	h := NewSchedule(nil, nil)
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/tenants//schedule", nil), "tenantID", "")

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
