package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithIdentity(role string) *http.Request {
	req := httptest.NewRequest("DELETE", "/api/v1/tenants/t1/backups/b1", nil)
	if role == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), identityKey, &Identity{ID: "key-1", Role: role})
	return req.WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(okHandler())

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin allowed", "admin", http.StatusOK},
		{"staff forbidden", "staff", http.StatusForbidden},
		{"no identity forbidden", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithIdentity(tt.role))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(&Identity{Role: "admin"}))
	assert.False(t, IsAdmin(&Identity{Role: "staff"}))
	assert.False(t, IsAdmin(nil))
}
