package request

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantCursor string
	}{
		{"defaults", "/backups", DefaultLimit, ""},
		{"explicit", "/backups?limit=10&cursor=abc", 10, "abc"},
		{"clamped to max", "/backups?limit=9999", MaxLimit, ""},
		{"garbage limit ignored", "/backups?limit=ten", DefaultLimit, ""},
		{"zero limit ignored", "/backups?limit=0", DefaultLimit, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePagination(httptest.NewRequest("GET", tt.url, nil))
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantCursor, p.Cursor)
		})
	}
}

func TestBoolQuery(t *testing.T) {
	assert.True(t, BoolQuery(httptest.NewRequest("GET", "/?download=true", nil), "download"))
	assert.True(t, BoolQuery(httptest.NewRequest("GET", "/?download=1", nil), "download"))
	assert.False(t, BoolQuery(httptest.NewRequest("GET", "/?download=yes", nil), "download"))
	assert.False(t, BoolQuery(httptest.NewRequest("GET", "/", nil), "download"))
}
