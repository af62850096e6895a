package handler

import (
	"errors"
	"net/http"

	"github.com/dentalcore/backupd/internal/core"
)

// errStatus maps a service error to an HTTP status: wrapped
// core.ErrNotFound is a 404, everything else a 500.
func errStatus(err error) int {
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
