// Package api provides the clinic backup REST API: tenant management,
// manual backups and downloads, schedule configuration, and the guarded
// restore endpoint. All routes under /api/v1 require an API key.
package api
