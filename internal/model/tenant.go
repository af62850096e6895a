package model

import "time"

// Tenant is a clinic whose data lives in its own database schema. Every
// backup operation takes a tenant handle explicitly; nothing in the codebase
// relies on an ambient "current schema".
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SchemaName string    `json:"schema_name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
