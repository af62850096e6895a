package model

import "time"

// APIKey identifies an operator of the backup API. The raw key is never
// stored; only its SHA-256 hash is.
type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
