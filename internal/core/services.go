package core

import (
	"github.com/rs/zerolog"
)

type Services struct {
	Tenant   *TenantService
	Backup   *BackupService
	Schedule *ScheduleService
	APIKey   *APIKeyService
}

func NewServices(db DB, producer Producer, store ObjectStore, opener ArchiveOpener, logger zerolog.Logger) *Services {
	return &Services{
		Tenant:   NewTenantService(db),
		Backup:   NewBackupService(db, producer, store, opener, logger),
		Schedule: NewScheduleService(db),
		APIKey:   NewAPIKeyService(db),
	}
}
