package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dentalcore/backupd/internal/model"
	"github.com/dentalcore/backupd/internal/schedule"
)

// ScheduleService reads and writes a tenant's backup schedule configuration.
type ScheduleService struct {
	db DB
}

func NewScheduleService(db DB) *ScheduleService {
	return &ScheduleService{db: db}
}

// Get returns the tenant's schedule. A tenant that never configured one gets
// the hard-coded default; absence is not an error.
func (s *ScheduleService) Get(ctx context.Context, tenant *model.Tenant) (*model.Schedule, error) {
	var sch model.Schedule
	err := s.db.QueryRow(ctx,
		`SELECT kind, hour, minute, weekday, day_of_month, next_at, last_run_at
		 FROM `+tenantTable(tenant, "backup_schedule")+` WHERE id = 1`,
	).Scan(&sch.Kind, &sch.Hour, &sch.Minute, &sch.Weekday, &sch.DayOfMonth,
		&sch.NextAt, &sch.LastRunAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup schedule for tenant %s: %w", tenant.ID, err)
	}
	return &sch, nil
}

// Update upserts the tenant's schedule row.
func (s *ScheduleService) Update(ctx context.Context, tenant *model.Tenant, sch *model.Schedule) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO `+tenantTable(tenant, "backup_schedule")+`
		   (id, kind, hour, minute, weekday, day_of_month, next_at, last_run_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   kind = EXCLUDED.kind, hour = EXCLUDED.hour, minute = EXCLUDED.minute,
		   weekday = EXCLUDED.weekday, day_of_month = EXCLUDED.day_of_month,
		   next_at = EXCLUDED.next_at, last_run_at = EXCLUDED.last_run_at`,
		sch.Kind, sch.Hour, sch.Minute, sch.Weekday, sch.DayOfMonth,
		sch.NextAt, sch.LastRunAt,
	)
	if err != nil {
		return fmt.Errorf("update backup schedule for tenant %s: %w", tenant.ID, err)
	}
	return nil
}

// RecordRun advances the schedule past a successful run and persists it.
// For a once-kind schedule this clears the target and disables the schedule,
// so it cannot fire a second time.
func (s *ScheduleService) RecordRun(ctx context.Context, tenant *model.Tenant, sch *model.Schedule, ranAt time.Time) error {
	schedule.Advance(sch, ranAt)
	return s.Update(ctx, tenant, sch)
}
