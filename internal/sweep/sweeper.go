// Package sweep implements the periodic backup trigger: one sequential pass
// over all active tenants, running a backup for each tenant whose schedule
// is due. Tenants fail independently; one broken tenant never aborts the
// rest of the sweep.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalcore/backupd/internal/metrics"
	"github.com/dentalcore/backupd/internal/model"
	"github.com/dentalcore/backupd/internal/schedule"
)

type TenantLister interface {
	ListActive(ctx context.Context) ([]model.Tenant, error)
}

type ScheduleStore interface {
	Get(ctx context.Context, tenant *model.Tenant) (*model.Schedule, error)
	RecordRun(ctx context.Context, tenant *model.Tenant, sch *model.Schedule, ranAt time.Time) error
}

type BackupRunner interface {
	Run(ctx context.Context, tenant *model.Tenant, trigger string, createdBy *string) (*model.Backup, []byte, error)
}

type Sweeper struct {
	logger    zerolog.Logger
	tenants   TenantLister
	schedules ScheduleStore
	backups   BackupRunner
}

func New(logger zerolog.Logger, tenants TenantLister, schedules ScheduleStore, backups BackupRunner) *Sweeper {
	return &Sweeper{
		logger:    logger.With().Str("component", "sweeper").Logger(),
		tenants:   tenants,
		schedules: schedules,
		backups:   backups,
	}
}

// Result summarizes one sweep.
type Result struct {
	Tenants int
	Ran     int
	Failed  int
}

// Sweep visits every active tenant once. Only listing tenants can fail the
// sweep as a whole; per-tenant errors are logged and counted.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list tenants for sweep: %w", err)
	}

	result := Result{Tenants: len(tenants)}
	for i := range tenants {
		tenant := &tenants[i]
		ran, err := s.sweepTenant(ctx, tenant, now)
		if err != nil {
			result.Failed++
			metrics.SweepTenantFailures.Inc()
			s.logger.Error().Err(err).Str("tenant", tenant.ID).Msg("scheduled backup failed")
			continue
		}
		if ran {
			result.Ran++
		}
	}

	s.logger.Info().
		Int("tenants", result.Tenants).
		Int("ran", result.Ran).
		Int("failed", result.Failed).
		Msg("sweep complete")
	return result, nil
}

func (s *Sweeper) sweepTenant(ctx context.Context, tenant *model.Tenant, now time.Time) (bool, error) {
	sch, err := s.schedules.Get(ctx, tenant)
	if err != nil {
		return false, fmt.Errorf("load schedule: %w", err)
	}

	if !schedule.IsDue(sch, now) {
		return false, nil
	}

	s.logger.Info().Str("tenant", tenant.ID).Str("kind", sch.Kind).Msg("schedule due, running backup")

	if _, _, err := s.backups.Run(ctx, tenant, model.TriggerAutomatic, nil); err != nil {
		return false, err
	}

	// Persist the run before the next sweep can see this tenant again;
	// once-kind schedules disable themselves here.
	if err := s.schedules.RecordRun(ctx, tenant, sch, now); err != nil {
		return false, fmt.Errorf("record schedule run: %w", err)
	}
	return true, nil
}
