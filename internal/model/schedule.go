package model

import "time"

// Schedule is a tenant's backup schedule configuration. One row per tenant,
// stored in the tenant's own schema. A missing row means the hard-coded
// default applies; absence is not an error.
type Schedule struct {
	Kind       string     `json:"kind"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	Weekday    int        `json:"weekday"`
	DayOfMonth int        `json:"day_of_month"`
	NextAt     *time.Time `json:"next_at,omitempty"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
}

const (
	ScheduleDisabled = "disabled"
	ScheduleDaily    = "daily"
	ScheduleEvery6h  = "every_6h"
	ScheduleEvery12h = "every_12h"
	ScheduleWeekly   = "weekly"
	ScheduleMonthly  = "monthly"
	// ScheduleOnce fires at NextAt, then the schedule flips back to disabled.
	ScheduleOnce = "once"
)
