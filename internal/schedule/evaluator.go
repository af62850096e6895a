// Package schedule decides whether a tenant's backup is due at a given
// instant. Day-granularity kinds (daily, weekly, monthly) gate on the target
// hour and then on a calendar period key, so at most one run is recorded per
// period. Interval kinds (every_6h, every_12h) align to an hour grid until
// the first run and free-run on elapsed time afterwards.
package schedule

import (
	"fmt"
	"time"

	"github.com/dentalcore/backupd/internal/model"
)

// IsDue reports whether a backup should run now for the given configuration.
func IsDue(s *model.Schedule, now time.Time) bool {
	switch s.Kind {
	case model.ScheduleDisabled:
		return false

	case model.ScheduleOnce:
		return s.NextAt != nil && !s.NextAt.After(now)

	case model.ScheduleDaily:
		return now.Hour() >= s.Hour && !ranInPeriod(s, now)

	case model.ScheduleWeekly:
		return int(now.Weekday()) == s.Weekday &&
			now.Hour() >= s.Hour &&
			!ranInPeriod(s, now)

	case model.ScheduleMonthly:
		return now.Day() == s.DayOfMonth &&
			now.Hour() >= s.Hour &&
			!ranInPeriod(s, now)

	case model.ScheduleEvery6h:
		return intervalDue(s, now, 6)

	case model.ScheduleEvery12h:
		return intervalDue(s, now, 12)
	}

	return false
}

// Advance records a successful run against the schedule. A once-kind
// schedule is one-shot: its target timestamp is cleared and the schedule
// flips to disabled so it can never fire twice.
func Advance(s *model.Schedule, ranAt time.Time) {
	t := ranAt
	s.LastRunAt = &t

	if s.Kind == model.ScheduleOnce {
		s.NextAt = nil
		s.Kind = model.ScheduleDisabled
	}
}

// PeriodKey returns the calendar period a timestamp belongs to for the given
// schedule kind. Two runs with equal period keys would violate the
// one-run-per-period invariant.
func PeriodKey(kind string, t time.Time) string {
	switch kind {
	case model.ScheduleMonthly:
		return fmt.Sprintf("%04d-%02d", t.Year(), t.Month())
	default:
		// Daily granularity covers daily and weekly kinds: a weekly
		// schedule only triggers on its target weekday, so "already ran
		// today" is exactly "already ran this week's slot".
		y, m, d := t.Date()
		return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	}
}

func ranInPeriod(s *model.Schedule, now time.Time) bool {
	return s.LastRunAt != nil && PeriodKey(s.Kind, *s.LastRunAt) == PeriodKey(s.Kind, now)
}

// intervalDue implements the two-condition interval rule: with no run
// history the schedule fires when the current hour lands on the grid
// anchored at the configured hour; once a run exists it fires whenever the
// configured number of hours has elapsed since the last run. A tenant whose
// first recorded run fell off the grid never re-syncs to it.
func intervalDue(s *model.Schedule, now time.Time, hours int) bool {
	if s.LastRunAt == nil {
		return mod(now.Hour()-s.Hour, hours) == 0
	}
	return now.Sub(*s.LastRunAt) >= time.Duration(hours)*time.Hour
}

// mod is a non-negative modulo.
func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Default returns the schedule used when a tenant has no stored
// configuration.
func Default() *model.Schedule {
	return &model.Schedule{
		Kind: model.ScheduleDisabled,
		Hour: 3,
	}
}
