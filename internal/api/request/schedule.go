package request

import (
	"fmt"
	"time"

	"github.com/dentalcore/backupd/internal/model"
)

type UpdateSchedule struct {
	Kind       string     `json:"kind" validate:"required,oneof=disabled daily every_6h every_12h weekly monthly once"`
	Hour       int        `json:"hour" validate:"gte=0,lte=23"`
	Minute     int        `json:"minute" validate:"gte=0,lte=59"`
	Weekday    int        `json:"weekday" validate:"gte=0,lte=6"`
	DayOfMonth int        `json:"day_of_month" validate:"gte=0,lte=31"`
	NextAt     *time.Time `json:"next_at"`
}

// ToModel converts the request into a schedule, applying the cross-field
// rules the struct tags cannot express.
func (r *UpdateSchedule) ToModel() (*model.Schedule, error) {
	if r.Kind == model.ScheduleOnce && r.NextAt == nil {
		return nil, fmt.Errorf("kind %q requires next_at", model.ScheduleOnce)
	}
	if r.Kind == model.ScheduleMonthly && r.DayOfMonth == 0 {
		return nil, fmt.Errorf("kind %q requires day_of_month", model.ScheduleMonthly)
	}
	return &model.Schedule{
		Kind:       r.Kind,
		Hour:       r.Hour,
		Minute:     r.Minute,
		Weekday:    r.Weekday,
		DayOfMonth: r.DayOfMonth,
		NextAt:     r.NextAt,
	}, nil
}
