package admissions

import (
	"fmt"
	"time"
	_ "time/tzdata" // timeslots carry IANA zone names

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Recurrency types
const (
	Daily   = "DAILY"
	Weekly  = "WEEKLY"
	Monthly = "MONTHLY"
)

// DatetimeInteger is a wall clock date time encoded as YYYYMMDDHHMM, relative to a timezone.
type DatetimeInteger int64

var errInvalidDatetimeInteger = errors.New("invalid datetime integer")

// NewDatetimeInteger encodes t as seen from the tz timezone.
func NewDatetimeInteger(tz string, t time.Time) (DatetimeInteger, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, errors.Wrapf(err, "loading location %q", tz)
	}
	t = t.In(loc)
	v := int64(t.Year())*1e8 + int64(t.Month())*1e6 + int64(t.Day())*1e4 + int64(t.Hour())*100 + int64(t.Minute())
	return DatetimeInteger(v), nil
}

// Time decodes the integer as a wall clock time in the tz timezone.
func (d DatetimeInteger) Time(tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "loading location %q", tz)
	}
	v := int64(d)
	minute := v % 100
	v /= 100
	hour := v % 100
	v /= 100
	day := v % 100
	v /= 100
	month := v % 100
	year := v / 100

	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, errors.Wrap(errInvalidDatetimeInteger, fmt.Sprint(int64(d)))
	}
	return time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), 0, 0, loc), nil
}

// ISOString returns the RFC 3339 representation of the integer in the tz timezone.
func (d DatetimeInteger) ISOString(tz string) (string, error) {
	t, err := d.Time(tz)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}

type TimeSlot struct {
	ID             int64           `json:"id" db:"id"`
	StartingAt     DatetimeInteger `json:"starting_at" db:"starting_at"`
	EndingAt       DatetimeInteger `json:"ending_at" db:"ending_at"`
	Recurrent      bool            `json:"recurrent" db:"recurrent"`
	RecurrencyType string          `json:"recurrency_type" db:"recurrency_type"`
	Timezone       string          `json:"timezone" db:"timezone"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Bounds decodes the starting and ending times of the slot.
func (ts TimeSlot) Bounds() (start, end time.Time, err error) {
	if start, err = ts.StartingAt.Time(ts.Timezone); err != nil {
		return
	}
	end, err = ts.EndingAt.Time(ts.Timezone)
	return
}

type ScheduleTimeSlot struct {
	TimeSlot
	ScheduleID int64 `json:"schedule" db:"schedule_id"`
}

type CohortTimeSlot struct {
	TimeSlot
	CohortID int64 `json:"cohort" db:"cohort_id"`
}

type CohortTimeSlotFilter struct {
	AcademyID int64
	Cohorts   []int64
	// ExcludeStages drops the slots of cohorts in these stages.
	ExcludeStages []string
}

// NewTimeSlot is the payload used to create schedule and cohort timeslots.
// Timezone defaults to the academy timezone.
type NewTimeSlot struct {
	StartingAt     time.Time `json:"starting_at" validate:"required"`
	EndingAt       time.Time `json:"ending_at" validate:"required"`
	Recurrent      *bool     `json:"recurrent"`
	RecurrencyType string    `json:"recurrency_type" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
	Timezone       string    `json:"timezone" validate:"omitempty,timezone"`
}

func (nts *NewTimeSlot) Validate(validate *validator.Validate) error {
	if err := validate.Struct(nts); err != nil {
		return err
	}
	if !nts.EndingAt.After(nts.StartingAt) {
		return ErrTimeSlotEndsBeforeStart
	}
	return nil
}

// build encodes the payload as a TimeSlot, using defaultTZ when no timezone was given.
func (nts NewTimeSlot) build(defaultTZ string, now time.Time) (TimeSlot, error) {
	tz := nts.Timezone
	if tz == "" {
		tz = defaultTZ
	}
	if tz == "" {
		tz = "UTC"
	}
	start, err := NewDatetimeInteger(tz, nts.StartingAt)
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := NewDatetimeInteger(tz, nts.EndingAt)
	if err != nil {
		return TimeSlot{}, err
	}

	ts := TimeSlot{
		StartingAt:     start,
		EndingAt:       end,
		Recurrent:      true,
		RecurrencyType: Weekly,
		Timezone:       tz,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if nts.Recurrent != nil {
		ts.Recurrent = *nts.Recurrent
	}
	if nts.RecurrencyType != "" {
		ts.RecurrencyType = nts.RecurrencyType
	}
	return ts, nil
}
