package events

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/admissions"
)

// ScheduledTimeSlot is a cohort timeslot placed inside a time window.
type ScheduledTimeSlot struct {
	ID             int64     `json:"id"`
	CohortID       int64     `json:"cohort"`
	StartingAt     time.Time `json:"starting_at"`
	EndingAt       time.Time `json:"ending_at"`
	Recurrent      bool      `json:"recurrent"`
	RecurrencyType string    `json:"recurrency_type"`
	Timezone       string    `json:"timezone"`
	Description    string    `json:"description"`
}

// DatetimeInRange returns -1 when cur is before start, 1 when it is after end and 0 otherwise.
func DatetimeInRange(start, end, cur time.Time) int {
	if cur.Before(start) {
		return -1
	}
	if cur.After(end) {
		return 1
	}
	return 0
}

// Direction is a weekday search direction, for FixDatetimeWeekday.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// FixDatetimeWeekday returns the date of current, at the clock time of slot, moved day by day in the
// given direction until it falls on the weekday of slot. It panics when direction is neither Prev nor Next.
func FixDatetimeWeekday(current, slot time.Time, direction Direction) time.Time {
	if direction != Prev && direction != Next {
		panic("you should provide a prev or next direction")
	}
	postulate := time.Date(current.Year(), current.Month(), current.Day(),
		slot.Hour(), slot.Minute(), slot.Second(), 0, slot.Location())
	for days := 0; days < 7; days++ {
		res := postulate.AddDate(0, 0, days*int(direction))
		if res.Weekday() == slot.Weekday() {
			return res
		}
	}
	return postulate
}

// UpdateTimeslotsOutOfRange places the slots in the [start, end] window.
// Non recurrent slots overflowing the window are dropped. Recurrent ones starting too early are moved to
// the first matching weekday from start on, those ending too late to the last matching weekday up to end.
// Durations are kept and the result is sorted by starting then ending time.
func UpdateTimeslotsOutOfRange(start, end time.Time, slots []admissions.CohortTimeSlot) ([]ScheduledTimeSlot, error) {
	res := make([]ScheduledTimeSlot, 0, len(slots))
	for _, slot := range slots {
		startingAt, endingAt, err := slot.Bounds()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding timeslot %d", slot.ID)
		}
		delta := endingAt.Sub(startingAt)

		n1 := DatetimeInRange(start, end, startingAt)
		n2 := DatetimeInRange(start, end, endingAt)
		lessThanStart := n1 == -1 || n2 == -1
		greaterThanEnd := n1 == 1 || n2 == 1

		if !slot.Recurrent && (lessThanStart || greaterThanEnd) {
			continue
		}

		if lessThanStart {
			startingAt = FixDatetimeWeekday(start, startingAt, Next)
			endingAt = startingAt.Add(delta)
		} else if greaterThanEnd {
			endingAt = FixDatetimeWeekday(end, endingAt, Prev)
			startingAt = endingAt.Add(-delta)
		}

		res = append(res, ScheduledTimeSlot{
			ID:             slot.ID,
			CohortID:       slot.CohortID,
			StartingAt:     startingAt,
			EndingAt:       endingAt,
			Recurrent:      slot.Recurrent,
			RecurrencyType: slot.RecurrencyType,
			Timezone:       slot.Timezone,
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].StartingAt.Equal(res[j].StartingAt) {
			return res[i].StartingAt.Before(res[j].StartingAt)
		}
		return res[i].EndingAt.Before(res[j].EndingAt)
	})
	return res, nil
}

var recurrencyNames = map[string]string{
	admissions.Daily:   "day",
	admissions.Weekly:  "week",
	admissions.Monthly: "month",
}

// TimeSlotDescription describes a slot in words, as seen from the tz timezone
// (eg: "Every week, monday from 09:00 am to 11:00 am").
func TimeSlotDescription(slot ScheduledTimeSlot, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", errors.Wrapf(err, "loading location %q", tz)
	}
	startingAt := slot.StartingAt.In(loc)
	endingAt := slot.EndingAt.In(loc)

	var sb strings.Builder
	if slot.Recurrent {
		sb.WriteString("every " + recurrencyNames[slot.RecurrencyType] + ", ")
	}

	startingDay := strings.ToUpper(startingAt.Weekday().String())
	endingDay := strings.ToUpper(endingAt.Weekday().String())
	if startingDay == endingDay {
		sb.WriteString(startingDay + " ")
	} else {
		sb.WriteString(startingDay + " and " + endingDay + " ")
	}
	sb.WriteString("from " + startingAt.Format("03:04 PM") + " to " + endingAt.Format("03:04 PM"))

	return capitalize(sb.String()), nil
}

// capitalize upper cases the first letter of s and lower cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
