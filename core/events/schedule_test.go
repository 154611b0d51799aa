package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/admissions"
)

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func cohortSlot(id int64, start, end admissions.DatetimeInteger, recurrent bool) admissions.CohortTimeSlot {
	return admissions.CohortTimeSlot{
		TimeSlot: admissions.TimeSlot{
			ID:             id,
			StartingAt:     start,
			EndingAt:       end,
			Recurrent:      recurrent,
			RecurrencyType: admissions.Weekly,
			Timezone:       "UTC",
		},
		CohortID: 1,
	}
}

func TestDatetimeInRange(t *testing.T) {
	start := utc(2021, 8, 1, 0, 0)
	end := utc(2021, 8, 31, 0, 0)

	tests := []struct {
		name string
		cur  time.Time
		want int
	}{
		{name: "before", cur: start.Add(-time.Minute), want: -1},
		{name: "start", cur: start, want: 0},
		{name: "inside", cur: utc(2021, 8, 15, 12, 0), want: 0},
		{name: "end", cur: end, want: 0},
		{name: "after", cur: end.Add(time.Minute), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DatetimeInRange(start, end, tt.cur))
		})
	}
}

func TestFixDatetimeWeekday(t *testing.T) {
	wednesday := utc(2021, 8, 25, 0, 0)
	monday := utc(2021, 8, 2, 9, 0)

	assert.Equal(t, utc(2021, 8, 30, 9, 0), FixDatetimeWeekday(wednesday, monday, Next))
	assert.Equal(t, utc(2021, 8, 23, 9, 0), FixDatetimeWeekday(wednesday, monday, Prev))

	sameDay := utc(2021, 8, 23, 18, 0)
	assert.Equal(t, utc(2021, 8, 23, 9, 0), FixDatetimeWeekday(sameDay, monday, Next))

	for _, direction := range []Direction{0, 2, -7} {
		assert.PanicsWithValue(t, "you should provide a prev or next direction", func() {
			FixDatetimeWeekday(wednesday, monday, direction)
		})
	}
}

func TestUpdateTimeslotsOutOfRange(t *testing.T) {
	start := utc(2021, 8, 25, 0, 0)
	end := utc(2021, 9, 10, 0, 0)

	slots := []admissions.CohortTimeSlot{
		cohortSlot(1, 202109200900, 202109201100, true),  // after the window
		cohortSlot(2, 202108020900, 202108021100, false), // before the window, dropped
		cohortSlot(3, 202109011400, 202109011600, false), // inside the window
		cohortSlot(4, 202108020900, 202108021100, true),  // before the window
	}
	got, err := UpdateTimeslotsOutOfRange(start, end, slots)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(4), got[0].ID)
	assert.True(t, got[0].StartingAt.Equal(utc(2021, 8, 30, 9, 0)), got[0].StartingAt)
	assert.True(t, got[0].EndingAt.Equal(utc(2021, 8, 30, 11, 0)), got[0].EndingAt)

	assert.Equal(t, int64(3), got[1].ID)
	assert.True(t, got[1].StartingAt.Equal(utc(2021, 9, 1, 14, 0)))

	assert.Equal(t, int64(1), got[2].ID)
	assert.True(t, got[2].StartingAt.Equal(utc(2021, 9, 6, 9, 0)), got[2].StartingAt)
	assert.True(t, got[2].EndingAt.Equal(utc(2021, 9, 6, 11, 0)), got[2].EndingAt)
	assert.Equal(t, int64(1), got[2].CohortID)

	_, err = UpdateTimeslotsOutOfRange(start, end, []admissions.CohortTimeSlot{cohortSlot(5, 1, 2, true)})
	assert.Error(t, err)
}

func TestTimeSlotDescription(t *testing.T) {
	tests := []struct {
		name string
		slot ScheduledTimeSlot
		want string
	}{
		{
			name: "recurrent",
			slot: ScheduledTimeSlot{
				StartingAt:     utc(2021, 8, 23, 14, 0),
				EndingAt:       utc(2021, 8, 23, 16, 0),
				Recurrent:      true,
				RecurrencyType: admissions.Weekly,
			},
			want: "Every week, monday from 09:00 am to 11:00 am",
		},
		{
			name: "daily",
			slot: ScheduledTimeSlot{
				StartingAt:     utc(2021, 8, 23, 14, 0),
				EndingAt:       utc(2021, 8, 23, 16, 0),
				Recurrent:      true,
				RecurrencyType: admissions.Daily,
			},
			want: "Every day, monday from 09:00 am to 11:00 am",
		},
		{
			name: "over two days",
			slot: ScheduledTimeSlot{
				StartingAt: utc(2021, 8, 24, 3, 0),
				EndingAt:   utc(2021, 8, 24, 6, 0),
			},
			want: "Monday and tuesday from 10:00 pm to 01:00 am",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeSlotDescription(tt.slot, "America/Bogota")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := TimeSlotDescription(ScheduledTimeSlot{}, "Mars/Olympus")
	assert.Error(t, err)
}
