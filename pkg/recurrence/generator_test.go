package recurrence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMaster(start time.Time, spec string) Master {
	return Master{
		ID:       "ev-1",
		Title:    "Swimming",
		Location: "Rothwell Sports Centre",
		Start:    start,
		Spec:     spec,
	}
}

func occurrenceDates(occurrences []Occurrence) []string {
	dates := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		dates = append(dates, o.Start.Format("2006-01-02 15:04"))
	}
	return dates
}

func TestExpandSpec_NonRecurring(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), "")
	assert.Empty(t, ExpandSpec(master, Horizon{}))
}

func TestExpandSpec_UnparsableSpecDisablesRecurrence(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), "FREQ=")
	assert.Empty(t, ExpandSpec(master, Horizon{}))
}

func TestExpand_WeeklyCount(t *testing.T) {
	// Monday 6 Jan 2025, 09:00, no end time
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), `{"frequency":"weekly","interval":1,"count":3}`)

	occurrences := ExpandSpec(master, Horizon{MaxInstances: 1000})

	assert.Equal(t, []string{
		"2025-01-13 09:00",
		"2025-01-20 09:00",
		"2025-01-27 09:00",
	}, occurrenceDates(occurrences))
	for _, o := range occurrences {
		assert.True(t, o.Generated)
		assert.Equal(t, "ev-1", o.MasterID)
		assert.True(t, o.End.IsZero())
		assert.NotEqual(t, master.Start, o.Start)
	}
}

func TestExpand_MonthlyClampsDayOfMonth(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), `{"frequency":"monthly","count":2}`)

	occurrences := ExpandSpec(master, Horizon{})

	assert.Equal(t, []string{
		"2025-02-28 00:00",
		"2025-03-31 00:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_MonthlyLeapYearFebruary(t *testing.T) {
	master := testMaster(time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC), `{"frequency":"monthly","count":3}`)

	occurrences := ExpandSpec(master, Horizon{})

	// 2024 is a leap year
	assert.Equal(t, []string{
		"2024-01-31 10:00",
		"2024-02-29 10:00",
		"2024-03-31 10:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_AnnuallyClampsLeapDay(t *testing.T) {
	master := testMaster(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), `{"frequency":"annually","count":4}`)

	occurrences := ExpandSpec(master, Horizon{})

	assert.Equal(t, []string{
		"2025-02-28 12:00",
		"2026-02-28 12:00",
		"2027-02-28 12:00",
		"2028-02-29 12:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_LegacyDailyCount(t *testing.T) {
	master := testMaster(time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), "FREQ=DAILY;COUNT=5")

	occurrences := ExpandSpec(master, Horizon{})

	require.Len(t, occurrences, 5)
	assert.Equal(t, []string{
		"2025-03-02 08:30",
		"2025-03-03 08:30",
		"2025-03-04 08:30",
		"2025-03-05 08:30",
		"2025-03-06 08:30",
	}, occurrenceDates(occurrences))
}

func TestExpand_UntilIsInclusive(t *testing.T) {
	master := testMaster(time.Date(2025, 12, 20, 9, 0, 0, 0, time.UTC), "FREQ=DAILY;UNTIL=20251225")

	occurrences := ExpandSpec(master, Horizon{})

	// 21..25 Dec; the 25th at 09:00 is before the end-of-day bound
	require.Len(t, occurrences, 5)
	assert.Equal(t, "2025-12-25 09:00", occurrenceDates(occurrences)[4])
}

func TestExpand_WeekdaySetEmitsEveryMatchingDay(t *testing.T) {
	// Monday 6 Jan 2025; every Monday and Wednesday
	master := testMaster(time.Date(2025, 1, 6, 19, 0, 0, 0, time.UTC), "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=5")

	occurrences := ExpandSpec(master, Horizon{})

	// Wednesday of the master's own week is due; the master's Monday is not re-emitted
	assert.Equal(t, []string{
		"2025-01-08 19:00",
		"2025-01-13 19:00",
		"2025-01-15 19:00",
		"2025-01-20 19:00",
		"2025-01-22 19:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_WeekdaySetWithInterval(t *testing.T) {
	// Monday 6 Jan 2025; Mon+Wed every two weeks
	master := testMaster(time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC), `{"frequency":"weekly","interval":2,"days":["MO","WE"],"count":4}`)

	occurrences := ExpandSpec(master, Horizon{})

	// week of 6 Jan is active, week of 13 Jan is skipped, week of 20 Jan is active
	assert.Equal(t, []string{
		"2025-01-08 07:00",
		"2025-01-20 07:00",
		"2025-01-22 07:00",
		"2025-02-03 07:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_IntervalSteps(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), `{"frequency":"weekly","interval":2,"count":2}`)

	occurrences := ExpandSpec(master, Horizon{})

	assert.Equal(t, []string{
		"2025-01-20 09:00",
		"2025-02-03 09:00",
	}, occurrenceDates(occurrences))
}

func TestExpand_HorizonCeilingBoundsNeverEndingRules(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), `{"frequency":"daily"}`)

	assert.Len(t, ExpandSpec(master, Horizon{MaxInstances: 10}), 10)
	assert.Len(t, ExpandSpec(master, Horizon{}), DefaultMaxInstances)
}

func TestExpand_CountWinsOverLargeHorizon(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), `{"frequency":"daily","count":7}`)

	assert.Len(t, ExpandSpec(master, Horizon{MaxInstances: 100000}), 7)
}

func TestExpand_DurationCarriedToOccurrences(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	master := testMaster(start, "FREQ=DAILY;COUNT=2")
	master.End = start.Add(90 * time.Minute)

	occurrences := ExpandSpec(master, Horizon{})

	require.Len(t, occurrences, 2)
	for _, o := range occurrences {
		assert.Equal(t, 90*time.Minute, o.End.Sub(o.Start))
	}
}

func TestExpand_DisplayFieldsCopiedVerbatim(t *testing.T) {
	master := Master{
		ID:          "ev-9",
		Title:       "GT Sports Football",
		Description: "Bring shin pads",
		Location:    "Springwell South",
		Start:       time.Date(2025, 1, 7, 19, 0, 0, 0, time.UTC),
		AllDay:      false,
		UserID:      "user-3",
		Color:       "#00B140",
		Spec:        "FREQ=WEEKLY;BYDAY=TU;COUNT=1",
	}

	occurrences := ExpandSpec(master, Horizon{})

	require.Len(t, occurrences, 1)
	o := occurrences[0]
	assert.Equal(t, "ev-9:2025-01-14", o.ID)
	assert.Equal(t, master.Title, o.Title)
	assert.Equal(t, master.Description, o.Description)
	assert.Equal(t, master.Location, o.Location)
	assert.Equal(t, master.UserID, o.UserID)
	assert.Equal(t, master.Color, o.Color)
	assert.True(t, o.Generated)
}

func TestExpand_IsIdempotent(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), "FREQ=WEEKLY;BYDAY=MO,WE,FR")

	first := ExpandSpec(master, Horizon{MaxInstances: 50})
	second := ExpandSpec(master, Horizon{MaxInstances: 50})

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Start, second[i].Start)
	}
}

func TestExpand_OrderingIsAscending(t *testing.T) {
	master := testMaster(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), "FREQ=WEEKLY;BYDAY=SU,SA,MO")

	occurrences := ExpandSpec(master, Horizon{MaxInstances: 30})

	require.NotEmpty(t, occurrences)
	for i := 1; i < len(occurrences); i++ {
		assert.True(t, occurrences[i].Start.After(occurrences[i-1].Start),
			fmt.Sprintf("occurrence %d not after %d", i, i-1))
	}
}

func TestExpand_WallClockPreservedAcrossDST(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	// last Sunday of March 2025 is the 30th; clocks move forward that night
	master := testMaster(time.Date(2025, 3, 28, 9, 0, 0, 0, warsaw), "FREQ=DAILY;COUNT=4")

	occurrences := ExpandSpec(master, Horizon{})

	require.Len(t, occurrences, 4)
	for _, o := range occurrences {
		hour, minute, _ := o.Start.Clock()
		assert.Equal(t, 9, hour)
		assert.Equal(t, 0, minute)
	}
}
