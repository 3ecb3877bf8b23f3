package week_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/event"
	"github.com/tourenq/weekcal/internal/week"
)

// 2026-03-04 is a Wednesday.
var wednesday = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

func testBucketer(first time.Weekday, now time.Time) *week.Bucketer {
	return &week.Bucketer{
		FirstDay: first,
		Location: time.UTC,
		Clock:    clock.Fixed{Time: now},
	}
}

func timedEvent(id string, start, end time.Time) event.Event {
	return event.Event{ID: id, Title: id, Start: start, End: end}
}

// TestWindowFor verifies the window is aligned to the configured first
// weekday, day-zeroed, and exactly seven days long.
func TestWindowFor(t *testing.T) {
	tests := []struct {
		name      string
		first     time.Weekday
		wantStart time.Time
	}{
		{"SundayStart", time.Sunday, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"MondayStart", time.Monday, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"WednesdayStart", time.Wednesday, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"ThursdayStart", time.Thursday, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBucketer(tt.first, wednesday)
			w := b.WindowFor(wednesday)

			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantStart.AddDate(0, 0, 7), w.End)
			assert.Equal(t, tt.first, w.Start.Weekday())
		})
	}
}

// TestWindowFor_RefOnFirstDay verifies a reference already on the first
// weekday anchors its own week, not the previous one.
func TestWindowFor_RefOnFirstDay(t *testing.T) {
	b := testBucketer(time.Wednesday, wednesday)
	w := b.WindowFor(wednesday)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), w.Start)
}

// TestCurrentWeek verifies seven consecutive buckets with correct weekday
// progression and names.
func TestCurrentWeek(t *testing.T) {
	b := testBucketer(time.Monday, wednesday)
	v := b.CurrentWeek(wednesday)

	require.Len(t, v.Days, 7)
	for i, day := range v.Days {
		assert.Equal(t, v.Window.Start.AddDate(0, 0, i), day.Date)
		assert.Equal(t, day.Date.Weekday().String(), day.Name)
		assert.NotNil(t, day.Events)
		assert.Empty(t, day.Events)
	}
	assert.Equal(t, time.Monday, v.Days[0].Date.Weekday())
	assert.Equal(t, time.Sunday, v.Days[6].Date.Weekday())
}

// TestCurrentWeek_TodayMarking verifies today comes from the clock, not the
// reference: paging to another week never marks a false today.
func TestCurrentWeek_TodayMarking(t *testing.T) {
	b := testBucketer(time.Sunday, wednesday)

	// 1. Reference inside the current week: exactly one bucket is today.
	v := b.CurrentWeek(wednesday)
	todays := 0
	for _, day := range v.Days {
		if day.IsToday {
			todays++
			assert.Equal(t, wednesday.Day(), day.Date.Day())
		}
	}
	assert.Equal(t, 1, todays)

	// 2. Reference one week ahead: no bucket is today.
	v = b.CurrentWeek(b.NextWeek(wednesday))
	for _, day := range v.Days {
		assert.False(t, day.IsToday)
	}
}

// TestPopulate verifies bucket assignment by start day, in-bucket ordering,
// and that out-of-window events are ignored.
func TestPopulate(t *testing.T) {
	b := testBucketer(time.Sunday, wednesday)
	v := b.CurrentWeek(wednesday) // week of Mar 1-7

	day3 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	events := []event.Event{
		timedEvent("late", day3.Add(17*time.Hour), day3.Add(18*time.Hour)),
		timedEvent("early", day3.Add(9*time.Hour), day3.Add(10*time.Hour)),
		timedEvent("outside", day3.AddDate(0, 0, 30), day3.AddDate(0, 0, 30).Add(time.Hour)),
	}

	v = b.Populate(v, events)

	// Tuesday Mar 3 is bucket index 2 in a Sunday-first week.
	require.Len(t, v.Days[2].Events, 2)
	assert.Equal(t, "early", v.Days[2].Events[0].ID)
	assert.Equal(t, "late", v.Days[2].Events[1].ID)

	total := 0
	for _, day := range v.Days {
		total += len(day.Events)
	}
	assert.Equal(t, 2, total)
}

// TestPopulate_MidnightSpan verifies an event crossing midnight lands only
// in its start-day bucket.
func TestPopulate_MidnightSpan(t *testing.T) {
	b := testBucketer(time.Sunday, wednesday)
	v := b.CurrentWeek(wednesday)

	start := time.Date(2026, 3, 3, 23, 0, 0, 0, time.UTC)
	v = b.Populate(v, []event.Event{timedEvent("overnight", start, start.Add(3*time.Hour))})

	assert.Len(t, v.Days[2].Events, 1)
	assert.Empty(t, v.Days[3].Events)
}

// TestFilterForWeek verifies the overlap boundaries: an event ending exactly
// at week start is kept, one starting exactly at week end is dropped.
func TestFilterForWeek(t *testing.T) {
	weekStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	events := []event.Event{
		timedEvent("inside", weekStart.Add(24*time.Hour), weekStart.Add(25*time.Hour)),
		timedEvent("ends-at-start", weekStart.Add(-2*time.Hour), weekStart),
		timedEvent("starts-at-end", weekEnd, weekEnd.Add(time.Hour)),
		timedEvent("spans-whole-week", weekStart.Add(-24*time.Hour), weekEnd.Add(24*time.Hour)),
		timedEvent("long-gone", weekStart.AddDate(0, -1, 0), weekStart.AddDate(0, -1, 0).Add(time.Hour)),
	}

	got := week.FilterForWeek(events, weekStart)

	ids := make([]string, 0, len(got))
	for _, ev := range got {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"inside", "ends-at-start", "spans-whole-week"}, ids)
}

// TestFilterForWeek_Idempotent verifies filtering an already-filtered list
// returns the same set.
func TestFilterForWeek_Idempotent(t *testing.T) {
	weekStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []event.Event{
		timedEvent("a", weekStart.Add(time.Hour), weekStart.Add(2*time.Hour)),
		timedEvent("b", weekStart.Add(48*time.Hour), weekStart.Add(49*time.Hour)),
	}

	once := week.FilterForWeek(events, weekStart)
	twice := week.FilterForWeek(once, weekStart)
	assert.Equal(t, once, twice)
}

// TestWeekPaging verifies next/previous references land in adjacent windows
// and round-trip back to the original week.
func TestWeekPaging(t *testing.T) {
	b := testBucketer(time.Sunday, wednesday)
	w := b.WindowFor(wednesday)

	next := b.WindowFor(b.NextWeek(wednesday))
	assert.Equal(t, w.End, next.Start)

	prev := b.WindowFor(b.PreviousWeek(wednesday))
	assert.Equal(t, w.Start, prev.End)

	round := b.WindowFor(b.PreviousWeek(b.NextWeek(wednesday)))
	assert.Equal(t, w, round)
}

// TestBucketer_CustomDayName verifies the localization hook is used.
func TestBucketer_CustomDayName(t *testing.T) {
	b := testBucketer(time.Sunday, wednesday)
	b.DayName = func(d time.Weekday) string { return "jour-" + d.String() }

	v := b.CurrentWeek(wednesday)
	assert.Equal(t, "jour-Sunday", v.Days[0].Name)
}
