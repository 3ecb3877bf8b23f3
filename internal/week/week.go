// Package week partitions normalized events into week-aligned, day-bucketed
// views for weekly-calendar rendering. It is a pure data transformation: no
// fetching, no caching, no I/O.
package week

import (
	"sort"
	"time"

	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
)

// Window is the seven-day, day-aligned span used to bucket and filter
// events. Start is inclusive (first moment of the first day), End exclusive
// (same moment seven days later).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayBucket is the per-day container of events within a week view.
type DayBucket struct {
	Date    time.Time     `json:"date"`
	Name    string        `json:"name"`
	IsToday bool          `json:"is_today"`
	Events  []event.Event `json:"events"`
}

// View is a Window plus exactly seven buckets in chronological order;
// index 0 is the configured first day of the week.
type View struct {
	Window Window                        `json:"window"`
	Days   [config.DaysPerWeek]DayBucket `json:"days"`
}

// Bucketer computes week views. The zero value uses Sunday as the first
// weekday, the local timezone, the system clock, and English day names.
type Bucketer struct {
	// FirstDay is the weekday occupying bucket index 0.
	FirstDay time.Weekday

	// Location is the calendar-day frame for all comparisons.
	Location *time.Location

	// Clock supplies "now" for today marking; the reference instant never
	// does, so paging to another week still marks the real today.
	Clock clock.Clock

	// DayName localizes bucket names. Nil means time.Weekday.String.
	DayName func(time.Weekday) string
}

// WindowFor computes the week window containing the reference instant: the
// reference's calendar day minus its offset from the first weekday, time
// zeroed, through exactly seven days later.
func (b *Bucketer) WindowFor(ref time.Time) Window {
	loc := b.location()
	day := startOfDay(ref.In(loc))
	offset := (int(day.Weekday()) - int(b.FirstDay) + config.DaysPerWeek) % config.DaysPerWeek
	start := day.AddDate(0, 0, -offset)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, config.DaysPerWeek),
	}
}

// CurrentWeek builds an empty, fully-populated-by-metadata view for the week
// containing the reference instant: seven consecutive day buckets with
// localized names and today marking.
func (b *Bucketer) CurrentWeek(ref time.Time) View {
	w := b.WindowFor(ref)
	today := startOfDay(b.clock().Now().In(b.location()))

	v := View{Window: w}
	for i := range v.Days {
		date := w.Start.AddDate(0, 0, i)
		v.Days[i] = DayBucket{
			Date:    date,
			Name:    b.dayName(date.Weekday()),
			IsToday: sameDay(date, today),
			Events:  []event.Event{},
		}
	}
	return v
}

// Populate assigns each event to the bucket matching its start instant's
// calendar day and sorts every bucket ascending by start. Events starting
// outside the window are ignored; an event spanning midnight still lands
// only in its start-day bucket, so weekly totals stay stable.
func (b *Bucketer) Populate(v View, events []event.Event) View {
	loc := b.location()
	for _, ev := range events {
		day := startOfDay(ev.Start.In(loc))
		if day.Before(v.Window.Start) || !day.Before(v.Window.End) {
			continue
		}
		idx := daysBetween(v.Window.Start, day)
		if idx < 0 || idx >= config.DaysPerWeek {
			continue
		}
		v.Days[idx].Events = append(v.Days[idx].Events, ev)
	}

	for i := range v.Days {
		evs := v.Days[i].Events
		sort.SliceStable(evs, func(a, b int) bool {
			return evs[a].Start.Before(evs[b].Start)
		})
	}
	return v
}

// NextWeek returns the reference instant shifted one week forward. The
// window is always recomputed from the shifted reference rather than by
// adding hours to a stored start, which keeps paging correct across DST
// transitions.
func (b *Bucketer) NextWeek(ref time.Time) time.Time {
	return ref.AddDate(0, 0, config.DaysPerWeek)
}

// PreviousWeek returns the reference instant shifted one week back.
func (b *Bucketer) PreviousWeek(ref time.Time) time.Time {
	return ref.AddDate(0, 0, -config.DaysPerWeek)
}

// FilterForWeek retains events whose interval overlaps the week starting at
// weekStart. The overlap test is asymmetric: end-inclusive at the near
// boundary, start-exclusive at the far one, so an event ending exactly at
// week start is still caught. Filtering an already-contained list again
// returns the same set.
func FilterForWeek(events []event.Event, weekStart time.Time) []event.Event {
	weekEnd := weekStart.AddDate(0, 0, config.DaysPerWeek)
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if ev.Start.Before(weekEnd) && !ev.End.Before(weekStart) {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Bucketer) location() *time.Location {
	if b.Location != nil {
		return b.Location
	}
	return time.Local
}

func (b *Bucketer) clock() clock.Clock {
	if b.Clock != nil {
		return b.Clock
	}
	return clock.Real{}
}

func (b *Bucketer) dayName(d time.Weekday) string {
	if b.DayName != nil {
		return b.DayName(d)
	}
	return d.String()
}

// startOfDay zeroes the time-of-day components, keeping the location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay compares calendar days only, never instants.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween counts whole calendar days from a to b, both day-aligned in
// the same location. It steps by calendar day rather than dividing Sub's
// duration so a DST transition inside the window cannot skew the index.
func daysBetween(a, b time.Time) int {
	days := 0
	for cur := a; cur.Before(b); cur = cur.AddDate(0, 0, 1) {
		days++
		if days > config.DaysPerWeek {
			break
		}
	}
	return days
}
