package gcal

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
	"github.com/tourenq/weekcal/internal/sanitize"
)

// Normalizer converts one validated raw record into the trusted internal
// representation. It owns all date arithmetic for the all-day vs timed
// distinction and all field defaulting.
type Normalizer struct {
	CalendarID string
	Location   *time.Location
	Sanitizer  sanitize.Sanitizer

	// UntitledTitle replaces blank summaries. Defaults to config.FallbackTitle.
	UntitledTitle string
}

// Normalize validates and transforms a single record. A record whose start
// or end cannot be parsed into a valid instant is rejected wholesale with an
// InvalidData error; there is no partial construction.
func (n *Normalizer) Normalize(raw RawEvent) (event.Event, error) {
	allDay := raw.Start.Date != ""

	start, err := n.parseInstant(raw.Start, allDay)
	if err != nil {
		return event.Event{}, apperr.Wrap(apperr.KindInvalidData,
			fmt.Sprintf("%s: event %q start", config.ErrEventTimes, raw.ID), err)
	}
	end, err := n.parseInstant(raw.End, allDay)
	if err != nil {
		return event.Event{}, apperr.Wrap(apperr.KindInvalidData,
			fmt.Sprintf("%s: event %q end", config.ErrEventTimes, raw.ID), err)
	}

	title := strings.TrimSpace(raw.Summary)
	if title == "" {
		title = n.untitled()
	}

	status := event.Status(raw.Status)
	if status == "" {
		status = event.StatusConfirmed
	}

	ev := event.Event{
		ID:          raw.ID,
		Title:       title,
		Description: n.Sanitizer.Sanitize(raw.Description),
		Location:    n.Sanitizer.Sanitize(raw.Location),
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Status:      status,
		HTMLLink:    raw.HTMLLink,
		CalendarID:  n.CalendarID,
		FeedURL:     FeedURL(n.CalendarID),
	}

	if len(raw.Attendees) > 0 {
		ev.Attendees = make([]event.Attendee, 0, len(raw.Attendees))
		for _, a := range raw.Attendees {
			ev.Attendees = append(ev.Attendees, event.Attendee{
				Email:       a.Email,
				DisplayName: a.DisplayName,
				Response:    event.ResponseStatus(a.ResponseStatus),
			})
		}
	}

	return ev, nil
}

// parseInstant turns a raw time specification into a concrete instant.
//
// All-day dates are parsed as calendar components and anchored at local noon
// of that day, never passed through general string-to-date coercion: parsing
// "2026-03-01" as a UTC midnight and converting would shift the displayed day
// for any consumer west of UTC. Noon keeps the date stable either side.
func (n *Normalizer) parseInstant(raw RawTime, allDay bool) (time.Time, error) {
	loc := n.location()

	if allDay {
		d, err := time.ParseInLocation(config.DateFormatAllDay, raw.Date, loc)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
	}

	t, err := time.Parse(time.RFC3339, raw.DateTime)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func (n *Normalizer) location() *time.Location {
	if n.Location != nil {
		return n.Location
	}
	return time.Local
}

func (n *Normalizer) untitled() string {
	if n.UntitledTitle != "" {
		return n.UntitledTitle
	}
	return config.FallbackTitle
}

// FeedURL derives the public subscription-feed URL for a calendar ID. The
// template is fixed; only the ID varies.
func FeedURL(calendarID string) string {
	return fmt.Sprintf(config.FeedURLPattern, url.PathEscape(calendarID))
}
