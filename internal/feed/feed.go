// Package feed renders normalized events as an iCalendar subscription feed.
// This is the serving-side counterpart of the derived subscription-feed URL
// carried on every normalized event.
package feed

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
)

// Build encodes the events into a VCALENDAR byte stream. now stamps every
// component (DTSTAMP) so feed consumers can detect regeneration. An empty
// event list yields a minimal valid calendar rather than an empty body, so
// clients never flag the feed as broken.
func Build(events []event.Event, now time.Time) ([]byte, error) {
	if len(events) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	for _, ev := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatICalUID, ev.ID, config.ICalDomain))
		vevent.Props.SetText(config.PropSummary, ev.Title)
		vevent.Props.SetText(config.PropStatus, strings.ToUpper(string(ev.Status)))
		if ev.Description != "" {
			vevent.Props.SetText(config.PropDescription, ev.Description)
		}
		if ev.Location != "" {
			vevent.Props.SetText(config.PropLocation, ev.Location)
		}
		if ev.HTMLLink != "" {
			vevent.Props.SetText(config.PropURL, ev.HTMLLink)
		}

		dtStart := ical.NewProp(config.PropDTStart)
		dtEnd := ical.NewProp(config.PropDTEnd)
		if ev.AllDay {
			dtStart.SetDate(ev.Start)
			dtEnd.SetDate(ev.End)
		} else {
			dtStart.SetDateTime(ev.Start.UTC())
			dtEnd.SetDateTime(ev.End.UTC())
		}
		vevent.Props.Set(dtStart)
		vevent.Props.Set(dtEnd)
		vevent.Props.Set(dtStamp)

		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
