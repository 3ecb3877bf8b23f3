// Package event defines the trusted internal event model produced from raw
// upstream data. Events are immutable once constructed; the normalizer is
// the only producer.
package event

import "time"

// Status is the event confirmation status from the upstream's closed set.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// ResponseStatus is an attendee's reply from the upstream's closed set.
type ResponseStatus string

const (
	ResponseAccepted    ResponseStatus = "accepted"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseNeedsAction ResponseStatus = "needsAction"
)

// Attendee is one invitee on an event.
type Attendee struct {
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name,omitempty"`
	Response    ResponseStatus `json:"response_status"`
}

// Event is the normalized, fully-defaulted event representation.
//
// Title is never empty (the normalizer substitutes a placeholder);
// Description and Location have passed sanitization. Start and End are
// always valid instants: records with an unparseable end were rejected
// wholesale, never partially repaired. Start <= End is not enforced; the
// upstream is trusted for ordering.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AllDay      bool       `json:"all_day"`
	Status      Status     `json:"status"`
	HTMLLink    string     `json:"html_link"`
	CalendarID  string     `json:"calendar_id"`
	FeedURL     string     `json:"feed_url"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}
