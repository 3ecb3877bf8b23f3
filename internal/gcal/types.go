package gcal

// Raw DTOs mirror the upstream events-listing JSON envelope. They are
// ephemeral: decoded, validated, normalized, and discarded.

// Envelope is the top-level response shape: an items array plus optional
// pagination token, or an embedded application-level error object in some
// failure modes.
type Envelope struct {
	Kind          string     `json:"kind"`
	Summary       string     `json:"summary"`
	NextPageToken string     `json:"nextPageToken"`
	Items         []RawEvent `json:"items" validate:"omitempty,dive"`
	Error         *APIError  `json:"error"`
}

// APIError is the structured error object the upstream can embed in an
// otherwise well-formed 2xx payload.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RawEvent is one untrusted event record. Only identifier and permalink are
// structurally required; everything else is optional and defaulted during
// validation or normalization.
type RawEvent struct {
	ID          string        `json:"id" validate:"required"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Status      string        `json:"status" validate:"omitempty,oneof=confirmed tentative cancelled"`
	HTMLLink    string        `json:"htmlLink" validate:"required,url"`
	Start       RawTime       `json:"start"`
	End         RawTime       `json:"end"`
	Attendees   []RawAttendee `json:"attendees" validate:"omitempty,dive"`
}

// RawTime is the upstream start/end specification: either a precise instant
// (DateTime, optional TimeZone) or a plain calendar date (Date). The two
// forms are mutually exclusive; which one is present decides the all-day
// flag downstream.
type RawTime struct {
	Date     string `json:"date"`
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// RawAttendee is one untrusted attendee record.
type RawAttendee struct {
	Email          string `json:"email" validate:"required,email"`
	DisplayName    string `json:"displayName"`
	ResponseStatus string `json:"responseStatus" validate:"omitempty,oneof=accepted declined tentative needsAction"`
}
