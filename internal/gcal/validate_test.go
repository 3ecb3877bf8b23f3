package gcal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/gcal"
)

// TestValidateEnvelope_Valid verifies a well-formed payload passes and
// carries its items through unchanged.
func TestValidateEnvelope_Valid(t *testing.T) {
	body := []byte(`{
		"kind": "calendar#events",
		"summary": "Team",
		"items": [
			{
				"id": "ev-1",
				"summary": "Standup",
				"status": "confirmed",
				"htmlLink": "https://calendar.google.com/event?eid=abc",
				"start": {"dateTime": "2026-03-02T15:00:00Z"},
				"end": {"dateTime": "2026-03-02T15:30:00Z"}
			}
		]
	}`)

	env, err := gcal.ValidateEnvelope(body)
	require.NoError(t, err)
	require.Len(t, env.Items, 1)
	assert.Equal(t, "ev-1", env.Items[0].ID)
	assert.Equal(t, "Team", env.Summary)
	assert.Nil(t, env.Error)
}

// TestValidateEnvelope_StructuralFailures verifies malformed JSON and
// schema-violating records both classify as invalid data.
func TestValidateEnvelope_StructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"NotJSON", `{"items": [`},
		{"MissingID", `{"items": [{"htmlLink": "https://x.example/e", "start": {"date": "2026-03-01"}, "end": {"date": "2026-03-02"}}]}`},
		{"BadStatus", `{"items": [{"id": "e", "status": "maybe", "htmlLink": "https://x.example/e", "start": {"date": "2026-03-01"}, "end": {"date": "2026-03-02"}}]}`},
		{"BadLink", `{"items": [{"id": "e", "htmlLink": "not a url", "start": {"date": "2026-03-01"}, "end": {"date": "2026-03-02"}}]}`},
		{"BadAttendeeEmail", `{"items": [{"id": "e", "htmlLink": "https://x.example/e", "start": {"date": "2026-03-01"}, "end": {"date": "2026-03-02"}, "attendees": [{"email": "nope"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := gcal.ValidateEnvelope([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, env)
			assert.Equal(t, apperr.KindInvalidData, apperr.KindOf(err))
		})
	}
}

// TestValidateEnvelope_TimeShape verifies the date/dateTime mutual
// exclusion on both ends of a record.
func TestValidateEnvelope_TimeShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"NeitherOnStart", `{"items": [{"id": "e", "htmlLink": "https://x.example/e", "start": {}, "end": {"date": "2026-03-02"}}]}`},
		{"BothOnStart", `{"items": [{"id": "e", "htmlLink": "https://x.example/e", "start": {"date": "2026-03-01", "dateTime": "2026-03-01T09:00:00Z"}, "end": {"date": "2026-03-02"}}]}`},
		{"NeitherOnEnd", `{"items": [{"id": "e", "htmlLink": "https://x.example/e", "start": {"date": "2026-03-01"}, "end": {}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gcal.ValidateEnvelope([]byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidData, apperr.KindOf(err))
		})
	}
}

// TestValidateEnvelope_EmbeddedError verifies an upstream error object in a
// well-formed payload is returned inside the envelope, not as an error.
func TestValidateEnvelope_EmbeddedError(t *testing.T) {
	body := []byte(`{"error": {"code": 401, "message": "Invalid credentials"}}`)

	env, err := gcal.ValidateEnvelope(body)
	require.NoError(t, err)
	require.NotNil(t, env.Error)
	assert.Equal(t, 401, env.Error.Code)
	assert.Equal(t, "Invalid credentials", env.Error.Message)
}

// TestValidateEnvelope_Defaulting verifies missing status and attendee
// response status take their documented defaults during validation.
func TestValidateEnvelope_Defaulting(t *testing.T) {
	body := []byte(`{
		"items": [
			{
				"id": "ev-1",
				"htmlLink": "https://calendar.google.com/event?eid=abc",
				"start": {"date": "2026-03-01"},
				"end": {"date": "2026-03-02"},
				"attendees": [{"email": "a@example.com"}]
			}
		]
	}`)

	env, err := gcal.ValidateEnvelope(body)
	require.NoError(t, err)
	require.Len(t, env.Items, 1)
	assert.Equal(t, "confirmed", env.Items[0].Status)
	require.Len(t, env.Items[0].Attendees, 1)
	assert.Equal(t, "needsAction", env.Items[0].Attendees[0].ResponseStatus)
}

// TestValidateEnvelope_EmptyItems verifies an empty window is not an error.
func TestValidateEnvelope_EmptyItems(t *testing.T) {
	env, err := gcal.ValidateEnvelope([]byte(`{"kind": "calendar#events", "items": []}`))
	require.NoError(t, err)
	assert.Empty(t, env.Items)
}
