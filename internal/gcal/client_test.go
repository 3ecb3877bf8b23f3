package gcal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/gcal"
)

const testEnvelope = `{
	"kind": "calendar#events",
	"summary": "Team",
	"items": [
		{
			"id": "ev-good",
			"summary": "Standup",
			"status": "confirmed",
			"htmlLink": "https://calendar.google.com/event?eid=abc",
			"start": {"dateTime": "2026-03-02T15:00:00Z"},
			"end": {"dateTime": "2026-03-02T15:30:00Z"}
		},
		{
			"id": "ev-broken",
			"summary": "Corrupt",
			"htmlLink": "https://calendar.google.com/event?eid=def",
			"start": {"dateTime": "not-a-timestamp"},
			"end": {"dateTime": "2026-03-02T16:00:00Z"}
		}
	]
}`

// TestFetchEvents_Success verifies the full fetch pipeline: query parameters,
// envelope validation, and per-record tolerance (one malformed record is
// skipped, the rest survive).
func TestFetchEvents_Success(t *testing.T) {
	// 1. Mock Server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "secret-key", q.Get(config.ParamKey))
		assert.Equal(t, "true", q.Get(config.ParamSingleEvents))
		assert.Equal(t, "startTime", q.Get(config.ParamOrderBy))
		assert.Equal(t, "2500", q.Get(config.ParamMaxResults))
		assert.NotEmpty(t, q.Get(config.ParamTimeMin))
		assert.NotEmpty(t, q.Get(config.ParamTimeMax))
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testEnvelope))
	}))
	defer ts.Close()

	// 2. Execution
	client := gcal.New(gcal.ClientConfig{
		APIKey:     "secret-key",
		CalendarID: "cal@example.com",
		BaseURL:    ts.URL,
		Location:   time.UTC,
	})
	events, err := client.FetchEvents(context.Background())

	// 3. Assertions: the malformed record is dropped, not fatal.
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-good", events[0].ID)
	assert.Equal(t, "Standup", events[0].Title)
}

// TestFetchEvents_WindowBounds verifies the symmetric fetch window around
// the injected clock's now.
func TestFetchEvents_WindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, now.AddDate(0, -6, 0).Format(time.RFC3339), q.Get(config.ParamTimeMin))
		assert.Equal(t, now.AddDate(0, 6, 0).Format(time.RFC3339), q.Get(config.ParamTimeMax))
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer ts.Close()

	client := gcal.New(gcal.ClientConfig{
		APIKey:     "k",
		CalendarID: "cal@example.com",
		BaseURL:    ts.URL,
		Clock:      clock.Fixed{Time: now},
	})
	events, err := client.FetchEvents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events)
}

// TestFetchEvents_StatusMapping verifies each upstream HTTP status maps to
// its taxonomy kind.
func TestFetchEvents_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantKind   apperr.Kind
	}{
		{"Unauthorized", http.StatusUnauthorized, apperr.KindAuth},
		{"Forbidden", http.StatusForbidden, apperr.KindPermission},
		{"NotFound", http.StatusNotFound, apperr.KindInvalidCalendarID},
		{"ServerError", http.StatusInternalServerError, apperr.KindNetwork},
		{"BadGateway", http.StatusBadGateway, apperr.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			client := gcal.New(gcal.ClientConfig{
				APIKey:     "k",
				CalendarID: "missing@example.com",
				BaseURL:    ts.URL,
			})
			events, err := client.FetchEvents(context.Background())

			require.Error(t, err)
			assert.Nil(t, events)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

// TestFetchEvents_NotFoundNamesCalendar verifies the unknown-calendar error
// message carries the offending ID.
func TestFetchEvents_NotFoundNamesCalendar(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := gcal.New(gcal.ClientConfig{
		APIKey:     "k",
		CalendarID: "ghost@example.com",
		BaseURL:    ts.URL,
	})
	_, err := client.FetchEvents(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost@example.com")
}

// TestFetchEvents_MissingKey verifies a keyless client fails before any
// network traffic.
func TestFetchEvents_MissingKey(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	client := gcal.New(gcal.ClientConfig{
		CalendarID: "cal@example.com",
		BaseURL:    ts.URL,
	})
	_, err := client.FetchEvents(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperr.KindMissingAPIKey, apperr.KindOf(err))
	assert.Zero(t, hits.Load(), "no request should leave the process without a key")
}

// TestFetchEvents_EmbeddedError verifies the application-level error object
// in a 200 payload is classified by its embedded code.
func TestFetchEvents_EmbeddedError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind apperr.Kind
	}{
		{"AuthCode", `{"error": {"code": 401, "message": "Invalid credentials"}}`, apperr.KindAuth},
		{"OtherCode", `{"error": {"code": 429, "message": "Rate limit"}}`, apperr.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			client := gcal.New(gcal.ClientConfig{
				APIKey:     "k",
				CalendarID: "cal@example.com",
				BaseURL:    ts.URL,
			})
			_, err := client.FetchEvents(context.Background())

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

// TestFetchEvents_NetworkError verifies transport failures classify as
// transient network errors.
func TestFetchEvents_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	client := gcal.New(gcal.ClientConfig{
		APIKey:     "k",
		CalendarID: "cal@example.com",
		BaseURL:    ts.URL,
	})
	_, err := client.FetchEvents(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
}

// TestFetchEvents_MalformedBody verifies a 200 with a broken payload is
// invalid data, which is permanent.
func TestFetchEvents_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer ts.Close()

	client := gcal.New(gcal.ClientConfig{
		APIKey:     "k",
		CalendarID: "cal@example.com",
		BaseURL:    ts.URL,
	})
	_, err := client.FetchEvents(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidData, apperr.KindOf(err))
	assert.False(t, apperr.Retryable(err))
}
