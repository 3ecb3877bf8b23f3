package gcal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
	"github.com/tourenq/weekcal/internal/sanitize"
)

// Fetcher is the contract the rest of the application consumes. The HTTP
// client implements it; tests substitute their own.
type Fetcher interface {
	FetchEvents(ctx context.Context) ([]event.Event, error)
}

// ClientConfig collects the dependencies and knobs for a Client. Zero values
// get sensible defaults in New.
type ClientConfig struct {
	APIKey       string
	CalendarID   string
	BaseURL      string
	WindowMonths int
	MaxResults   int
	Location     *time.Location
	Clock        clock.Clock
	HTTPClient   *http.Client
	Sanitizer    sanitize.Sanitizer

	// UntitledTitle overrides the placeholder used for blank summaries.
	UntitledTitle string
}

// Client fetches and normalizes events for one pre-configured calendar over
// a symmetric window around the current moment.
type Client struct {
	apiKey       string
	calendarID   string
	baseURL      string
	windowMonths int
	maxResults   int
	clock        clock.Clock
	httpClient   *http.Client
	norm         Normalizer
}

// New constructs a Client. The calendar ID is fixed per client; callers
// serving several calendars hold one client each.
func New(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.APIBaseURL
	}
	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = config.DefaultWindowMonths
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = config.DefaultMaxResults
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: config.HTTPTimeout}
	}
	if cfg.Sanitizer == nil {
		cfg.Sanitizer = sanitize.Default()
	}

	return &Client{
		apiKey:       cfg.APIKey,
		calendarID:   cfg.CalendarID,
		baseURL:      cfg.BaseURL,
		windowMonths: cfg.WindowMonths,
		maxResults:   cfg.MaxResults,
		clock:        cfg.Clock,
		httpClient:   cfg.HTTPClient,
		norm: Normalizer{
			CalendarID:    cfg.CalendarID,
			Location:      cfg.Location,
			Sanitizer:     cfg.Sanitizer,
			UntitledTitle: cfg.UntitledTitle,
		},
	}
}

// CalendarID returns the calendar this client is bound to.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// FetchEvents requests the configured calendar's events over the window,
// validates the envelope, and normalizes each record independently. A
// normalization failure for one record is logged and skipped: one malformed
// upstream record must not take down an entire week's view. Whole-request
// failures are wrapped into the taxonomy and propagate.
func (c *Client) FetchEvents(ctx context.Context) ([]event.Event, error) {
	if c.apiKey == "" {
		return nil, apperr.E(apperr.KindMissingAPIKey, config.ErrMissingAPIKey)
	}

	now := c.clock.Now()
	timeMin := now.AddDate(0, -c.windowMonths, 0)
	timeMax := now.AddDate(0, c.windowMonths, 0)

	reqURL, err := c.buildURL(timeMin, timeMax)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, config.ErrRequestBuild, err)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompClient,
		config.LogKeyCalendar, c.calendarID,
	)
	log.Debug(config.MsgFetchStart,
		config.LogKeyURL, redactKey(reqURL),
		config.LogKeyWindowMin, timeMin.Format(time.RFC3339),
		config.LogKeyWindowMax, timeMax.Format(time.RFC3339),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all transient transport
		// failures from the taxonomy's point of view.
		return nil, apperr.Wrap(apperr.KindNetwork, config.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, config.ErrNetworkFailure, err)
	}

	env, err := ValidateEnvelope(body)
	if err != nil {
		return nil, err
	}

	if env.Error != nil {
		if env.Error.Code == config.APIErrorCodeAuth {
			return nil, apperr.Wrap(apperr.KindAuth, config.ErrAuthFailed,
				fmt.Errorf("upstream error %d: %s", env.Error.Code, env.Error.Message))
		}
		return nil, apperr.Ef(apperr.KindUnknown, "upstream error %d: %s", env.Error.Code, env.Error.Message)
	}

	if env.NextPageToken != "" {
		// maxResults matches the upstream cap; a token here means the window
		// holds more events than one page. The reference behavior does not
		// paginate, so surface it in the logs instead of silently dropping.
		log.Warn(config.MsgPageTokenSeen, config.LogKeyCount, len(env.Items))
	}

	events := make([]event.Event, 0, len(env.Items))
	skipped := 0
	for _, item := range env.Items {
		ev, err := c.norm.Normalize(item)
		if err != nil {
			skipped++
			log.Warn(config.MsgEventSkipped,
				config.LogKeyEventID, item.ID,
				config.LogKeyError, err,
			)
			continue
		}
		events = append(events, ev)
	}

	log.Info(config.MsgFetchSuccess,
		config.LogKeyCount, len(events),
		config.LogKeySkipped, skipped,
	)
	return events, nil
}

// buildURL assembles the events-listing request. Recurrence expansion into
// single instances is non-negotiable: the core does not implement
// recurrence-rule expansion itself.
func (c *Client) buildURL(timeMin, timeMax time.Time) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	base.Path += fmt.Sprintf(config.APIEventsPath, url.PathEscape(c.calendarID))

	q := url.Values{}
	q.Set(config.ParamKey, c.apiKey)
	q.Set(config.ParamSingleEvents, config.ParamValueTrue)
	q.Set(config.ParamOrderBy, config.OrderByStartTime)
	q.Set(config.ParamTimeMin, timeMin.Format(time.RFC3339))
	q.Set(config.ParamTimeMax, timeMax.Format(time.RFC3339))
	q.Set(config.ParamMaxResults, strconv.Itoa(c.maxResults))
	base.RawQuery = q.Encode()

	return base.String(), nil
}

// statusError maps a non-2xx response onto the taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperr.E(apperr.KindAuth, config.ErrAuthFailed)
	case http.StatusForbidden:
		return apperr.E(apperr.KindPermission, config.ErrPermissionDenied)
	case http.StatusNotFound:
		return apperr.Ef(apperr.KindInvalidCalendarID, "%s: %q", config.ErrInvalidCalendar, c.calendarID)
	default:
		return apperr.Ef(apperr.KindNetwork, "%s: %s", config.ErrUpstreamStatus, resp.Status)
	}
}

// redactKey hides the API key query parameter in URLs destined for logs.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return config.RedactedKeyParamMark
	}
	q := u.Query()
	if q.Has(config.ParamKey) {
		q.Set(config.ParamKey, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
