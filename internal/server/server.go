// Package server is the HTTP presentation boundary: it exposes the populated
// week view as JSON, the normalized events as an ICS subscription feed, and
// a health probe. It owns no calendar logic beyond wiring fetch results into
// the bucketer.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
	"github.com/tourenq/weekcal/internal/feed"
	"github.com/tourenq/weekcal/internal/gcal"
	"github.com/tourenq/weekcal/internal/week"
)

// snapshot holds the last successful fetch result.
type snapshot struct {
	events    []event.Event
	fetchedAt time.Time
}

// cacheItem stores the rendered ICS feed and its caching metadata.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as required by HTTP headers
}

// Config collects the server's dependencies.
type Config struct {
	Addr       string
	CalendarID string
	Fetcher    gcal.Fetcher
	Bucketer   *week.Bucketer
	Clock      clock.Clock
	CacheTTL   time.Duration
}

// Server serves week views and the ICS feed over HTTP. Fetch results are
// cached for a short TTL so UI polling does not hammer the upstream; the
// rendered feed uses an atomic pointer for lock-free reads on the hot path.
type Server struct {
	addr       string
	calendarID string
	feedTag    string
	fetcher    gcal.Fetcher
	bucketer   *week.Bucketer
	clk        clock.Clock
	cacheTTL   time.Duration

	mu   sync.RWMutex
	snap *snapshot

	ics atomic.Pointer[cacheItem]
}

// New constructs a Server. The feed tag is derived once from the calendar ID
// and seeds every ETag, so two calendars never share cache identities.
func New(cfg Config) *Server {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = config.DefaultCacheTTL
	}
	return &Server{
		addr:       cfg.Addr,
		calendarID: cfg.CalendarID,
		feedTag:    gcal.FeedTag(cfg.CalendarID),
		fetcher:    cfg.Fetcher,
		bucketer:   cfg.Bucketer,
		clk:        cfg.Clock,
		cacheTTL:   cfg.CacheTTL,
	}
}

// FeedTag exposes the derived cache tag, mainly for callers layering their
// own caching on top.
func (s *Server) FeedTag() string {
	return s.feedTag
}

// Handler builds the route table wrapped in the request-logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteWeek, s.handleWeek)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendar)
	mux.HandleFunc(config.RouteHealth, s.handleHealth)
	return withRequestLog(mux)
}

// Start runs the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.addr,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Refresh fetches the configured calendar and replaces the snapshot and the
// rendered feed. Called by the background worker and lazily by handlers once
// the snapshot goes stale.
func (s *Server) Refresh(ctx context.Context) error {
	events, err := s.fetcher.FetchEvents(ctx)
	if err != nil {
		return err
	}

	now := s.clk.Now()

	s.mu.Lock()
	s.snap = &snapshot{events: events, fetchedAt: now}
	s.mu.Unlock()

	data, err := feed.Build(events, now)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, s.feedTag+"-"+hex.EncodeToString(hash[:8])),
		lastModified: now.UTC().Format(http.TimeFormat),
	}
	s.ics.Store(item)

	slog.Debug(config.MsgSnapshotUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(events),
		config.LogKeyETag, item.etag,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}

// events returns the cached snapshot, refreshing through the fetcher when
// the TTL has expired or no snapshot exists yet.
func (s *Server) events(ctx context.Context) ([]event.Event, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap != nil && s.clk.Now().Sub(snap.fetchedAt) < s.cacheTTL {
		return snap.events, nil
	}

	if err := s.Refresh(ctx); err != nil {
		// A stale snapshot beats an error page when the upstream blips.
		if snap != nil {
			return snap.events, nil
		}
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.events, nil
}

// weekResponse is the JSON shape handed to presentation code.
type weekResponse struct {
	week.View
	CalendarID  string    `json:"calendar_id"`
	FeedTag     string    `json:"feed_tag"`
	GeneratedAt time.Time `json:"generated_at"`
}

// handleWeek serves the populated week view for the reference date in the
// ref query parameter (YYYY-MM-DD), defaulting to the current day.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	ref := s.clk.Now()
	if v := r.URL.Query().Get(config.QueryRef); v != "" {
		parsed, err := time.ParseInLocation(config.DateFormatAllDay, v, ref.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, config.ErrInvalidRef)
			return
		}
		ref = parsed
	}

	events, err := s.events(r.Context())
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, kindStatus(err), err.Error())
		return
	}

	view := s.bucketer.CurrentWeek(ref)
	view = s.bucketer.Populate(view, week.FilterForWeek(events, view.Window.Start))

	writeJSON(w, http.StatusOK, weekResponse{
		View:        view,
		CalendarID:  s.calendarID,
		FeedTag:     s.feedTag,
		GeneratedAt: s.clk.Now(),
	})
}

// handleCalendar serves the rendered ICS feed with conditional-request
// support (ETag and Last-Modified).
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.ics.Load()
	if item == nil {
		// No successful fetch yet; ask feed clients to come back.
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil && !serverTime.After(clientTime) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := w.Write(item.data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// kindStatus maps taxonomy kinds onto HTTP statuses at this boundary.
// Upstream-side failures read as bad gateway; an open circuit as temporary
// unavailability.
func kindStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindCircuitOpen:
		return http.StatusServiceUnavailable
	case apperr.KindAuth, apperr.KindPermission, apperr.KindInvalidCalendarID,
		apperr.KindNetwork, apperr.KindInvalidData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
