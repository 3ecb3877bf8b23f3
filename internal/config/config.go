package config

import "time"

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "WeekCal/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "WeekCal"
	AppID          = "com.github.tourenq.weekcal"
	KeyringService = AppID
	KeyringUser    = "google_calendar_api_key"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// Filesystem
// -----------------------------------------------------------------------------

const (
	LogFileName    = "weekcal.log"
	FilePermUserRW = 0o600
	DirPermUserRWX = 0o700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion     = "version"
	FlagDebug       = "debug"
	FlagAPIKey      = "api-key"
	FlagCalendar    = "calendar"
	FlagAddr        = "addr"
	FlagSaveKey     = "save-key"
	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescAPIKey  = "Google Calendar API key (overrides environment and keyring)"
	FlagDescCal     = "Calendar ID to serve (overrides environment)"
	FlagDescAddr    = "HTTP listen address (overrides environment)"
	FlagDescSaveKey = "Store the provided API key in the OS keyring and exit"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvAPIKey       = "GOOGLE_CALENDAR_API_KEY"
	EnvCalendarID   = "WEEKCAL_CALENDAR_ID"
	EnvAddr         = "WEEKCAL_ADDR"
	EnvTimezone     = "WEEKCAL_TIMEZONE"
	EnvWeekStart    = "WEEKCAL_WEEK_START"
	EnvWindowMonths = "WEEKCAL_WINDOW_MONTHS"
	EnvRefreshMin   = "WEEKCAL_REFRESH_MIN"
	EnvLanguage     = "WEEKCAL_LANG"
)

// -----------------------------------------------------------------------------
// Defaults & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultAddr         = "127.0.0.1:8099"
	DefaultWindowMonths = 6    // months each side of "now"
	DefaultMaxResults   = 2500 // upstream hard cap per page
	DefaultRefreshMin   = 15
	DefaultLanguage     = "en"
	DefaultCacheTTL     = 30 * time.Second

	// FeedTagSalt keeps derived cache tags stable across releases while
	// preventing collisions with other tag namespaces.
	FeedTagSalt   = "weekcal-v1-"
	FeedTagLength = 16

	// FallbackTitle mirrors the upstream web UI placeholder for events
	// saved without a summary.
	FallbackTitle = "(No title)"

	DaysPerWeek = 7
)

// -----------------------------------------------------------------------------
// Upstream API (Google Calendar v3)
// -----------------------------------------------------------------------------

const (
	APIBaseURL     = "https://www.googleapis.com/calendar/v3"
	APIEventsPath  = "/calendars/%s/events"
	FeedURLPattern = "https://calendar.google.com/calendar/ical/%s/public/basic.ics"

	ParamKey          = "key"
	ParamSingleEvents = "singleEvents"
	ParamOrderBy      = "orderBy"
	ParamTimeMin      = "timeMin"
	ParamTimeMax      = "timeMax"
	ParamMaxResults   = "maxResults"

	OrderByStartTime = "startTime"
	ParamValueTrue   = "true"

	// Date layouts used by the upstream payload.
	DateFormatAllDay = "2006-01-02"

	StatusConfirmed      = "confirmed"
	StatusTentative      = "tentative"
	StatusCancelled      = "cancelled"
	ResponseNeedsAction  = "needsAction"
	APIErrorCodeAuth     = 401
	MaxHTTPResponseSize  = 16 * 1024 * 1024 // 16MB, far above any real payload
	SchemeHTTP           = "http"
	SchemeHTTPS          = "https"
	RedactedKeyParamMark = "key=REDACTED"
)

// -----------------------------------------------------------------------------
// Resilience Defaults
// -----------------------------------------------------------------------------

const (
	DefaultMaxAttempts      = 3
	DefaultBaseDelay        = 1 * time.Second
	DefaultBackoffMult      = 2.0
	DefaultMaxDelay         = 10 * time.Second
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 60 * time.Second
	BreakerName             = "calendar-fetch"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	ChannelBufferSize  = 1
)

// -----------------------------------------------------------------------------
// HTTP Routes, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteWeek     = "/api/week"
	RouteCalendar = "/calendar.ics"
	RouteHealth   = "/healthz"

	QueryRef = "ref"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAllow           = "Allow"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderRequestID       = "X-Request-Id"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	AllowedMethods      = "GET, HEAD"
	RetryAfterSeconds   = "10"

	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//WeekCal//Feed//EN"
	ICalCalName = "WeekCal"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "weekcal"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropLocation    = "LOCATION"
	PropURL         = "URL"
	PropStatus      = "STATUS"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	FormatICalUID = "%s@%s"

	// StubVCalendar is the minimal valid iCalendar object served when the
	// snapshot holds no events, so feed clients never see an invalid body.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMissingAPIKey    = "no API key provided: pass -api-key, set " + EnvAPIKey + ", or store one in the keyring"
	ErrMissingCalendar  = "calendar ID is required: set " + EnvCalendarID
	ErrInvalidCalendar  = "calendar not found"
	ErrAuthFailed       = "invalid API key or insufficient permission"
	ErrPermissionDenied = "access forbidden; check calendar sharing settings"
	ErrUpstreamStatus   = "calendar API returned an unexpected status"
	ErrEnvelopeDecode   = "failed to decode calendar API response"
	ErrEnvelopeShape    = "calendar API response failed schema validation"
	ErrEventTimes       = "event has an unparseable start or end"
	ErrCircuitOpen      = "calendar fetch circuit is open"
	ErrNetworkFailure   = "network failure while calling calendar API"
	ErrRequestBuild     = "failed to build calendar API request"
	ErrInvalidRef       = "invalid reference date"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrWriteResp        = "failed to write response body"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrSettingsLoad     = "failed to load settings"
	ErrAppFailed        = "application failed unexpectedly"
	ErrBadTimezone      = "failed to load timezone; falling back to local"
	ErrCacheDir         = "failed to resolve user cache directory"
	ErrCreateDir        = "failed to create application directory"
	ErrLogFile          = "failed to open log file"
	ErrKeySave          = "failed to store API key in keyring"

	MsgLogWarning = "Warning: %s (%s): %v\n"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgFetchStart      = "Calendar fetch started"
	MsgFetchSuccess    = "Calendar fetch successful"
	MsgEventSkipped    = "Skipping malformed event"
	MsgPageTokenSeen   = "Response carried a pagination token; window exceeds one page"
	MsgRetryScheduled  = "Retrying after transient failure"
	MsgBreakerState    = "Circuit breaker state changed"
	MsgSnapshotUpdated = "Event snapshot updated"
	MsgRefreshStart    = "Background refresh worker started"
	MsgRefreshFailed   = "Background refresh failed"
	MsgKeySaved        = "API key stored in OS keyring"
	MsgCtxCancel       = "Context cancelled, shutting down"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgRequestServed   = "Request served"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyCalendar  = "calendar_id"
	LogKeyEventID   = "event_id"
	LogKeyCount     = "count"
	LogKeySkipped   = "skipped"
	LogKeyAttempt   = "attempt"
	LogKeyNextRetry = "next_retry_at"
	LogKeyBreaker   = "breaker"
	LogKeyFromState = "from"
	LogKeyToState   = "to"
	LogKeyAddr      = "addr"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyDuration  = "duration_ms"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyETag      = "etag"
	LogKeySizeBytes = "size_bytes"
	LogKeyWindowMin = "time_min"
	LogKeyWindowMax = "time_max"
	LogKeyInterval  = "interval"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain       = "main"
	CompClient     = "client"
	CompServer     = "server"
	CompWeek       = "week"
	CompFeed       = "feed"
	CompResilience = "resilience"
	CompI18n       = "i18n"
	CompWorker     = "worker"
)
