package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tourenq/weekcal/internal/clock"
	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/event"
	"github.com/tourenq/weekcal/internal/gcal"
	"github.com/tourenq/weekcal/internal/i18n"
	"github.com/tourenq/weekcal/internal/keyring"
	"github.com/tourenq/weekcal/internal/resilience"
	"github.com/tourenq/weekcal/internal/server"
	"github.com/tourenq/weekcal/internal/week"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	apiKeyFlag := flag.String(config.FlagAPIKey, "", config.FlagDescAPIKey)
	calendarFlag := flag.String(config.FlagCalendar, "", config.FlagDescCal)
	addrFlag := flag.String(config.FlagAddr, "", config.FlagDescAddr)
	saveKey := flag.Bool(config.FlagSaveKey, false, config.FlagDescSaveKey)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// Load a local .env when present; missing files are fine.
	_ = godotenv.Load()

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// We configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, *apiKeyFlag, *calendarFlag, *addrFlag, *saveKey); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run resolves configuration and credentials, wires the fetch pipeline, and
// serves HTTP until the context is cancelled.
func run(ctx context.Context, apiKeyFlag, calendarFlag, addrFlag string, saveKey bool) error {
	// The -save-key path stores the credential and exits without needing a
	// calendar ID, so handle it before settings validation.
	if saveKey {
		if apiKeyFlag == "" {
			return fmt.Errorf(config.ErrMissingAPIKey)
		}
		if err := keyring.SetAPIKey(apiKeyFlag); err != nil {
			return fmt.Errorf("%s: %w", config.ErrKeySave, err)
		}
		slog.Info(config.MsgKeySaved, config.LogKeyComponent, config.CompMain)
		return nil
	}

	if calendarFlag != "" {
		// LoadSettings requires the calendar ID; make the flag visible to it.
		_ = os.Setenv(config.EnvCalendarID, calendarFlag)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsLoad, err)
	}
	if addrFlag != "" {
		settings.Addr = addrFlag
	}

	apiKey := resolveAPIKey(apiKeyFlag, settings.APIKey)
	location := settings.Location()

	// Dependency Injection.
	translator := i18n.New(settings.Language)
	clk := clock.Real{}

	client := gcal.New(gcal.ClientConfig{
		APIKey:        apiKey,
		CalendarID:    settings.CalendarID,
		WindowMonths:  settings.WindowMonths,
		Location:      location,
		Clock:         clk,
		UntitledTitle: translator.UntitledEvent(),
	})

	fetcher := newResilientFetcher(client)

	bucketer := &week.Bucketer{
		FirstDay: settings.WeekStart,
		Location: location,
		Clock:    clk,
		DayName:  translator.DayName,
	}

	srv := server.New(server.Config{
		Addr:       settings.Addr,
		CalendarID: settings.CalendarID,
		Fetcher:    fetcher,
		Bucketer:   bucketer,
		Clock:      clk,
	})

	// Background refresh keeps the snapshot and feed warm between requests.
	go refreshLoop(ctx, srv, settings.RefreshInterval)

	// Start the HTTP server (blocks until shutdown).
	return srv.Start(ctx)
}

// resolveAPIKey applies credential precedence: flag, then environment, then
// the OS keyring. A missing key is not fatal here; the client reports it on
// first fetch so that -save-key workflows stay usable.
func resolveAPIKey(flagValue, envValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue != "" {
		return envValue
	}
	key, err := keyring.GetAPIKey()
	if err != nil {
		return ""
	}
	return key
}

// refreshLoop fetches once immediately, then on every tick until the context
// is cancelled. Failures are logged and retried on the next tick; the server
// keeps serving its last good snapshot in between.
func refreshLoop(ctx context.Context, srv *server.Server, interval time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgRefreshStart, config.LogKeyInterval, interval)

	if err := srv.Refresh(ctx); err != nil {
		log.Warn(config.MsgRefreshFailed, config.LogKeyError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgCtxCancel)
			return
		case <-ticker.C:
			if err := srv.Refresh(ctx); err != nil {
				log.Warn(config.MsgRefreshFailed, config.LogKeyError, err)
			}
		}
	}
}

// resilientFetcher wraps the calendar client with retry-with-backoff around
// a circuit breaker. The breaker sits inside the retry loop so that an open
// circuit, being non-retryable, aborts the schedule immediately instead of
// burning attempts against a tripped upstream.
type resilientFetcher struct {
	inner   gcal.Fetcher
	breaker *resilience.Breaker[[]event.Event]
	retry   resilience.RetryConfig
}

func newResilientFetcher(inner gcal.Fetcher) *resilientFetcher {
	return &resilientFetcher{
		inner:   inner,
		breaker: resilience.NewBreaker[[]event.Event](resilience.BreakerConfig{}),
	}
}

func (f *resilientFetcher) FetchEvents(ctx context.Context) ([]event.Event, error) {
	return resilience.Retry(ctx, f.retry, observeRetry, func(ctx context.Context) ([]event.Event, error) {
		return f.breaker.Execute(func() ([]event.Event, error) {
			return f.inner.FetchEvents(ctx)
		})
	})
}

func observeRetry(st resilience.RetryState) {
	if !st.Retrying {
		return
	}
	slog.Warn(config.MsgRetryScheduled,
		config.LogKeyComponent, config.CompResilience,
		config.LogKeyAttempt, st.Attempt,
		config.LogKeyError, st.LastErr,
		config.LogKeyNextRetry, st.NextRetryAt,
	)
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
