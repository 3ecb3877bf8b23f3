// Package i18n provides localized strings for the few user-visible labels
// the core produces: day-bucket names and the untitled-event placeholder.
// Locales are embedded JSON files named active.<lang>.json.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tourenq/weekcal/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *goi18n.Bundle
)

// loadBundle initializes the translation bundle from the embedded locales.
// Malformed or misnamed files are logged and skipped; English always loads
// because it is compiled in.
func loadBundle() *goi18n.Bundle {
	bundleOnce.Do(func() {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			slog.Error(config.ErrLocalesAccess,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyError, err,
			)
			return
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
				slog.Debug(config.MsgLocaleSkip,
					config.LogKeyComponent, config.CompI18n,
					config.LogKeyFile, name,
				)
				continue
			}

			if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
				slog.Error(config.ErrLocaleLoad,
					config.LogKeyComponent, config.CompI18n,
					config.LogKeyFile, name,
					config.LogKeyError, err,
				)
				continue
			}
			slog.Debug(config.MsgLocaleLoaded,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
		}
	})
	return bundle
}

// Translator resolves message IDs for one language, falling back to English.
type Translator struct {
	localizer *goi18n.Localizer
}

// New returns a Translator for the given BCP 47 language tag.
func New(lang string) *Translator {
	b := loadBundle()
	return &Translator{
		localizer: goi18n.NewLocalizer(b, lang, config.DefaultLanguage),
	}
}

// dayMessageIDs maps time.Weekday to locale message IDs. Indexed by the
// stdlib ordering (Sunday = 0).
var dayMessageIDs = [7]string{
	"day_sunday",
	"day_monday",
	"day_tuesday",
	"day_wednesday",
	"day_thursday",
	"day_friday",
	"day_saturday",
}

// DayName returns the localized weekday name, or the stdlib English name if
// the locale lookup fails.
func (t *Translator) DayName(d time.Weekday) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: dayMessageIDs[d]})
	if err != nil || msg == "" {
		return d.String()
	}
	return msg
}

// UntitledEvent returns the localized placeholder title for events without
// a summary.
func (t *Translator) UntitledEvent() string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: "event_untitled"})
	if err != nil || msg == "" {
		return config.FallbackTitle
	}
	return msg
}
