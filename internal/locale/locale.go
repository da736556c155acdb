// Package locale translates prayer names and notification texts.
package locale

import (
	"embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

const (
	keyLead       = "alarm.lead"
	keyTitle      = "notify.title"
	keyBody       = "notify.body"
	keyLeadBody   = "notify.lead_body"
	keyCountdown  = "countdown"
	keyPeriodBase = "period."
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	languages  []string
)

func loadBundle() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		log.Error().Err(err).Msg("locale files unreadable")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		code := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if code == "" {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			log.Error().Err(err).Str("file", name).Msg("failed to load locale")
			continue
		}
		languages = append(languages, code)
	}
	sort.Strings(languages)
}

// Languages returns the codes of the bundled translations.
func Languages() []string {
	bundleOnce.Do(loadBundle)
	return append([]string(nil), languages...)
}

// Translator localizes texts for one language. Missing translations fall
// back to English, then to the message id.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New creates a Translator for lang. An empty lang uses DefaultLanguage.
func New(lang string) *Translator {
	bundleOnce.Do(loadBundle)
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, DefaultLanguage),
	}
}

// Language returns the requested language code.
func (t *Translator) Language() string { return t.lang }

func (t *Translator) msg(id string, data map[string]interface{}) string {
	out, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		log.Debug().Err(err).Str("key", id).Str("lang", t.lang).Msg("translation missing")
		return id
	}
	return out
}

// PeriodName returns the localized name of p. NextFajr is named as Fajr.
func (t *Translator) PeriodName(p prayer.Period) string {
	if p == prayer.NextFajr {
		p = prayer.Fajr
	}
	if !p.Valid() {
		return p.String()
	}
	return t.msg(keyPeriodBase+p.Key(), nil)
}

// LeadLabel returns the reminder label for p, e.g. "Asr (in 10 minutes)".
func (t *Translator) LeadLabel(p prayer.Period, minutes int) string {
	return t.msg(keyLead, map[string]interface{}{
		"Name":    t.PeriodName(p),
		"Minutes": minutes,
	})
}

// NotificationTitle is the title of every prayer notification.
func (t *Translator) NotificationTitle() string {
	return t.msg(keyTitle, nil)
}

// NotificationBody announces that p has begun.
func (t *Translator) NotificationBody(p prayer.Period) string {
	return t.msg(keyBody, map[string]interface{}{"Name": t.PeriodName(p)})
}

// LeadBody announces the upcoming p at the formatted time at.
func (t *Translator) LeadBody(p prayer.Period, at string) string {
	return t.msg(keyLeadBody, map[string]interface{}{
		"Name": t.PeriodName(p),
		"Time": at,
	})
}

// Countdown renders "<name> in <remaining>".
func (t *Translator) Countdown(p prayer.Period, remaining string) string {
	return t.msg(keyCountdown, map[string]interface{}{
		"Name":      t.PeriodName(p),
		"Remaining": remaining,
	})
}
