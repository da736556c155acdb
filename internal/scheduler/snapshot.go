// Package scheduler reads settings, computes the day's schedule and keeps
// the alarm registry in step with it.
package scheduler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/method"
)

// ErrMissingLocation means latitude or longitude has not been configured.
var ErrMissingLocation = errors.New("location is not configured; run `athan locate --save` or `athan config set latitude/longitude`")

// DefaultTimeFormat selects the 12-hour clock.
const DefaultTimeFormat = "0"

// SettingsStore reads string settings.
type SettingsStore interface {
	GetString(key, def string) string
}

// SettingsWriter is a SettingsStore that can persist values.
type SettingsWriter interface {
	SettingsStore
	SetString(key, value string) error
}

// Snapshot is the parsed view of the settings at one moment.
type Snapshot struct {
	Location      astro.Location
	MethodIndex   int
	// MethodSet is false when no method is stored and the default is used.
	MethodSet     bool
	RoundingIndex int
	OffsetMinutes int
	LeadMinutes   int
	TimeFormat    string
	Language      string
	Engine        string
	City          string
	Country       string
}

// ReadSnapshot parses the settings. now supplies the UTC offset when none is
// stored. Malformed numbers fall back to zero with a warning; a method or
// rounding that is not a number becomes an invalid index so that the
// calculation rejects it.
func ReadSnapshot(s SettingsStore, now time.Time) (Snapshot, error) {
	latRaw := s.GetString(config.KeyLatitude, "")
	lonRaw := s.GetString(config.KeyLongitude, "")
	if latRaw == "" || lonRaw == "" {
		return Snapshot{}, ErrMissingLocation
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lon, err2 := strconv.ParseFloat(lonRaw, 64)
	if err1 != nil || err2 != nil {
		log.Warn().Str("latitude", latRaw).Str("longitude", lonRaw).Msg("stored location is unreadable")
		return Snapshot{}, ErrMissingLocation
	}

	_, zoneOffset := now.Zone()
	offset := float64(zoneOffset) / 3600
	if raw := s.GetString(config.KeyUTCOffset, ""); raw != "" {
		offset = readFloat(s, config.KeyUTCOffset, offset)
	}

	snap := Snapshot{
		Location: astro.NewLocation(
			lat, lon,
			readFloat(s, config.KeyAltitude, 0),
			readFloat(s, config.KeyPressure, 0),
			readFloat(s, config.KeyTemperature, 0),
			offset,
		),
		MethodIndex:   method.DefaultIndex,
		RoundingIndex: readIndex(s, config.KeyRounding, method.DefaultRoundingIndex),
		OffsetMinutes: readInt(s, config.KeyOffsetMinutes, 0),
		LeadMinutes:   readInt(s, config.KeyLeadMinutes, 0),
		TimeFormat:    s.GetString(config.KeyTimeFormat, DefaultTimeFormat),
		Language:      s.GetString(config.KeyLanguage, locale.DefaultLanguage),
		Engine:        strings.ToLower(s.GetString(config.KeyEngine, config.EngineSolar)),
		City:          s.GetString(config.KeyCity, ""),
		Country:       s.GetString(config.KeyCountry, ""),
	}
	if raw := s.GetString(config.KeyMethod, ""); raw != "" {
		snap.MethodIndex = readIndex(s, config.KeyMethod, method.DefaultIndex)
		snap.MethodSet = true
	}
	return snap, nil
}

func readFloat(s SettingsStore, key string, def float64) float64 {
	raw := s.GetString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("malformed setting, using default")
		return def
	}
	return v
}

func readInt(s SettingsStore, key string, def int) int {
	raw := s.GetString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("malformed setting, using default")
		return def
	}
	return v
}

// readIndex parses a catalog index. Text that is not a number yields -1,
// which every catalog rejects.
func readIndex(s SettingsStore, key string, def int) int {
	raw := s.GetString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("setting is not an index")
		return -1
	}
	return v
}
