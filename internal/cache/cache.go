// Package cache provides file-based caching for remote timings, IP
// geolocation and reverse-geocoded country codes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/api"
	"github.com/smokyabdulrahman/athan/internal/geo"
	"github.com/smokyabdulrahman/athan/internal/method"
)

const (
	prayerCacheFile  = "timings_%s.json" // keyed by hash
	countryCacheFile = "country_%s.json" // keyed by hash
	geoCacheFile     = "geolocation.json"
	geoTTL           = 24 * time.Hour
	countryTTL       = 30 * 24 * time.Hour
)

// Cache stores entries as JSON files in one directory.
type Cache struct {
	dir string
	now func() time.Time
}

// PrayerCacheEntry stores a day's API response along with the query that
// produced it.
type PrayerCacheEntry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   int          `json:"method"`
	School   int          `json:"school"`
	Timezone string       `json:"timezone"`
	Timings  api.Timings  `json:"timings"`
	DateInfo api.DateInfo `json:"date_info"`
	Meta     api.Meta     `json:"meta"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// CountryCacheEntry stores a reverse-geocoded country code.
type CountryCacheEntry struct {
	Code     string    `json:"code"`
	CachedAt time.Time `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/athan/.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "athan")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// hashKey builds a short deterministic file key from its parts.
func hashKey(parts ...interface{}) string {
	raw := fmt.Sprint(parts...)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

func timingsKey(date string, q api.Query) string {
	return hashKey(date, "|", fmt.Sprintf("%.6f|%.6f", q.Latitude, q.Longitude), "|", q.Method, "|", q.School, "|", q.Timezone)
}

func (c *Cache) readJSON(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Debug().Err(err).Str("file", name).Msg("ignoring unreadable cache entry")
		return false
	}
	return true
}

func (c *Cache) writeJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// LoadTimings returns the cached response for the civil date of date, or nil
// if it is missing or belongs to another day.
func (c *Cache) LoadTimings(date time.Time, q api.Query) *api.Response {
	dateStr := date.Format("2006-01-02")

	var entry PrayerCacheEntry
	if !c.readJSON(fmt.Sprintf(prayerCacheFile, timingsKey(dateStr, q)), &entry) {
		return nil
	}
	// A stale entry for another day is useless.
	if entry.Date != dateStr {
		return nil
	}

	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: entry.Timings,
			Date:    entry.DateInfo,
			Meta:    entry.Meta,
		},
	}
}

// SaveTimings writes a day's response to the cache.
func (c *Cache) SaveTimings(date time.Time, q api.Query, resp *api.Response) error {
	dateStr := date.Format("2006-01-02")
	entry := PrayerCacheEntry{
		Date:     dateStr,
		Method:   q.Method,
		School:   q.School,
		Timezone: q.Timezone,
		Timings:  resp.Data.Timings,
		DateInfo: resp.Data.Date,
		Meta:     resp.Data.Meta,
	}
	return c.writeJSON(fmt.Sprintf(prayerCacheFile, timingsKey(dateStr, q)), entry)
}

// LoadGeo returns the cached geolocation result, or nil if it is missing or
// older than 24 hours.
func (c *Cache) LoadGeo() *geo.Location {
	var entry GeoCacheEntry
	if !c.readJSON(geoCacheFile, &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	return c.writeJSON(geoCacheFile, GeoCacheEntry{Location: *loc, CachedAt: c.now()})
}

// countryKey groups points about a kilometre apart under one entry.
func countryKey(lat, lon float64) string {
	round := func(v float64) float64 { return math.Round(v*100) / 100 }
	return hashKey(fmt.Sprintf("%.2f|%.2f", round(lat), round(lon)))
}

// LoadCountry returns the cached country code for a point.
func (c *Cache) LoadCountry(lat, lon float64) (string, bool) {
	var entry CountryCacheEntry
	if !c.readJSON(fmt.Sprintf(countryCacheFile, countryKey(lat, lon)), &entry) {
		return "", false
	}
	if c.now().Sub(entry.CachedAt) > countryTTL {
		return "", false
	}
	return entry.Code, true
}

// SaveCountry caches the country code of a point.
func (c *Cache) SaveCountry(lat, lon float64, code string) error {
	return c.writeJSON(fmt.Sprintf(countryCacheFile, countryKey(lat, lon)), CountryCacheEntry{Code: code, CachedAt: c.now()})
}

// Geocoder caches the answers of another geocoder. Empty answers are not
// cached so that a later lookup can still succeed.
type Geocoder struct {
	Next  method.Geocoder
	Cache *Cache
}

var _ method.Geocoder = (*Geocoder)(nil)

func (g *Geocoder) CountryCode(ctx context.Context, lat, lon float64) (string, error) {
	if code, ok := g.Cache.LoadCountry(lat, lon); ok {
		return code, nil
	}
	code, err := g.Next.CountryCode(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if code != "" {
		_ = g.Cache.SaveCountry(lat, lon, code)
	}
	return code, nil
}
