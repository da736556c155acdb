package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokyabdulrahman/athan/internal/api"
	"github.com/smokyabdulrahman/athan/internal/geo"
)

func sampleAPIResponse() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: api.Timings{
				Fajr:    "05:17",
				Sunrise: "06:48",
				Dhuhr:   "12:13",
				Asr:     "15:02",
				Maghrib: "17:39",
				Isha:    "19:10",
			},
			Meta: api.Meta{
				Latitude:  51.5074,
				Longitude: -0.1278,
				Timezone:  "Europe/London",
				Method:    api.MethodInfo{ID: 2, Name: "ISNA"},
				School:    "STANDARD",
			},
		},
	}
}

func londonQuery() api.Query {
	return api.Query{Latitude: 51.5074, Longitude: -0.1278, Method: 2, School: 0, Timezone: "UTC"}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("directory %q was not created", dir)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestTimings_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if err := c.SaveTimings(date, londonQuery(), sampleAPIResponse()); err != nil {
		t.Fatalf("SaveTimings error: %v", err)
	}

	got := c.LoadTimings(date, londonQuery())
	if got == nil {
		t.Fatal("LoadTimings returned nil after save")
	}
	if got.Data.Timings.Fajr != "05:17" {
		t.Errorf("Fajr = %q, want %q", got.Data.Timings.Fajr, "05:17")
	}
	if got.Data.Timings.Isha != "19:10" {
		t.Errorf("Isha = %q, want %q", got.Data.Timings.Isha, "19:10")
	}
	if got.Data.Meta.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want %q", got.Data.Meta.Timezone, "Europe/London")
	}
}

func TestTimings_SatisfiesResponseCache(t *testing.T) {
	var _ api.ResponseCache = newTestCache(t)
}

func TestTimings_CacheMiss(t *testing.T) {
	c := newTestCache(t)
	if got := c.LoadTimings(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), londonQuery()); got != nil {
		t.Error("expected nil for cache miss, got entry")
	}
}

func TestTimings_KeyedByQuery(t *testing.T) {
	c := newTestCache(t)
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_ = c.SaveTimings(date, londonQuery(), sampleAPIResponse())

	tests := []struct {
		name   string
		mutate func(q *api.Query)
	}{
		{"method", func(q *api.Query) { q.Method = 3 }},
		{"school", func(q *api.Query) { q.School = 1 }},
		{"timezone", func(q *api.Query) { q.Timezone = "Etc/GMT-3" }},
		{"latitude", func(q *api.Query) { q.Latitude = 21.4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := londonQuery()
			tt.mutate(&q)
			if got := c.LoadTimings(date, q); got != nil {
				t.Errorf("expected miss after changing %s", tt.name)
			}
		})
	}
}

func TestTimings_OtherDayMisses(t *testing.T) {
	c := newTestCache(t)
	today := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_ = c.SaveTimings(today, londonQuery(), sampleAPIResponse())

	if got := c.LoadTimings(today.AddDate(0, 0, 1), londonQuery()); got != nil {
		t.Error("expected nil for a different day")
	}
}

func TestTimings_CorruptedFile(t *testing.T) {
	c := newTestCache(t)
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	_ = c.SaveTimings(date, londonQuery(), sampleAPIResponse())

	matches, _ := filepath.Glob(filepath.Join(c.Dir(), "timings_*.json"))
	if len(matches) != 1 {
		t.Fatalf("found %d timings files, want 1", len(matches))
	}
	os.WriteFile(matches[0], []byte("{bad json"), 0o644)

	if got := c.LoadTimings(date, londonQuery()); got != nil {
		t.Error("expected nil for corrupted cache file")
	}
}

func TestGeo_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	loc := &geo.Location{
		Latitude:    51.5074,
		Longitude:   -0.1278,
		City:        "London",
		Country:     "United Kingdom",
		CountryCode: "GB",
		Timezone:    "Europe/London",
	}

	if err := c.SaveGeo(loc); err != nil {
		t.Fatalf("SaveGeo error: %v", err)
	}

	got := c.LoadGeo()
	if got == nil {
		t.Fatal("LoadGeo returned nil after save")
	}
	if got.City != "London" || got.CountryCode != "GB" {
		t.Errorf("LoadGeo = %+v", got)
	}
}

func TestGeo_CacheMiss(t *testing.T) {
	c := newTestCache(t)
	if got := c.LoadGeo(); got != nil {
		t.Error("expected nil for geo cache miss, got entry")
	}
}

func TestGeo_ExpiredTTL(t *testing.T) {
	c := newTestCache(t)

	// Written 25 hours ago, past the 24h TTL.
	entry := GeoCacheEntry{
		Location: geo.Location{Latitude: 51.5074, Longitude: -0.1278, City: "London"},
		CachedAt: time.Now().Add(-25 * time.Hour),
	}
	data, _ := json.Marshal(entry)
	os.WriteFile(filepath.Join(c.Dir(), "geolocation.json"), data, 0o644)

	if got := c.LoadGeo(); got != nil {
		t.Error("expected nil for expired geo cache, got entry")
	}
}

func TestCountry_RoundTripAndRounding(t *testing.T) {
	c := newTestCache(t)
	if err := c.SaveCountry(21.4225, 39.8262, "SA"); err != nil {
		t.Fatalf("SaveCountry error: %v", err)
	}

	code, ok := c.LoadCountry(21.4225, 39.8262)
	if !ok || code != "SA" {
		t.Errorf("LoadCountry = %q, %v; want SA, true", code, ok)
	}

	// A few metres away shares the entry.
	code, ok = c.LoadCountry(21.4221, 39.8259)
	if !ok || code != "SA" {
		t.Errorf("nearby LoadCountry = %q, %v; want SA, true", code, ok)
	}

	if _, ok := c.LoadCountry(24.7, 46.7); ok {
		t.Error("expected miss for a distant point")
	}
}

func TestCountry_Expired(t *testing.T) {
	c := newTestCache(t)
	c.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	_ = c.SaveCountry(51.5, -0.12, "GB")

	c.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	if _, ok := c.LoadCountry(51.5, -0.12); ok {
		t.Error("expected expired country entry to miss")
	}
}

type countingGeocoder struct {
	code  string
	err   error
	calls int
}

func (g *countingGeocoder) CountryCode(_ context.Context, _, _ float64) (string, error) {
	g.calls++
	return g.code, g.err
}

func TestGeocoder_CachesAnswers(t *testing.T) {
	next := &countingGeocoder{code: "EG"}
	g := &Geocoder{Next: next, Cache: newTestCache(t)}

	for i := 0; i < 3; i++ {
		code, err := g.CountryCode(context.Background(), 30.04, 31.24)
		if err != nil {
			t.Fatal(err)
		}
		if code != "EG" {
			t.Errorf("code = %q, want EG", code)
		}
	}
	if next.calls != 1 {
		t.Errorf("underlying geocoder called %d times, want 1", next.calls)
	}
}

func TestGeocoder_DoesNotCacheEmptyOrErrors(t *testing.T) {
	next := &countingGeocoder{}
	g := &Geocoder{Next: next, Cache: newTestCache(t)}

	g.CountryCode(context.Background(), 0, -30)
	g.CountryCode(context.Background(), 0, -30)
	if next.calls != 2 {
		t.Errorf("empty answers: calls = %d, want 2", next.calls)
	}

	boom := errors.New("boom")
	next.err = boom
	if _, err := g.CountryCode(context.Background(), 0, -30); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}
