package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/display"
	"github.com/smokyabdulrahman/athan/internal/geo"
	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

func TestLocationLabel(t *testing.T) {
	tests := []struct {
		name string
		snap scheduler.Snapshot
		want string
	}{
		{"city and country", scheduler.Snapshot{City: "Riyadh", Country: "Saudi Arabia"}, "Riyadh, Saudi Arabia"},
		{"city only", scheduler.Snapshot{City: "Riyadh"}, "Riyadh"},
		{"coordinates", scheduler.Snapshot{Location: astro.NewLocation(24.7136, 46.6753, 0, 0, 0, 3)}, "24.7136, 46.6753"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locationLabel(tt.snap))
		})
	}
}

func TestFormatGregorianDate(t *testing.T) {
	got := formatGregorianDate(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Saturday, 28 February 2026", got)
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"Fajr", 7, "Fajr   "},
		{"Maghrib", 7, "Maghrib"},
		{"Isha", 4, "Isha"},
		{"A", 10, "A         "},
		{"الفجر", 7, "الفجر  "},
	}

	for _, tt := range tests {
		got := padRight(tt.s, tt.width)
		if got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 7, false},
		{"3", 3, false},
		{"week", 7, false},
		{"month", 30, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.raw, 7)
		if tt.wantErr {
			assert.Error(t, err, "parseDays(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "parseDays(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "parseDays(%q)", tt.raw)
	}
}

func TestParsePrayers(t *testing.T) {
	all, err := parsePrayers("")
	require.NoError(t, err)
	assert.Len(t, all, len(prayer.Periods))

	some, err := parsePrayers("Fajr, isha")
	require.NoError(t, err)
	assert.Equal(t, map[prayer.Period]bool{prayer.Fajr: true, prayer.Ishaa: true}, some)

	_, err = parsePrayers("fajr,brunch")
	assert.Error(t, err)
}

func tempConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return cfg
}

func TestOverlay(t *testing.T) {
	base := tempConfig(t)
	require.NoError(t, base.SetString(config.KeyLatitude, "10"))
	require.NoError(t, base.SetString(config.KeyMethod, "2"))

	o := newOverlay(base)
	o.set(config.KeyMethod, "3")

	assert.Equal(t, "10", o.GetString(config.KeyLatitude, ""))
	assert.Equal(t, "3", o.GetString(config.KeyMethod, ""))
	assert.Equal(t, "def", o.GetString(config.KeyCity, "def"))

	// Writes to an overridden key stay in the overlay.
	require.NoError(t, o.SetString(config.KeyMethod, "4"))
	assert.Equal(t, "4", o.GetString(config.KeyMethod, ""))
	assert.Equal(t, "2", base.GetString(config.KeyMethod, ""))

	// Other writes reach the store.
	require.NoError(t, o.SetString(config.KeyCity, "Makkah"))
	assert.Equal(t, "Makkah", base.GetString(config.KeyCity, ""))
}

func TestEffectiveSettings_FlagsOverrideStore(t *testing.T) {
	base := tempConfig(t)
	require.NoError(t, base.SetString(config.KeyLatitude, "10"))
	require.NoError(t, base.SetString(config.KeyLongitude, "20"))

	loadedStore = base
	t.Cleanup(func() { loadedStore = nil })

	root := NewRootCmd("test")
	require.NoError(t, root.PersistentFlags().Set("latitude", "21.5"))
	require.NoError(t, root.PersistentFlags().Set("method", "0"))
	t.Cleanup(func() { FlagLatitude, FlagMethod = 0, -1 })

	s := effectiveSettings(root)
	assert.Equal(t, "21.5", s.GetString(config.KeyLatitude, ""))
	assert.Equal(t, "20", s.GetString(config.KeyLongitude, ""))
	// Method 0 is a real choice and must not read as unset.
	assert.Equal(t, "0", s.GetString(config.KeyMethod, ""))
	// Unchanged flags do not shadow the store.
	assert.Equal(t, "", s.GetString(config.KeyRounding, ""))
}

func TestSaveLocation(t *testing.T) {
	base := tempConfig(t)
	o := newOverlay(base)

	err := saveLocation(o, &geo.Location{
		Latitude: 21.4225, Longitude: 39.8262, UTCOffset: 3,
		City: "Makkah", Country: "Saudi Arabia",
	})
	require.NoError(t, err)

	assert.Equal(t, "21.4225", base.GetString(config.KeyLatitude, ""))
	assert.Equal(t, "39.8262", base.GetString(config.KeyLongitude, ""))
	assert.Equal(t, "3", base.GetString(config.KeyUTCOffset, ""))
	assert.Equal(t, "Makkah", base.GetString(config.KeyCity, ""))
}

func TestFormatMethodValue(t *testing.T) {
	assert.Equal(t, "3 (Umm Al-Qura University, Makkah)", formatMethodValue("3"))
	assert.Equal(t, "99", formatMethodValue("99"))
	assert.Equal(t, "x", formatMethodValue("x"))
}

// makkahView builds today's view for Makkah at the given local time.
func makkahView(t *testing.T, hour, minute int) todayView {
	t.Helper()
	zone := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, 3, 12, hour, minute, 0, 0, zone)
	loc := astro.NewLocation(21.4225, 39.8262, 0, 0, 0, 3)

	calc := &prayer.Calculator{Engine: astro.NewSolar(), Clock: prayer.FixedClock(now)}
	s, err := calc.Calculate(loc, method.UmmAlQura, method.DefaultRoundingIndex, 0)
	require.NoError(t, err)

	return todayView{
		Snap:     scheduler.Snapshot{Location: loc, TimeFormat: "24h", City: "Makkah", Country: "Saudi Arabia"},
		Schedule: s,
		Now:      now,
		Names:    locale.New("en"),
	}
}

func TestBuildTodayJSON(t *testing.T) {
	v := makkahView(t, 13, 0)
	out := buildTodayJSON(v)

	assert.Equal(t, "Makkah", out.Location.City)
	assert.Equal(t, "UTC+3", out.Location.Timezone)
	assert.Equal(t, "12 Mar 2026", out.Date.Gregorian)
	assert.Equal(t, "dhuhr", out.Current)
	require.NotNil(t, out.Next)
	assert.Equal(t, "asr", out.Next.Prayer)
	assert.Len(t, out.Timings, 6)
	assert.True(t, out.Qibla >= 0 && out.Qibla < 360, "qibla %v out of range", out.Qibla)
}

func TestBuildTodayJSON_BeforeFajr(t *testing.T) {
	v := makkahView(t, 2, 0)
	out := buildTodayJSON(v)

	assert.Empty(t, out.Current)
	assert.Equal(t, "fajr", out.Next.Prayer)
}

func noColor(t *testing.T) {
	t.Helper()
	prev := display.Enabled()
	display.SetEnabled(false)
	t.Cleanup(func() { display.SetEnabled(prev) })
}

func TestRenderToday(t *testing.T) {
	noColor(t)

	v := makkahView(t, 13, 0)
	out := renderToday(v)

	assert.Contains(t, out, "Makkah, Saudi Arabia")
	assert.Contains(t, out, "Thursday, 12 March 2026")
	assert.Contains(t, out, "Umm Al-Qura")
	for _, name := range []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Ishaa"} {
		assert.Contains(t, out, name)
	}

	var asrLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Asr") {
			asrLine = line
		}
	}
	assert.Contains(t, asrLine, "<- next in")
	assert.NotContains(t, out, "tomorrow")
}

func TestRenderToday_AfterIshaa(t *testing.T) {
	noColor(t)

	out := renderToday(makkahView(t, 23, 30))
	assert.Contains(t, out, "<- tomorrow in")
}

func TestRenderToday_Localized(t *testing.T) {
	noColor(t)

	v := makkahView(t, 13, 0)
	v.Names = locale.New("ar")
	assert.Contains(t, renderToday(v), "الفجر")
}

func TestPrintVersion(t *testing.T) {
	assert.Equal(t, "athan v1.0.0\n", PrintVersion("v1.0.0"))
}
