package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/display"
	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

// todayView is everything the today output needs, computed up front so the
// renderers stay pure.
type todayView struct {
	Snap     scheduler.Snapshot
	Schedule *prayer.Schedule
	Now      time.Time
	Hijri    string
	Names    *locale.Translator
}

func runToday(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := newApp(cmd, nil)

	snap, sched, err := a.today(ctx)
	if err != nil {
		return err
	}

	v := todayView{
		Snap:     snap,
		Schedule: sched,
		Now:      a.sched.Clock.Now().In(snap.Location.Zone()),
		Hijri:    a.hijri(ctx, snap, sched),
		Names:    translatorFor(a.settings),
	}

	if FlagJSON {
		return printJSON(buildTodayJSON(v))
	}
	fmt.Print(renderToday(v))
	return nil
}

// renderToday renders the colored terminal output for today's prayer schedule.
func renderToday(v todayView) string {
	var sb strings.Builder
	s := v.Schedule

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  %s\n", display.Bold("Prayer Times"))
	sb.WriteString("\n")

	// Location and date info.
	fmt.Fprintf(&sb, "  %s\n", locationLabel(v.Snap))
	fmt.Fprintf(&sb, "  %s\n", astro.ZoneName(v.Snap.Location.UTCOffset))
	fmt.Fprintf(&sb, "  %s\n", formatGregorianDate(s.Date))
	if v.Hijri != "" {
		fmt.Fprintf(&sb, "  %s\n", v.Hijri)
	}
	fmt.Fprintf(&sb, "  %s\n", display.Gray(s.Method.Name))
	fmt.Fprintf(&sb, "  %s\n", display.Gray(fmt.Sprintf("Qibla %.1f°", astro.Qibla(v.Snap.Location))))
	sb.WriteString("\n")

	// Find the max prayer name length for alignment.
	maxNameLen := 0
	for _, p := range prayer.Periods {
		if n := utf8.RuneCountInString(v.Names.PeriodName(p)); n > maxNameLen {
			maxNameLen = n
		}
	}

	current, hasCurrent := prayer.CurrentPeriod(s.Times, v.Now)
	next := s.NextAt(v.Now)

	for _, p := range prayer.Periods {
		line := fmt.Sprintf("  %s  %s", padRight(v.Names.PeriodName(p), maxNameLen), s.Format(p, v.Snap.TimeFormat))

		switch {
		case hasCurrent && p == current:
			// Current prayer: dimmed.
			sb.WriteString(display.Dim(line) + "\n")
		case p == next:
			// Next prayer: accent color + countdown.
			remaining := prayer.FormatRemaining(s.Time(p).Sub(v.Now))
			sb.WriteString(display.Accent(line) + display.Accent(fmt.Sprintf("  <- next in %s", remaining)) + "\n")
		default:
			sb.WriteString(line + "\n")
		}
	}

	// After Ishaa the next prayer is tomorrow's Fajr, which has no row.
	if next == prayer.NextFajr {
		remaining := prayer.FormatRemaining(s.Time(next).Sub(v.Now))
		sb.WriteString(display.Accent(fmt.Sprintf("  %s  %s  <- tomorrow in %s",
			padRight(v.Names.PeriodName(next), maxNameLen), s.Format(next, v.Snap.TimeFormat), remaining)) + "\n")
	}

	if hasExtreme(s) {
		sb.WriteString("\n  " + display.Warn(extremeNote) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

const extremeNote = "* estimated for high latitude"

func hasExtreme(s *prayer.Schedule) bool {
	for _, e := range s.Extremes {
		if e {
			return true
		}
	}
	return false
}

// formatGregorianDate returns a formatted Gregorian date string.
func formatGregorianDate(date time.Time) string {
	return date.Format("Monday, 02 January 2006")
}

// padRight pads a string to the given width in runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Method   string            `json:"method"`
	Qibla    float64           `json:"qibla"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current,omitempty"`
	Next     *todayJSONNext    `json:"next"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri,omitempty"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func jsonLocation(snap scheduler.Snapshot) todayJSONLocation {
	return todayJSONLocation{
		City:      snap.City,
		Country:   snap.Country,
		Timezone:  astro.ZoneName(snap.Location.UTCOffset),
		Latitude:  snap.Location.Latitude,
		Longitude: snap.Location.Longitude,
	}
}

func timingsMap(s *prayer.Schedule, selector string) map[string]string {
	timings := make(map[string]string)
	for _, p := range prayer.Periods {
		timings[p.Key()] = s.Format(p, selector)
	}
	return timings
}

func buildTodayJSON(v todayView) todayJSON {
	s := v.Schedule
	out := todayJSON{
		Location: jsonLocation(v.Snap),
		Date: todayJSONDate{
			Gregorian: s.Date.Format("02 Jan 2006"),
			Hijri:     v.Hijri,
		},
		Method:  s.Method.Name,
		Qibla:   astro.Qibla(v.Snap.Location),
		Timings: timingsMap(s, v.Snap.TimeFormat),
	}

	if current, ok := prayer.CurrentPeriod(s.Times, v.Now); ok {
		out.Current = current.Key()
	}

	next := s.NextAt(v.Now)
	out.Next = &todayJSONNext{
		Prayer:    next.Key(),
		Time:      s.Format(next, v.Snap.TimeFormat),
		Remaining: prayer.FormatRemaining(s.Time(next).Sub(v.Now)),
	}
	return out
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
