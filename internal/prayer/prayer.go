// Package prayer turns astronomical results into dated schedules and answers
// which prayer comes next.
package prayer

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/method"
)

// Errors surfaced by Calculate. They wrap the catalog sentinels so callers
// can test with errors.Is against either package.
var (
	ErrInvalidMethodIndex   = method.ErrInvalidMethodIndex
	ErrInvalidRoundingIndex = method.ErrInvalidRoundingIndex
)

// Engine computes raw times of day for a location and method.
type Engine interface {
	// ComputeDay returns Fajr, Sunrise, Dhuhr, Asr, Maghrib and Ishaa for date.
	ComputeDay(loc astro.Location, m method.Method, date time.Time) ([6]astro.TimeOfDay, error)
	// ComputeNextFajr returns Fajr of the day after date.
	ComputeNextFajr(loc astro.Location, m method.Method, date time.Time) (astro.TimeOfDay, error)
}

// Prayer is a named instant, used for display.
type Prayer struct {
	Name    string
	Period  Period
	Time    time.Time
	Extreme bool
}

// Schedule is one civil day of prayer times. It is never modified after
// construction.
type Schedule struct {
	// Date is local midnight of the computed day.
	Date     time.Time
	Location astro.Location
	Method   method.Method
	Times    [PeriodCount]time.Time
	Extremes [PeriodCount]bool
	// Next is the period that was upcoming when the schedule was built.
	Next Period
}

// Time returns the instant of p.
func (s *Schedule) Time(p Period) time.Time {
	return s.Times[p]
}

// Prayer returns p as a display Prayer.
func (s *Schedule) Prayer(p Period) Prayer {
	return Prayer{Name: p.DisplayName(), Period: p, Time: s.Times[p], Extreme: s.Extremes[p]}
}

// NextAt returns the upcoming period relative to ref.
func (s *Schedule) NextAt(ref time.Time) Period {
	return NextPeriod(s.Times, ref)
}

// Format renders the instant of p, see FormatTime.
func (s *Schedule) Format(p Period, selector string) string {
	return FormatTime(s.Times, s.Extremes, p, selector)
}

// Calculator builds schedules from an Engine.
type Calculator struct {
	Engine Engine
	Clock  Clock
}

// NewCalculator creates a Calculator that reads the wall clock.
func NewCalculator(e Engine) *Calculator {
	return &Calculator{Engine: e, Clock: RealClock{}}
}

// Calculate computes today's schedule, where today is the clock's date in
// the location's UTC offset. offsetMinutes is added to every instant.
func (c *Calculator) Calculate(loc astro.Location, methodIndex, roundingIndex, offsetMinutes int) (*Schedule, error) {
	return c.CalculateDate(loc, methodIndex, roundingIndex, offsetMinutes, c.Clock.Now().In(loc.Zone()))
}

// CalculateDate computes the schedule for the civil date of date.
func (c *Calculator) CalculateDate(loc astro.Location, methodIndex, roundingIndex, offsetMinutes int, date time.Time) (*Schedule, error) {
	m, err := method.Lookup(methodIndex)
	if err != nil {
		return nil, fmt.Errorf("cannot compute schedule: %w", err)
	}
	m, err = m.WithRounding(roundingIndex)
	if err != nil {
		return nil, fmt.Errorf("cannot compute schedule: %w", err)
	}

	zone := loc.Zone()
	y, mo, d := date.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, zone)

	day, err := c.Engine.ComputeDay(loc, m, midnight)
	if err != nil {
		return nil, fmt.Errorf("computing %s: %w", midnight.Format("2006-01-02"), err)
	}
	nextFajr, err := c.Engine.ComputeNextFajr(loc, m, midnight)
	if err != nil {
		return nil, fmt.Errorf("computing next fajr after %s: %w", midnight.Format("2006-01-02"), err)
	}

	shift := time.Duration(offsetMinutes) * time.Minute
	s := &Schedule{Date: midnight, Location: loc, Method: m}
	for i, tod := range day {
		s.Times[i] = midnight.Add(tod.Duration() + shift)
		s.Extremes[i] = tod.Extreme
	}
	s.Times[NextFajr] = midnight.AddDate(0, 0, 1).Add(nextFajr.Duration() + shift)
	s.Extremes[NextFajr] = nextFajr.Extreme
	keepOrdered(s)
	s.Next = NextPeriod(s.Times, c.Clock.Now())

	return s, nil
}

// keepOrdered guards the one ordering an engine cannot see: a short night
// can put Ishaa after the following dawn. Ishaa then moves halfway between
// Maghrib and the next Fajr, and any instant still not after its
// predecessor is pushed a minute past it. Moved instants are flagged extreme.
func keepOrdered(s *Schedule) {
	if !s.Times[Ishaa].Before(s.Times[NextFajr]) {
		if gap := s.Times[NextFajr].Sub(s.Times[Maghrib]); gap >= 2*time.Minute {
			s.Times[Ishaa] = s.Times[Maghrib].Add(gap / 2)
			s.Extremes[Ishaa] = true
		}
	}
	for p := Sunrise; p < PeriodCount; p++ {
		if !s.Times[p].After(s.Times[p-1]) {
			s.Times[p] = s.Times[p-1].Add(time.Minute)
			s.Extremes[p] = true
		}
	}
}

// CalculateDays computes n consecutive schedules starting at start.
func (c *Calculator) CalculateDays(loc astro.Location, methodIndex, roundingIndex, offsetMinutes int, start time.Time, n int) ([]*Schedule, error) {
	out := make([]*Schedule, 0, n)
	for i := 0; i < n; i++ {
		s, err := c.CalculateDate(loc, methodIndex, roundingIndex, offsetMinutes, start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// NextPeriod returns the period that starts next after ref. A period whose
// start equals ref has already begun.
func NextPeriod(times [PeriodCount]time.Time, ref time.Time) Period {
	if ref.Before(times[Fajr]) {
		return Fajr
	}
	for i := Fajr; i < NextFajr; i++ {
		if !ref.Before(times[i]) && ref.Before(times[i+1]) {
			return i + 1
		}
	}
	return NextFajr
}

// CurrentPeriod returns the period in progress at ref. It reports false
// before Fajr, when the previous day's Ishaa is still running.
func CurrentPeriod(times [PeriodCount]time.Time, ref time.Time) (Period, bool) {
	next := NextPeriod(times, ref)
	if next == Fajr {
		return 0, false
	}
	return next - 1, true
}

// FormatTime renders times[p] as "3:04 PM" when selector is "0" and as
// "15:04" otherwise. Extreme instants get a " *" suffix.
func FormatTime(times [PeriodCount]time.Time, extremes [PeriodCount]bool, p Period, selector string) string {
	out := times[p].Format(Layout(selector))
	if extremes[p] {
		out += " *"
	}
	return out
}

// Layout maps a time-format selector to a Go layout.
func Layout(selector string) string {
	if selector == "0" || selector == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
