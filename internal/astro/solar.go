package astro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/smokyabdulrahman/athan/internal/method"
)

// ErrUndefinedTime is returned when an instant cannot be placed even after
// the extreme-latitude fallbacks, e.g. sunrise during polar night without a
// nearest-latitude policy.
var ErrUndefinedTime = errors.New("prayer time undefined for this location and date")

const (
	standardPressure    = 1010.0
	standardRefraction  = 0.5667
	solarSemiDiameter   = 0.2667
	elevationDipPerRoot = 0.0347
	iterations          = 2
	// minGap keeps neighbouring instants apart after minute rounding.
	minGap = 2.0 / 60
)

// slot indices of the intermediate result. Maghrib is at sunset.
const (
	slotFajr = iota
	slotSunrise
	slotDhuhr
	slotAsr
	slotMaghrib
	slotIsha
	slotCount
)

// Solar is the built-in astronomical engine.
type Solar struct{}

// NewSolar creates the built-in engine.
func NewSolar() *Solar { return &Solar{} }

// ComputeDay returns Fajr, Sunrise, Dhuhr, Asr, Maghrib and Isha for the
// civil date of date, as offsets from local midnight in loc's UTC offset.
func (s *Solar) ComputeDay(loc Location, m method.Method, date time.Time) ([6]TimeOfDay, error) {
	var out [6]TimeOfDay
	if err := loc.Validate(); err != nil {
		return out, err
	}

	hours, extreme, err := s.hours(loc, m, date)
	if err != nil {
		return out, err
	}

	for i := range out {
		out[i] = round(hours[i], m.Rounding, i == slotSunrise, extreme[i])
	}
	return out, nil
}

// ComputeNextFajr returns Fajr of the day after date, relative to that day's midnight.
func (s *Solar) ComputeNextFajr(loc Location, m method.Method, date time.Time) (TimeOfDay, error) {
	day, err := s.ComputeDay(loc, m, date.AddDate(0, 0, 1))
	if err != nil {
		return TimeOfDay{}, err
	}
	return day[0], nil
}

func (s *Solar) hours(loc Location, m method.Method, date time.Time) ([slotCount]float64, [slotCount]bool, error) {
	var extreme [slotCount]bool
	times := raw(loc, m, date)

	if anyInvalid(times) && m.Extreme == method.ExtremeGoodInvalid && m.NearestLatitude > 0 {
		near := loc
		near.Latitude = math.Copysign(math.Min(math.Abs(loc.Latitude), m.NearestLatitude), loc.Latitude)
		if near.Latitude != loc.Latitude {
			fallback := raw(near, m, date)
			for i := range times {
				if math.IsNaN(times[i]) && !math.IsNaN(fallback[i]) {
					times[i] = fallback[i]
					extreme[i] = true
				}
			}
		}
	}

	nightPortions(&times, &extreme, m)

	for i, t := range times {
		if math.IsNaN(t) {
			return times, extreme, fmt.Errorf("%w: slot %d on %s", ErrUndefinedTime, i, date.Format("2006-01-02"))
		}
	}
	keepOrdered(&times, &extreme, m)
	return times, extreme, nil
}

// keepOrdered repairs days whose instants come from different latitudes.
// Twilight on the wrong side of sunrise or sunset falls back to its night
// portion. Whatever is still out of order is pushed just past its
// predecessor. Repaired instants are flagged extreme.
func keepOrdered(times *[slotCount]float64, extreme *[slotCount]bool, m method.Method) {
	rise, set := times[slotSunrise], times[slotMaghrib]
	night := 24 - (set - rise)

	if times[slotFajr] > rise-minGap {
		times[slotFajr] = rise - math.Max(m.FajrAngle/60*night, minGap)
		extreme[slotFajr] = true
	}

	if t := times[slotAsr]; t < times[slotDhuhr]+minGap || t > times[slotMaghrib]-minGap {
		if times[slotMaghrib]-times[slotDhuhr] >= 2*minGap {
			times[slotAsr] = (times[slotDhuhr] + times[slotMaghrib]) / 2
			extreme[slotAsr] = true
		}
	}

	if times[slotIsha] < times[slotMaghrib]+minGap {
		portion := m.IshaAngle / 60 * night
		if m.IshaInterval > 0 {
			portion = m.IshaInterval / 60
		}
		times[slotIsha] = times[slotMaghrib] + math.Max(portion, minGap)
		extreme[slotIsha] = true
	}

	for i := slotSunrise; i < slotCount; i++ {
		if times[i] < times[i-1]+minGap {
			times[i] = times[i-1] + minGap
			extreme[i] = true
		}
	}
}

// nightPortions places twilight instants a fraction of the night away from
// sunrise or sunset. Under ExtremeGoodInvalid it only fills what is still
// missing; under ExtremeAngleBased it also caps instants that fall too far
// into the night.
func nightPortions(times *[slotCount]float64, extreme *[slotCount]bool, m method.Method) {
	rise, set := times[slotSunrise], times[slotMaghrib]
	if math.IsNaN(rise) || math.IsNaN(set) {
		return
	}
	night := 24 - (set - rise)
	capAll := m.Extreme == method.ExtremeAngleBased

	fajrPortion := m.FajrAngle / 60 * night
	if t := times[slotFajr]; math.IsNaN(t) || (capAll && rise-t > fajrPortion) {
		times[slotFajr] = rise - fajrPortion
		extreme[slotFajr] = true
	}

	if m.IshaInterval > 0 {
		if !math.IsNaN(times[slotMaghrib]) {
			times[slotIsha] = times[slotMaghrib] + m.IshaInterval/60
			extreme[slotIsha] = extreme[slotMaghrib]
		}
		return
	}
	ishaPortion := m.IshaAngle / 60 * night
	if t := times[slotIsha]; math.IsNaN(t) || (capAll && t-set > ishaPortion) {
		times[slotIsha] = set + ishaPortion
		extreme[slotIsha] = true
	}
}

func anyInvalid(times [slotCount]float64) bool {
	for _, t := range times {
		if math.IsNaN(t) {
			return true
		}
	}
	return false
}

// raw computes every slot in local hours. Slots whose angle is never reached are NaN.
func raw(loc Location, m method.Method, date time.Time) [slotCount]float64 {
	y, mo, d := date.Date()
	jd := julian(y, int(mo), d) - loc.Longitude/(15*24)
	day := solarDay{jd: jd, lat: loc.Latitude}

	riseSet := riseSetAngle(loc)
	times := [slotCount]float64{5, 6, 12, 13, 18, 18}

	for n := 0; n < iterations; n++ {
		var t [slotCount]float64
		for i := range times {
			t[i] = dayPortion(times[i])
		}
		next := [slotCount]float64{
			slotFajr:    day.angleTime(m.FajrAngle, t[slotFajr], true),
			slotSunrise: day.angleTime(riseSet, t[slotSunrise], true),
			slotDhuhr:   day.midDay(t[slotDhuhr]),
			slotAsr:     day.asrTime(m.Mathhab.ShadowFactor(), t[slotAsr]),
			slotMaghrib: day.angleTime(riseSet, t[slotMaghrib], false),
			slotIsha:    day.angleTime(m.IshaAngle, t[slotIsha], false),
		}
		times = next
	}

	shift := loc.UTCOffset - loc.Longitude/15
	for i := range times {
		times[i] += shift
	}
	if m.IshaInterval > 0 {
		times[slotIsha] = times[slotMaghrib] + m.IshaInterval/60
	}
	return times
}

// dayPortion turns an hour estimate into a fraction of the day, keeping NaN
// estimates at a neutral position so later iterations still converge.
func dayPortion(h float64) float64 {
	if math.IsNaN(h) {
		h = 12
	}
	return fixHour(h) / 24
}

// riseSetAngle is the depression of the sun's centre at apparent sunrise:
// semi-diameter, refraction scaled to local conditions, and horizon dip.
func riseSetAngle(loc Location) float64 {
	refraction := standardRefraction
	if loc.Pressure > 0 {
		refraction *= (loc.Pressure / standardPressure) * (283 / (273 + loc.Temperature))
	}
	return solarSemiDiameter + refraction + elevationDipPerRoot*math.Sqrt(loc.Elevation)
}

type solarDay struct {
	jd  float64
	lat float64
}

// position returns the sun's declination and the equation of time at a day fraction.
func (s solarDay) position(t float64) (decl, eqt float64) {
	d := s.jd + t - 2451545.0
	g := fixAngle(357.529 + 0.98560028*d)
	q := fixAngle(280.459 + 0.98564736*d)
	l := fixAngle(q + 1.915*dsin(g) + 0.020*dsin(2*g))
	e := 23.439 - 0.00000036*d

	ra := darctan2(dcos(e)*dsin(l), dcos(l)) / 15
	eqt = q/15 - fixHour(ra)
	decl = darcsin(dsin(e) * dsin(l))
	return decl, eqt
}

func (s solarDay) midDay(t float64) float64 {
	_, eqt := s.position(t)
	return fixHour(12 - eqt)
}

// angleTime is when the sun is angle degrees below the horizon, before noon
// when morning is set. It is NaN if the sun never reaches that angle.
func (s solarDay) angleTime(angle, t float64, morning bool) float64 {
	decl, _ := s.position(t)
	noon := s.midDay(t)
	cosT := (-dsin(angle) - dsin(decl)*dsin(s.lat)) / (dcos(decl) * dcos(s.lat))
	if cosT < -1 || cosT > 1 || math.IsNaN(cosT) {
		return math.NaN()
	}
	span := darccos(cosT) / 15
	if morning {
		return noon - span
	}
	return noon + span
}

func (s solarDay) asrTime(factor, t float64) float64 {
	decl, _ := s.position(t)
	angle := -darccot(factor + dtan(math.Abs(s.lat-decl)))
	return s.angleTime(angle, t, false)
}

func julian(year, month, day int) float64 {
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + float64(day) + b - 1524.5
}

// round converts local hours to a TimeOfDay under the rounding policy.
func round(hours float64, r method.Rounding, sunrise, extreme bool) TimeOfDay {
	total := int(math.Floor(hours*3600 + 1e-6))
	secs := total - floorDiv(total, 60)*60
	minutes := total - secs

	switch r {
	case method.RoundNone:
		return Clock(total, extreme)
	case method.RoundNormal:
		if secs >= 30 {
			minutes += 60
		}
	case method.RoundSpecial:
		if !sunrise && secs >= 30 {
			minutes += 60
		}
	case method.RoundAggressive:
		if !sunrise && secs >= 1 {
			minutes += 60
		}
	}
	return Clock(minutes, extreme)
}
