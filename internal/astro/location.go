// Package astro computes solar prayer times from first principles.
package astro

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidLocation is returned for coordinates outside the valid ranges.
var ErrInvalidLocation = errors.New("invalid location")

// Location is an observer on the Earth's surface with a fixed UTC offset.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Elevation is metres above sea level, never negative.
	Elevation float64 `json:"elevation"`
	// Pressure in hPa. Zero means the standard atmosphere.
	Pressure float64 `json:"pressure"`
	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`
	// UTCOffset in hours, possibly fractional.
	UTCOffset float64 `json:"utc_offset"`
}

// NewLocation builds a Location, clamping a negative elevation to zero.
func NewLocation(lat, lon, elevation, pressure, temperature, utcOffset float64) Location {
	if elevation < 0 || math.IsNaN(elevation) {
		elevation = 0
	}
	return Location{
		Latitude:    lat,
		Longitude:   lon,
		Elevation:   elevation,
		Pressure:    pressure,
		Temperature: temperature,
		UTCOffset:   utcOffset,
	}
}

// Validate checks that the coordinates are on the globe.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidLocation, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// Zone returns a fixed time zone for the location's UTC offset.
func (l Location) Zone() *time.Location {
	secs := int(math.Round(l.UTCOffset * 3600))
	return time.FixedZone(ZoneName(l.UTCOffset), secs)
}

// ZoneName formats an hour offset as "UTC+3", "UTC-8" or "UTC+5:30".
func ZoneName(offset float64) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	mins := int(math.Round(offset * 60))
	if mins%60 == 0 {
		return fmt.Sprintf("UTC%s%d", sign, mins/60)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, mins/60, mins%60)
}

// TimeOfDay is an instant relative to local midnight of the computed date.
// Hour may exceed 23 or be negative when the instant falls on a neighbouring day.
type TimeOfDay struct {
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Second  int  `json:"second"`
	Extreme bool `json:"extreme,omitempty"`
}

// Duration returns the offset from local midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Clock builds a TimeOfDay from a whole number of seconds after midnight.
func Clock(seconds int, extreme bool) TimeOfDay {
	h := floorDiv(seconds, 3600)
	rem := seconds - h*3600
	return TimeOfDay{Hour: h, Minute: rem / 60, Second: rem % 60, Extreme: extreme}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

const (
	kaabaLatitude  = 21.4225
	kaabaLongitude = 39.8262
)

// Qibla returns the direction of the Kaaba in degrees clockwise from true north.
func Qibla(l Location) float64 {
	lat := rad(l.Latitude)
	dLon := rad(kaabaLongitude - l.Longitude)
	y := math.Sin(dLon)
	x := math.Cos(lat)*math.Tan(rad(kaabaLatitude)) - math.Sin(lat)*math.Cos(dLon)
	return fixAngle(deg(math.Atan2(y, x)))
}
