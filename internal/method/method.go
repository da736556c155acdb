// Package method holds the fixed catalog of prayer-time calculation methods
// and the heuristic that maps a country to its customary method.
package method

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidMethodIndex is returned when a method index falls outside the catalog.
	ErrInvalidMethodIndex = errors.New("invalid calculation method index")
	// ErrInvalidRoundingIndex is returned when a rounding index is not one of the known policies.
	ErrInvalidRoundingIndex = errors.New("invalid rounding type index")
)

// Mathhab is the jurisprudential school. It decides the shadow length used for Asr.
type Mathhab int

const (
	Shaafi Mathhab = iota
	Hanafi
)

// ShadowFactor returns the object-to-shadow ratio that marks the start of Asr.
func (m Mathhab) ShadowFactor() float64 {
	if m == Hanafi {
		return 2
	}
	return 1
}

func (m Mathhab) String() string {
	if m == Hanafi {
		return "Hanafi"
	}
	return "Shaafi"
}

// ExtremePolicy selects how an instant is approximated when the sun never
// reaches the required angle on that date.
type ExtremePolicy int

const (
	// ExtremeGoodInvalid recomputes only the invalid instants at NearestLatitude.
	ExtremeGoodInvalid ExtremePolicy = iota
	// ExtremeAngleBased derives invalid twilight instants from a fraction of the night.
	ExtremeAngleBased
)

// Rounding controls how fractional seconds of a computed instant become minutes.
type Rounding int

const (
	RoundNone Rounding = iota
	RoundNormal
	// RoundSpecial rounds like RoundNormal but always rounds sunrise down.
	RoundSpecial
	// RoundAggressive rounds up on any leftover second, except sunrise which is rounded down.
	RoundAggressive
)

var roundingNames = [...]string{"none", "normal", "special", "aggressive"}

func (r Rounding) String() string {
	if r < 0 || int(r) >= len(roundingNames) {
		return "Rounding(" + strconv.Itoa(int(r)) + ")"
	}
	return roundingNames[r]
}

// RoundingTypes lists the rounding policies by their persisted index.
var RoundingTypes = []Rounding{RoundNone, RoundNormal, RoundSpecial, RoundAggressive}

// DefaultRoundingIndex is used when no rounding preference has been stored.
const DefaultRoundingIndex = 2

// Method describes one calculation convention.
type Method struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	FajrAngle float64 `json:"fajr_angle"`
	// IshaAngle is ignored when IshaInterval is non-zero.
	IshaAngle float64 `json:"isha_angle"`
	// IshaInterval is the fixed number of minutes between Maghrib and Isha.
	IshaInterval float64 `json:"isha_interval,omitempty"`

	Mathhab         Mathhab       `json:"mathhab"`
	Extreme         ExtremePolicy `json:"extreme"`
	NearestLatitude float64       `json:"nearest_latitude"`
	Rounding        Rounding      `json:"rounding"`

	// Aladhan is the equivalent method id of the Al Adhan API.
	Aladhan int `json:"aladhan"`

	countries []string
}

// WithRounding returns a copy of m using the rounding policy stored at index.
func (m Method) WithRounding(index int) (Method, error) {
	if index < 0 || index >= len(RoundingTypes) {
		return Method{}, fmt.Errorf("%w: %d", ErrInvalidRoundingIndex, index)
	}
	m.Rounding = RoundingTypes[index]
	return m, nil
}

// CountryCodes returns the ISO 3166-1 alpha-2 codes where m is customary.
func (m Method) CountryCodes() []string {
	out := make([]string, len(m.countries))
	copy(out, m.countries)
	return out
}

// Uses reports whether m is customary in the given country.
func (m Method) Uses(countryCode string) bool {
	for _, c := range m.countries {
		if c == countryCode {
			return true
		}
	}
	return false
}
