package prayer

import (
	"fmt"
	"strings"
)

// Period marks the start of one part of the prayer day.
type Period int

const (
	Fajr Period = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Ishaa
	// NextFajr is the following day's Fajr, the right-hand bound of Ishaa.
	NextFajr
)

// PeriodCount is the number of slots in a Schedule.
const PeriodCount = 7

var periodNames = [PeriodCount]string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Ishaa", "NextFajr"}

// Periods lists the six periods of a single day in chronological order.
var Periods = []Period{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Ishaa}

// ShortNames maps periods to single-character abbreviations.
var ShortNames = map[Period]string{
	Fajr:     "F",
	Sunrise:  "S",
	Dhuhr:    "D",
	Asr:      "A",
	Maghrib:  "M",
	Ishaa:    "I",
	NextFajr: "F",
}

func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p]
}

// Valid reports whether p is one of the seven schedule slots.
func (p Period) Valid() bool {
	return p >= Fajr && p <= NextFajr
}

// DisplayName is the name shown to users. NextFajr is shown as Fajr.
func (p Period) DisplayName() string {
	if p == NextFajr {
		return periodNames[Fajr]
	}
	return p.String()
}

// Key is the lower-case identifier used in JSON output.
func (p Period) Key() string {
	if p == NextFajr {
		return "next_fajr"
	}
	return strings.ToLower(p.String())
}

// ParsePeriod finds a period by name, ignoring case. "Isha" is accepted for Ishaa.
func ParsePeriod(name string) (Period, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "isha":
		return Ishaa, nil
	case "next_fajr", "nextfajr":
		return NextFajr, nil
	}
	for i, candidate := range periodNames {
		if strings.ToLower(candidate) == n {
			return Period(i), nil
		}
	}
	return 0, fmt.Errorf("unknown prayer %q; valid names: %s", name, strings.Join(periodNames[:NextFajr], ", "))
}
