package geo

import (
	"context"
	"math"
	"sort"

	"github.com/smokyabdulrahman/athan/internal/method"
)

// regionBox is a coarse rectangle around a country.
type regionBox struct {
	code           string
	minLat, maxLat float64
	minLon, maxLon float64
}

func (b regionBox) contains(lat, lon float64) bool {
	if lat < b.minLat || lat > b.maxLat {
		return false
	}
	return lon >= b.minLon && lon <= b.maxLon
}

func (b regionBox) area() float64 {
	return (b.maxLat - b.minLat) * (b.maxLon - b.minLon)
}

// regions covers the countries the method catalog knows about, plus a few
// neighbours so that border areas do not fall into the wrong country. The
// slice is sorted smallest first so the tightest rectangle wins.
var regions = sortedRegions([]regionBox{
	{"US", 24.5, 49.4, -125.0, -66.9},
	{"US", 51.0, 71.5, -180.0, -129.9},
	{"US", 18.9, 22.3, -160.3, -154.8},
	{"CA", 41.7, 83.1, -141.0, -52.6},
	{"GB", 49.9, 60.9, -8.2, 1.8},
	{"IE", 51.4, 55.4, -10.5, -6.0},
	{"FR", 42.3, 51.1, -4.8, 8.2},
	{"BE", 49.5, 51.5, 2.5, 6.4},
	{"NL", 50.75, 53.6, 3.3, 7.2},
	{"LU", 49.45, 50.2, 5.7, 6.55},
	{"DE", 47.3, 55.1, 5.9, 15.0},
	{"CH", 45.8, 47.8, 5.95, 10.5},
	{"AT", 46.4, 49.0, 9.5, 17.2},
	{"IT", 36.6, 47.1, 6.6, 18.5},
	{"ES", 36.0, 43.8, -9.3, 3.3},
	{"PT", 36.9, 42.2, -9.5, -6.2},
	{"DK", 54.5, 57.8, 8.0, 12.7},
	{"SE", 55.3, 69.1, 11.1, 24.2},
	{"NO", 57.9, 71.2, 4.6, 31.1},
	{"FI", 59.8, 70.1, 20.5, 31.6},
	{"IS", 63.3, 66.6, -24.5, -13.5},
	{"GR", 34.8, 41.8, 19.4, 28.3},
	{"CY", 34.5, 35.7, 32.2, 34.6},
	{"SA", 16.3, 32.2, 34.5, 55.7},
	{"AE", 22.6, 26.1, 51.6, 56.4},
	{"EG", 22.0, 31.7, 24.7, 36.9},
	{"SY", 32.3, 37.3, 35.7, 42.4},
	{"IQ", 29.1, 37.4, 38.8, 48.6},
	{"JO", 29.2, 33.4, 34.9, 39.3},
	{"LB", 33.05, 34.7, 35.1, 36.6},
	{"PS", 31.2, 32.6, 34.2, 35.6},
	{"TR", 35.8, 42.1, 26.0, 44.8},
	{"IR", 25.0, 39.8, 44.0, 63.3},
	{"MY", 0.85, 7.4, 99.6, 119.3},
	{"SG", 1.15, 1.47, 103.6, 104.1},
	{"BN", 4.0, 5.05, 114.0, 115.4},
	{"PK", 23.6, 37.1, 60.9, 77.8},
	{"IN", 6.7, 35.5, 68.1, 97.4},
	{"BD", 20.7, 26.6, 88.0, 92.7},
	{"AF", 29.4, 38.5, 60.5, 74.9},
})

func sortedRegions(in []regionBox) []regionBox {
	sort.SliceStable(in, func(i, j int) bool { return in[i].area() < in[j].area() })
	return in
}

// Offline resolves country codes from a built-in table of rectangles. It
// needs no network and never fails, but it is coarse near borders.
type Offline struct{}

var _ method.Geocoder = Offline{}

func (Offline) CountryCode(_ context.Context, lat, lon float64) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return "", nil
	}
	for _, r := range regions {
		if r.contains(lat, lon) {
			return r.code, nil
		}
	}
	return "", nil
}
