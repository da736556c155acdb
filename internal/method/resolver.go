package method

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Resolve maps an ISO country code to the index of its customary method.
// Rows are checked in catalog order and the first match wins. An empty or
// unknown code yields DefaultIndex.
func Resolve(countryCode string) int {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return DefaultIndex
	}
	for i := range catalog {
		if catalog[i].Uses(code) {
			return i
		}
	}
	return DefaultIndex
}

// Geocoder turns coordinates into an ISO 3166-1 alpha-2 country code.
// An empty code with a nil error means the point has no known country.
type Geocoder interface {
	CountryCode(ctx context.Context, lat, lon float64) (string, error)
}

// Resolver picks a method for a location through a Geocoder.
type Resolver struct {
	Geocoder Geocoder
}

// NewResolver creates a Resolver backed by g.
func NewResolver(g Geocoder) *Resolver {
	return &Resolver{Geocoder: g}
}

// ResolveFromLocation reverse-geocodes the point and resolves its method.
// It never fails: a missing geocoder, a lookup error, an empty answer or a
// cancelled context all yield DefaultIndex.
func (r *Resolver) ResolveFromLocation(ctx context.Context, lat, lon float64) int {
	if r == nil || r.Geocoder == nil {
		return DefaultIndex
	}

	type answer struct {
		code string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		code, err := r.Geocoder.CountryCode(ctx, lat, lon)
		ch <- answer{code, err}
	}()

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("method resolution abandoned")
		return DefaultIndex
	case a := <-ch:
		if a.err != nil {
			log.Warn().Err(a.err).
				Float64("lat", lat).
				Float64("lon", lon).
				Msg("geocoding unavailable, using default method")
			return DefaultIndex
		}
		idx := Resolve(a.code)
		log.Debug().Str("country", a.code).Int("method", idx).Msg("resolved calculation method")
		return idx
	}
}
