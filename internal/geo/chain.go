package geo

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/method"
)

// Chain asks each geocoder in turn and returns the first non-empty code.
// Errors are only returned when every geocoder failed.
type Chain []method.Geocoder

var _ method.Geocoder = Chain(nil)

func (c Chain) CountryCode(ctx context.Context, lat, lon float64) (string, error) {
	var errs []error
	for _, g := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := g.CountryCode(ctx, lat, lon)
		if err != nil {
			log.Debug().Err(err).Msg("geocoder failed, trying next")
			errs = append(errs, err)
			continue
		}
		if code != "" {
			return code, nil
		}
	}
	if len(errs) == len(c) && len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", nil
}
