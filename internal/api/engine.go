package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/method"
)

// ErrUnsupportedOffset is returned for UTC offsets that are not whole hours;
// the API only accepts named zones.
var ErrUnsupportedOffset = errors.New("the Al Adhan engine needs a whole-hour UTC offset")

const defaultEngineTimeout = 15 * time.Second

// ResponseCache stores day responses between runs.
type ResponseCache interface {
	LoadTimings(date time.Time, q Query) *Response
	SaveTimings(date time.Time, q Query, resp *Response) error
}

// Engine computes prayer times by asking the Al Adhan API. Rounding and
// extreme-latitude handling are left to the API, so no time is ever
// flagged as extreme.
type Engine struct {
	Client  *Client
	Cache   ResponseCache
	Timeout time.Duration
}

// NewEngine creates an Engine. cache may be nil.
func NewEngine(c *Client, cache ResponseCache) *Engine {
	if c == nil {
		c = NewClient()
	}
	return &Engine{Client: c, Cache: cache, Timeout: defaultEngineTimeout}
}

// QueryFor builds the API query for a location and method.
func QueryFor(loc astro.Location, m method.Method) (Query, error) {
	tz, err := zoneName(loc.UTCOffset)
	if err != nil {
		return Query{}, err
	}
	school := 0
	if m.Mathhab == method.Hanafi {
		school = 1
	}
	return Query{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Method:    m.Aladhan,
		School:    school,
		Timezone:  tz,
	}, nil
}

// zoneName maps a whole-hour offset to its Etc zone. Etc zones carry the
// inverted sign: UTC+3 is Etc/GMT-3.
func zoneName(offset float64) (string, error) {
	if offset != math.Trunc(offset) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOffset, astro.ZoneName(offset))
	}
	h := int(offset)
	switch {
	case h == 0:
		return "UTC", nil
	case h > 0:
		return fmt.Sprintf("Etc/GMT-%d", h), nil
	default:
		return fmt.Sprintf("Etc/GMT+%d", -h), nil
	}
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout <= 0 {
		return defaultEngineTimeout
	}
	return e.Timeout
}

// Day returns the API response for the civil date of date, from the cache
// when possible. A miss fetches the whole month and caches every day.
func (e *Engine) Day(ctx context.Context, loc astro.Location, m method.Method, date time.Time) (*Response, error) {
	q, err := QueryFor(loc, m)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		if resp := e.Cache.LoadTimings(date, q); resp != nil {
			return resp, nil
		}
	}

	cal, err := e.Client.FetchCalendarByCoordinates(ctx, date.Year(), date.Month(), q)
	if err != nil {
		log.Debug().Err(err).Msg("calendar request failed, falling back to a single day")
		return e.fetchDay(ctx, date, q)
	}

	var found *Response
	for i := range cal.Data {
		day, err := cal.Data[i].Date.Gregorian.Day()
		if err != nil {
			continue
		}
		resp := &Response{Code: cal.Code, Status: cal.Status, Data: cal.Data[i]}
		if e.Cache != nil {
			_ = e.Cache.SaveTimings(day, q, resp)
		}
		if day.Day() == date.Day() {
			found = resp
		}
	}
	if found == nil {
		return e.fetchDay(ctx, date, q)
	}
	return found, nil
}

func (e *Engine) fetchDay(ctx context.Context, date time.Time, q Query) (*Response, error) {
	resp, err := e.Client.FetchByCoordinates(ctx, date, q)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		_ = e.Cache.SaveTimings(date, q, resp)
	}
	return resp, nil
}

// ComputeDay implements prayer.Engine.
func (e *Engine) ComputeDay(loc astro.Location, m method.Method, date time.Time) ([6]astro.TimeOfDay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout())
	defer cancel()

	var out [6]astro.TimeOfDay
	resp, err := e.Day(ctx, loc, m, date)
	if err != nil {
		return out, err
	}
	for i, raw := range resp.Data.Timings.Ordered() {
		tod, err := parseClock(raw)
		if err != nil {
			return out, err
		}
		out[i] = tod
	}
	return out, nil
}

// ComputeNextFajr implements prayer.Engine.
func (e *Engine) ComputeNextFajr(loc astro.Location, m method.Method, date time.Time) (astro.TimeOfDay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout())
	defer cancel()

	resp, err := e.Day(ctx, loc, m, date.AddDate(0, 0, 1))
	if err != nil {
		return astro.TimeOfDay{}, err
	}
	return parseClock(resp.Data.Timings.Fajr)
}

// HijriDate returns the Hijri date the API reports for date, e.g.
// "10 Shaʿbān 1447 AH".
func (e *Engine) HijriDate(ctx context.Context, loc astro.Location, m method.Method, date time.Time) (string, error) {
	resp, err := e.Day(ctx, loc, m, date)
	if err != nil {
		return "", err
	}
	return resp.Data.Date.Hijri.Format(), nil
}

// parseClock parses "HH:MM", ignoring a timezone suffix like " (BST)".
func parseClock(raw string) (astro.TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return astro.TimeOfDay{}, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return astro.TimeOfDay{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return astro.TimeOfDay{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return astro.TimeOfDay{}, fmt.Errorf("time out of range: %q", raw)
	}

	return astro.TimeOfDay{Hour: hour, Minute: min}, nil
}
