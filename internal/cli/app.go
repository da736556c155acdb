package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/api"
	"github.com/smokyabdulrahman/athan/internal/cache"
	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/geo"
	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

const resolveTimeout = 5 * time.Second

// app bundles the collaborators a command needs.
type app struct {
	settings *overlay
	cache    *cache.Cache
	aladhan  *api.Engine
	resolver *method.Resolver
	sched    *scheduler.Scheduler
}

// newApp wires the stores, engines and geocoders for cmd. reg may be nil
// for commands that do not schedule alarms.
func newApp(cmd *cobra.Command, reg alarm.Registry) *app {
	settings := effectiveSettings(cmd)

	// Cache init failure is non-fatal; we just skip caching.
	c, err := cache.New(settings.GetString(config.KeyCacheDir, ""))
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		c = nil
	}

	var geocoder method.Geocoder = geo.Chain{geo.NewNominatim(), geo.Offline{}}
	var responses api.ResponseCache
	if c != nil {
		geocoder = &cache.Geocoder{Next: geocoder, Cache: c}
		responses = c
	}
	resolver := method.NewResolver(geocoder)

	a := &app{
		settings: settings,
		cache:    c,
		aladhan:  api.NewEngine(api.NewClient(), responses),
		resolver: resolver,
	}

	planner := alarm.NewPlanner(translatorFor(settings))
	a.sched = scheduler.New(settings, reg, planner, resolver)
	a.sched.Engines[config.EngineAladhan] = a.aladhan
	return a
}

func translatorFor(s scheduler.SettingsStore) *locale.Translator {
	return locale.New(s.GetString(config.KeyLanguage, locale.DefaultLanguage))
}

// snapshot reads settings. When no method is stored it resolves one from
// the location for this run only.
func (a *app) snapshot(ctx context.Context) (scheduler.Snapshot, error) {
	snap, err := a.sched.Snapshot()
	if err != nil {
		return snap, err
	}
	if !snap.MethodSet {
		ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
		defer cancel()
		snap.MethodIndex = a.resolver.ResolveFromLocation(ctx, snap.Location.Latitude, snap.Location.Longitude)
	}
	return snap, nil
}

// today computes today's schedule with the effective settings.
func (a *app) today(ctx context.Context) (scheduler.Snapshot, *prayer.Schedule, error) {
	snap, err := a.snapshot(ctx)
	if err != nil {
		return snap, nil, calcErr(err)
	}
	sched, err := a.sched.Today(snap)
	if err != nil {
		return snap, nil, calcErr(err)
	}
	return snap, sched, nil
}

// hijri returns the Hijri date of sched when the Al Adhan engine is in use.
// Any failure yields "".
func (a *app) hijri(ctx context.Context, snap scheduler.Snapshot, sched *prayer.Schedule) string {
	if snap.Engine != config.EngineAladhan {
		return ""
	}
	s, err := a.aladhan.HijriDate(ctx, snap.Location, sched.Method, sched.Date)
	if err != nil {
		log.Debug().Err(err).Msg("hijri date unavailable")
		return ""
	}
	return s
}

// locationLabel builds a "City, Country" string, falling back to coordinates.
func locationLabel(snap scheduler.Snapshot) string {
	if snap.City != "" && snap.Country != "" {
		return snap.City + ", " + snap.Country
	}
	if snap.City != "" {
		return snap.City
	}
	return fmt.Sprintf("%.4f, %.4f", snap.Location.Latitude, snap.Location.Longitude)
}

// calcErr wraps a calculation failure, leaving ErrMissingLocation as is so
// its hint reaches the user unchanged.
func calcErr(err error) error {
	if errors.Is(err, scheduler.ErrMissingLocation) {
		return err
	}
	return fmt.Errorf("failed to calculate prayer times: %w", err)
}
