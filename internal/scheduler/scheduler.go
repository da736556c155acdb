package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/prayer"
)

// Scheduler keeps a registry filled with the alarms of the current day.
type Scheduler struct {
	Settings SettingsStore
	// Engines maps engine names to implementations. The solar engine is
	// used when the configured name is missing.
	Engines  map[string]prayer.Engine
	Planner  *alarm.Planner
	Registry alarm.Registry
	Resolver *method.Resolver
	Clock    prayer.Clock

	refreshMu sync.Mutex

	mu        sync.Mutex
	last      *prayer.Schedule
	resolved  *int
	resolving bool

	wg sync.WaitGroup
}

// New creates a Scheduler using the solar engine and the wall clock.
func New(settings SettingsStore, reg alarm.Registry, planner *alarm.Planner, resolver *method.Resolver) *Scheduler {
	if planner == nil {
		planner = alarm.NewPlanner(nil)
	}
	return &Scheduler{
		Settings: settings,
		Engines:  map[string]prayer.Engine{config.EngineSolar: astro.NewSolar()},
		Planner:  planner,
		Registry: reg,
		Resolver: resolver,
		Clock:    prayer.RealClock{},
	}
}

// Snapshot reads the current settings. A method resolved in the background
// but not persisted is applied here.
func (s *Scheduler) Snapshot() (Snapshot, error) {
	snap, err := ReadSnapshot(s.Settings, s.Clock.Now())
	if err != nil {
		return snap, err
	}
	if !snap.MethodSet {
		s.mu.Lock()
		if s.resolved != nil {
			snap.MethodIndex = *s.resolved
			snap.MethodSet = true
		}
		s.mu.Unlock()
	}
	return snap, nil
}

// Display returns the configured zone and clock format, or a nil zone when
// no location is set.
func (s *Scheduler) Display() (*time.Location, string) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, ""
	}
	return snap.Location.Zone(), snap.TimeFormat
}

// Calculator returns a calculator for the engine named in snap.
func (s *Scheduler) Calculator(snap Snapshot) *prayer.Calculator {
	e, ok := s.Engines[snap.Engine]
	if !ok {
		if snap.Engine != config.EngineSolar {
			log.Warn().Str("engine", snap.Engine).Msg("engine unavailable, using solar")
		}
		e, ok = s.Engines[config.EngineSolar]
		if !ok {
			e = astro.NewSolar()
		}
	}
	return &prayer.Calculator{Engine: e, Clock: s.Clock}
}

// ScheduleFor computes the schedule of the civil date of date.
func (s *Scheduler) ScheduleFor(snap Snapshot, date time.Time) (*prayer.Schedule, error) {
	return s.Calculator(snap).CalculateDate(
		snap.Location, snap.MethodIndex, snap.RoundingIndex, snap.OffsetMinutes,
		date.In(snap.Location.Zone()),
	)
}

// Today computes the schedule of the current day.
func (s *Scheduler) Today(snap Snapshot) (*prayer.Schedule, error) {
	return s.Calculator(snap).Calculate(snap.Location, snap.MethodIndex, snap.RoundingIndex, snap.OffsetMinutes)
}

// Last returns the schedule of the most recent successful Refresh.
func (s *Scheduler) Last() *prayer.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Refresh computes today's schedule, plans its alarms and applies them to
// the registry. Without a configured location every alarm is cancelled and
// ErrMissingLocation is returned. When no method is stored the default is
// used and the method is resolved from the location in the background;
// Refresh runs again once it is known.
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := s.Snapshot()
	if errors.Is(err, ErrMissingLocation) {
		if s.Registry != nil {
			if cerr := alarm.Apply(ctx, s.Registry, nil); cerr != nil {
				log.Error().Err(cerr).Msg("failed to cancel alarms")
			}
		}
		s.setLast(nil)
		return err
	}
	if err != nil {
		return err
	}

	sched, err := s.Today(snap)
	if err != nil {
		return err
	}
	s.setLast(sched)

	if s.Registry != nil {
		events := s.Planner.Plan(sched, snap.LeadMinutes)
		if err := alarm.Apply(ctx, s.Registry, events); err != nil {
			return fmt.Errorf("failed to schedule alarms: %w", err)
		}
		log.Info().
			Int("alarms", len(events)).
			Int("method", snap.MethodIndex).
			Str("next", sched.Next.Key()).
			Msg("alarms scheduled")
	}

	if !snap.MethodSet {
		s.resolveInBackground(ctx, snap)
	}
	return nil
}

func (s *Scheduler) setLast(sched *prayer.Schedule) {
	s.mu.Lock()
	s.last = sched
	s.mu.Unlock()
}

func (s *Scheduler) resolveInBackground(ctx context.Context, snap Snapshot) {
	if s.Resolver == nil || s.Resolver.Geocoder == nil {
		return
	}
	s.mu.Lock()
	if s.resolving {
		s.mu.Unlock()
		return
	}
	s.resolving = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.resolving = false
			s.mu.Unlock()
		}()

		idx := s.Resolver.ResolveFromLocation(ctx, snap.Location.Latitude, snap.Location.Longitude)
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		s.resolved = &idx
		s.mu.Unlock()

		if w, ok := s.Settings.(SettingsWriter); ok {
			if err := w.SetString(config.KeyMethod, strconv.Itoa(idx)); err != nil {
				log.Warn().Err(err).Int("method", idx).Msg("failed to save resolved method")
			}
		}
		if err := s.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("refresh after method resolution failed")
		}
	}()
}

// Wait blocks until background method resolution has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
