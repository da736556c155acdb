// Package alarm plans prayer notifications and keeps them registered with an
// alarm facility.
package alarm

import (
	"context"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/athan/internal/prayer"
)

// LeadOffset separates reminder ids from at-time ids.
const LeadOffset = 10

// Kind distinguishes the prayer alarm from the reminder before it.
type Kind int

const (
	AtTime Kind = iota
	Lead
)

func (k Kind) String() string {
	if k == Lead {
		return "lead"
	}
	return "at-time"
}

// Event is one alarm to register.
type Event struct {
	ID     int           `json:"id"`
	Kind   Kind          `json:"kind"`
	Period prayer.Period `json:"period"`
	Label  string        `json:"label"`
	FireAt time.Time     `json:"fire_at"`
	// PrayerAt is the prayer instant. It differs from FireAt for reminders.
	PrayerAt time.Time `json:"prayer_at"`
}

// BaseID returns the id of the at-time alarm for p.
func BaseID(p prayer.Period) int { return int(p) }

// LeadID returns the id of the reminder for p.
func LeadID(p prayer.Period) int { return int(p) + LeadOffset }

// Decode splits an id into its period and kind.
func Decode(id int) (prayer.Period, Kind, bool) {
	kind := AtTime
	if id >= LeadOffset {
		kind = Lead
		id -= LeadOffset
	}
	p := prayer.Period(id)
	if p < prayer.Fajr || p > prayer.Ishaa || p == prayer.Sunrise {
		return 0, 0, false
	}
	return p, kind, true
}

// notified lists the periods that get alarms. Sunrise is not a prayer.
var notified = []prayer.Period{prayer.Fajr, prayer.Dhuhr, prayer.Asr, prayer.Maghrib, prayer.Ishaa}

// ReservedIDs returns every id the planner can emit.
func ReservedIDs() []int {
	ids := make([]int, 0, 2*len(notified))
	for _, p := range notified {
		ids = append(ids, BaseID(p))
	}
	for _, p := range notified {
		ids = append(ids, LeadID(p))
	}
	return ids
}

// Labeler names periods for alarm labels.
type Labeler interface {
	PeriodName(p prayer.Period) string
	LeadLabel(p prayer.Period, minutes int) string
}

// EnglishLabeler produces untranslated labels.
type EnglishLabeler struct{}

func (EnglishLabeler) PeriodName(p prayer.Period) string { return p.DisplayName() }

func (EnglishLabeler) LeadLabel(p prayer.Period, minutes int) string {
	return fmt.Sprintf("%s (in %d minutes)", p.DisplayName(), minutes)
}

// Planner turns a schedule into the set of alarms still ahead.
type Planner struct {
	Labeler Labeler
	Clock   prayer.Clock
}

// NewPlanner creates a Planner reading the wall clock.
func NewPlanner(l Labeler) *Planner {
	if l == nil {
		l = EnglishLabeler{}
	}
	return &Planner{Labeler: l, Clock: prayer.RealClock{}}
}

// Plan returns the alarms for s that fire after now, ordered by fire time.
// With leadMinutes > 0 each prayer also gets a reminder that many minutes
// earlier. Ids depend only on period and kind, so replanning is idempotent.
func (pl *Planner) Plan(s *prayer.Schedule, leadMinutes int) []Event {
	now := pl.Clock.Now()
	lead := time.Duration(leadMinutes) * time.Minute

	var events []Event
	for _, p := range notified {
		at := s.Times[p]
		if at.After(now) {
			events = append(events, Event{
				ID:       BaseID(p),
				Kind:     AtTime,
				Period:   p,
				Label:    pl.Labeler.PeriodName(p),
				FireAt:   at,
				PrayerAt: at,
			})
		}
		if leadMinutes <= 0 {
			continue
		}
		if fire := at.Add(-lead); fire.After(now) {
			events = append(events, Event{
				ID:       LeadID(p),
				Kind:     Lead,
				Period:   p,
				Label:    pl.Labeler.LeadLabel(p, leadMinutes),
				FireAt:   fire,
				PrayerAt: at,
			})
		}
	}

	sortEvents(events)
	return events
}

// OnDelivered returns the ids to dismiss once the alarm id has fired. An
// at-time alarm clears its own reminder and the alarm of the period just
// before it, with Fajr wrapping to Ishaa. For Dhuhr that is Sunrise's id,
// which is never registered. Reminders clear nothing.
func OnDelivered(id int) []int {
	p, kind, ok := Decode(id)
	if !ok || kind == Lead {
		return nil
	}
	return []int{LeadID(p), BaseID(previous(p))}
}

func previous(p prayer.Period) prayer.Period {
	if p == prayer.Fajr {
		return prayer.Ishaa
	}
	return p - 1
}

// Registry is an alarm facility addressed by id.
type Registry interface {
	Register(ctx context.Context, ev Event) error
	Cancel(ctx context.Context, id int) error
}

// Store is a Registry that can also report which alarms are due.
type Store interface {
	Registry
	// Due removes and returns the alarms whose fire time is at or before now.
	Due(ctx context.Context, now time.Time) ([]Event, error)
	// Pending returns every registered alarm ordered by fire time.
	Pending(ctx context.Context) ([]Event, error)
}

// Apply cancels every reserved id and registers events.
func Apply(ctx context.Context, reg Registry, events []Event) error {
	for _, id := range ReservedIDs() {
		if err := reg.Cancel(ctx, id); err != nil {
			return fmt.Errorf("cancel alarm %d: %w", id, err)
		}
	}
	for _, ev := range events {
		if err := reg.Register(ctx, ev); err != nil {
			return fmt.Errorf("register alarm %d: %w", ev.ID, err)
		}
	}
	return nil
}
