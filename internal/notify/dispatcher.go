package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/prayer"
)

const (
	// DefaultInterval is how often the dispatcher polls for due alarms.
	DefaultInterval = 15 * time.Second

	// maxDrift is the slack allowed between ticks before the wall clock is
	// considered to have jumped.
	maxDrift = time.Minute
)

// Texts provides notification wording.
type Texts interface {
	NotificationTitle() string
	NotificationBody(p prayer.Period) string
	LeadBody(p prayer.Period, at string) string
}

// Replanner recomputes the schedule and re-registers its alarms.
type Replanner interface {
	Refresh(ctx context.Context) error
}

// Display reports the zone and clock format currently configured. A nil
// zone means none is known yet.
type Display interface {
	Display() (*time.Location, string)
}

// Dispatcher fires due alarms from a Store. It replans when the civil date
// changes or the wall clock jumps, so alarms follow the new day or time.
type Dispatcher struct {
	Store     alarm.Store
	Notifier  Notifier
	Texts     Texts
	Replanner Replanner
	Clock     prayer.Clock
	Interval  time.Duration
	// Display is read on every tick. Location and TimeFormat are used
	// until it reports a zone.
	Display    Display
	Location   *time.Location
	TimeFormat string

	last   time.Time
	zone   *time.Location
	format string
}

func (d *Dispatcher) interval() time.Duration {
	if d.Interval <= 0 {
		return DefaultInterval
	}
	return d.Interval
}

func (d *Dispatcher) location() *time.Location {
	if d.zone != nil {
		return d.zone
	}
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d *Dispatcher) timeFormat() string {
	if d.zone != nil && d.format != "" {
		return d.format
	}
	return d.TimeFormat
}

func (d *Dispatcher) readDisplay() {
	if d.Display == nil {
		return
	}
	d.zone, d.format = d.Display.Display()
}

// Run replans once, then ticks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval())
	defer ticker.Stop()

	d.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick replans if needed and delivers every alarm that is due.
func (d *Dispatcher) Tick(ctx context.Context) {
	now := d.Clock.Now()
	d.readDisplay()
	if d.needsReplan(now) {
		d.replan(ctx)
		d.readDisplay()
	}
	d.last = now

	due, err := d.Store.Due(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to read due alarms")
		return
	}
	for _, ev := range due {
		d.deliver(ctx, ev, now)
	}
}

func (d *Dispatcher) needsReplan(now time.Time) bool {
	if d.last.IsZero() {
		return true
	}
	loc := d.location()
	y1, m1, d1 := d.last.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		log.Info().Msg("date changed, replanning alarms")
		return true
	}
	elapsed := now.Sub(d.last)
	if elapsed < 0 || elapsed > d.interval()+maxDrift {
		log.Info().Dur("elapsed", elapsed).Msg("clock jumped, replanning alarms")
		return true
	}
	return false
}

func (d *Dispatcher) replan(ctx context.Context) {
	if d.Replanner == nil {
		return
	}
	if err := d.Replanner.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to replan alarms")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev alarm.Event, now time.Time) {
	n := Notification{
		ID:       ev.ID,
		Kind:     ev.Kind.String(),
		Period:   ev.Period.Key(),
		PrayerAt: ev.PrayerAt,
		FiredAt:  now,
	}
	if ev.Kind == alarm.Lead {
		n.Title = ev.Label
		n.Body = d.Texts.LeadBody(ev.Period, ev.PrayerAt.In(d.location()).Format(prayer.Layout(d.timeFormat())))
	} else {
		n.Title = d.Texts.NotificationTitle()
		n.Body = d.Texts.NotificationBody(ev.Period)
	}

	if err := d.Notifier.Notify(ctx, n); err != nil {
		log.Error().Err(err).Int("alarm_id", ev.ID).Msg("failed to deliver notification")
		return
	}
	log.Debug().Int("alarm_id", ev.ID).Time("fire_at", ev.FireAt).Msg("alarm delivered")

	for _, id := range alarm.OnDelivered(ev.ID) {
		if err := d.Notifier.Dismiss(ctx, id); err != nil {
			log.Warn().Err(err).Int("alarm_id", id).Msg("failed to dismiss notification")
		}
	}
}
