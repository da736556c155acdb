// Package notify delivers due alarms and keeps them scheduled.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notification is what a user sees when an alarm fires.
type Notification struct {
	ID       int       `json:"id"`
	Kind     string    `json:"kind"`
	Period   string    `json:"period"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PrayerAt time.Time `json:"prayer_at"`
	FiredAt  time.Time `json:"fired_at"`
}

// Notifier shows and removes notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	// Dismiss removes a notification previously shown under id, if any.
	Dismiss(ctx context.Context, id int) error
}

// LogNotifier writes notifications to the global logger.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Info().
		Int("alarm_id", n.ID).
		Str("period", n.Period).
		Str("kind", n.Kind).
		Time("prayer_at", n.PrayerAt).
		Msgf("%s: %s", n.Title, n.Body)
	return nil
}

func (LogNotifier) Dismiss(_ context.Context, id int) error {
	log.Debug().Int("alarm_id", id).Msg("notification dismissed")
	return nil
}

// Multi fans out to several notifiers. Every notifier is tried; the first
// error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Dismiss(ctx context.Context, id int) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Dismiss(ctx, id); err != nil && first == nil {
			first = err
		}
	}
	return first
}
