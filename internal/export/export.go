// Package export renders prayer schedules as an iCalendar feed.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/prayer"
)

const (
	prodID      = "-//athan//Prayer Times//EN"
	uidDomain   = "athan"
	eventLength = 10 * time.Minute

	// stubCalendar is returned when there is nothing to export, so clients
	// still receive a valid feed.
	stubCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"
)

// Options controls the generated calendar.
type Options struct {
	// Name is shown by clients as the calendar title.
	Name string
	// LeadMinutes adds a second reminder this long before each prayer.
	LeadMinutes int
	// Labeler names periods and lead reminders. Defaults to English.
	Labeler alarm.Labeler
	// Now stamps every event.
	Now time.Time
}

// Calendar builds a VCALENDAR with one event per period of each schedule.
// Notified periods carry a DISPLAY alarm at the prayer time and, when
// LeadMinutes is positive, another one before it.
func Calendar(schedules []*prayer.Schedule, opts Options) ([]byte, error) {
	labeler := opts.Labeler
	if labeler == nil {
		labeler = alarm.EnglishLabeler{}
	}
	name := opts.Name
	if name == "" {
		name = "Prayer Times"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText("X-WR-CALNAME", name)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	dtStamp := ical.NewProp(ical.PropDateTimeStamp)
	dtStamp.SetDateTime(now.UTC())

	for _, s := range schedules {
		if s == nil {
			continue
		}
		for p := prayer.Fajr; p <= prayer.Ishaa; p++ {
			event := newEvent(s, p, labeler, opts.LeadMinutes)
			event.Props.Set(dtStamp)
			cal.Children = append(cal.Children, event.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(stubCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	log.Debug().Int("events", len(cal.Children)).Msg("calendar exported")
	return buf.Bytes(), nil
}

func newEvent(s *prayer.Schedule, p prayer.Period, labeler alarm.Labeler, leadMinutes int) *ical.Event {
	at := s.Time(p)
	summary := labeler.PeriodName(p)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s@%s", at.Format("20060102"), p.Key(), uidDomain))
	event.Props.SetText(ical.PropSummary, summary)
	if s.Extremes[p] {
		event.Props.SetText(ical.PropDescription, "Estimated for high latitude")
	}

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDateTime(at.UTC())
	event.Props.Set(start)

	end := ical.NewProp(ical.PropDateTimeEnd)
	end.SetDateTime(at.Add(eventLength).UTC())
	event.Props.Set(end)

	if p == prayer.Sunrise {
		return event
	}
	addAlarm(event, "PT0M", summary)
	if leadMinutes > 0 {
		addAlarm(event, fmt.Sprintf("-PT%dM", leadMinutes), labeler.LeadLabel(p, leadMinutes))
	}
	return event
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	a := ical.NewComponent(ical.CompAlarm)
	a.Props.SetText(ical.PropAction, "DISPLAY")
	a.Props.SetText(ical.PropDescription, description)

	// Set the value directly so no VALUE=TEXT parameter is written.
	triggerProp := ical.NewProp(ical.PropTrigger)
	triggerProp.Value = trigger
	a.Props.Set(triggerProp)

	event.Children = append(event.Children, a)
}
