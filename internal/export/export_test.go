package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/athan/internal/prayer"
)

func fixedSchedule(day time.Time) *prayer.Schedule {
	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
	}
	s := &prayer.Schedule{Date: at(0, 0)}
	s.Times = [prayer.PeriodCount]time.Time{
		at(5, 0), at(6, 30), at(12, 15), at(15, 45), at(18, 10), at(19, 40),
		at(5, 1).AddDate(0, 0, 1),
	}
	return s
}

func decode(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestCalendar_EventsAndAlarms(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	data, err := Calendar([]*prayer.Schedule{fixedSchedule(day), fixedSchedule(day.AddDate(0, 0, 1))}, Options{
		Name:        "Makkah",
		LeadMinutes: 15,
		Now:         day,
	})
	require.NoError(t, err)

	cal := decode(t, data)
	name, err := cal.Props.Text("X-WR-CALNAME")
	require.NoError(t, err)
	assert.Equal(t, "Makkah", name)

	events := cal.Events()
	require.Len(t, events, 12)

	first := events[0]
	uid, _ := first.Props.Text(ical.PropUID)
	assert.Equal(t, "20260312-fajr@athan", uid)
	summary, _ := first.Props.Text(ical.PropSummary)
	assert.Equal(t, "Fajr", summary)
	start, err := first.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 12, 5, 0, 0, 0, time.UTC), start)

	require.Len(t, first.Children, 2)
	assert.Equal(t, "PT0M", first.Children[0].Props.Get(ical.PropTrigger).Value)
	assert.Equal(t, "-PT15M", first.Children[1].Props.Get(ical.PropTrigger).Value)
	lead, _ := first.Children[1].Props.Text(ical.PropDescription)
	assert.Equal(t, "Fajr (in 15 minutes)", lead)

	sunrise := events[1]
	assert.Empty(t, sunrise.Children, "sunrise is not notified")
}

func TestCalendar_NoLeadReminder(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	data, err := Calendar([]*prayer.Schedule{fixedSchedule(day)}, Options{Now: day})
	require.NoError(t, err)

	events := decode(t, data).Events()
	require.Len(t, events, 6)
	for _, ev := range events {
		assert.LessOrEqual(t, len(ev.Children), 1)
	}
	assert.NotContains(t, string(data), "-PT")
}

func TestCalendar_ExtremeFlag(t *testing.T) {
	day := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	s := fixedSchedule(day)
	s.Extremes[prayer.Ishaa] = true

	data, err := Calendar([]*prayer.Schedule{s}, Options{Now: day})
	require.NoError(t, err)

	events := decode(t, data).Events()
	desc, _ := events[prayer.Ishaa].Props.Text(ical.PropDescription)
	assert.Equal(t, "Estimated for high latitude", desc)
}

func TestCalendar_Empty(t *testing.T) {
	data, err := Calendar(nil, Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))
	assert.NotContains(t, string(data), "VEVENT")
}
