package prayer

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Display modes accepted by FormatOutput.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is what a custom template sees.
type FormatData struct {
	Name      string // localized name, e.g. "Asr"
	ShortName string // e.g. "A"
	Key       string // e.g. "asr"
	Time      string // "15:02" or "3:02 PM", with " *" when extreme
	Remaining string // e.g. "2h 15m"
	Hours     int
	Minutes   int
	Extreme   bool
}

type modeFunc func(d FormatData) string

var modes = []struct {
	name   string
	render modeFunc
}{
	{FormatTimeRemaining, func(d FormatData) string { return d.Remaining }},
	{FormatNextPrayerTime, func(d FormatData) string { return d.Time }},
	{FormatNameAndTime, func(d FormatData) string { return d.Name + " " + d.Time }},
	{FormatNameAndRemaining, func(d FormatData) string { return d.Name + " " + d.Remaining }},
	{FormatShortNameAndTime, func(d FormatData) string { return d.ShortName + " " + d.Time }},
	{FormatShortNameAndRemain, func(d FormatData) string { return d.ShortName + " " + d.Remaining }},
	{FormatFull, func(d FormatData) string { return fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining) }},
}

// Modes lists the built-in display modes in help order.
func Modes() []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.name
	}
	return out
}

func lookupMode(name string) (modeFunc, bool) {
	for _, m := range modes {
		if m.name == name {
			return m.render, true
		}
	}
	return nil, false
}

// NewFormatData collects the fields of p as seen at now. layout is a Go
// time layout, see Layout.
func NewFormatData(p Prayer, now time.Time, layout string) FormatData {
	d := TimeRemaining(p, now)
	if d < 0 {
		d = 0
	}
	t := p.Time.Format(layout)
	if p.Extreme {
		t += " *"
	}
	return FormatData{
		Name:      p.Name,
		ShortName: ShortNames[p.Period],
		Key:       p.Period.Key(),
		Time:      t,
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Extreme:   p.Extreme,
	}
}

// FormatOutput renders p in the given mode. A mode containing "{{" is a
// text/template over FormatData, e.g. "{{.Name}} in {{.Remaining}}".
// Unknown modes fall back to name-and-time; template errors are rendered
// inline as "template-err: ..." so a status bar shows them.
func FormatOutput(p Prayer, now time.Time, mode string, layout string) string {
	data := NewFormatData(p, now, layout)

	if strings.Contains(mode, "{{") {
		out, err := executeTemplate(mode, data)
		if err != nil {
			return "template-err: " + err.Error()
		}
		return out
	}

	render, ok := lookupMode(mode)
	if !ok {
		render, _ = lookupMode(FormatNameAndTime)
	}
	return render(data)
}

func executeTemplate(text string, data FormatData) (string, error) {
	t, err := template.New("format").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
