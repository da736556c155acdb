package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/display"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for several days (default 7)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// parseDays parses a positive day count, also accepting "week" and "month".
func parseDays(raw string, def int) (int, error) {
	switch raw {
	case "":
		return def, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer, 'week' or 'month')", raw)
	}
	return n, nil
}

// dayRange computes n consecutive schedules starting today.
func (a *app) dayRange(cmd *cobra.Command, n int) (scheduler.Snapshot, []*prayer.Schedule, time.Time, error) {
	snap, err := a.snapshot(cmd.Context())
	if err != nil {
		return snap, nil, time.Time{}, calcErr(err)
	}
	now := a.sched.Clock.Now().In(snap.Location.Zone())
	days, err := a.sched.Calculator(snap).CalculateDays(snap.Location, snap.MethodIndex, snap.RoundingIndex, snap.OffsetMinutes, now, n)
	if err != nil {
		return snap, nil, now, calcErr(err)
	}
	return snap, days, now, nil
}

// runList is the handler for the list subcommands.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	days, err := parseDays(raw, defaultDays)
	if err != nil {
		return err
	}

	a := newApp(cmd, nil)
	snap, schedules, now, err := a.dayRange(cmd, days)
	if err != nil {
		return err
	}

	if FlagJSON {
		out := listJSONOutput{Location: jsonLocation(snap), Method: schedules[0].Method.Name}
		for _, s := range schedules {
			out.Days = append(out.Days, listJSONDay{
				Date:    s.Date.Format("02 Jan 2006"),
				Hijri:   a.hijri(cmd.Context(), snap, s),
				Timings: timingsMap(s, snap.TimeFormat),
			})
		}
		return printJSON(out)
	}

	names := translatorFor(a.settings)

	fmt.Println()
	fmt.Printf("  %s\n", display.Bold(fmt.Sprintf("Prayer Times, %d Days", days)))
	fmt.Println()
	fmt.Printf("  %s\n", locationLabel(snap))
	fmt.Printf("  %s\n", display.Gray(schedules[0].Method.Name))
	fmt.Println()

	headers := []string{"Date"}
	for _, p := range prayer.Periods {
		headers = append(headers, names.PeriodName(p))
	}
	tbl := display.NewTable(headers)

	todayStr := now.Format("2006-01-02")
	for i, s := range schedules {
		if hasExtreme(s) {
			tbl.SetFootnote(extremeNote)
		}
		row := []string{s.Date.Format("Mon 02 Jan")}
		for _, p := range prayer.Periods {
			row = append(row, s.Format(p, snap.TimeFormat))
		}
		tbl.AddRow(row)

		// Highlight today's row.
		if s.Date.Format("2006-01-02") == todayStr {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri,omitempty"`
	Timings map[string]string `json:"timings"`
}
