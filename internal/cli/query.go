package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/display"
	"github.com/smokyabdulrahman/athan/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Ishaa",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	p, err := prayer.ParsePeriod(args[0])
	if err != nil {
		return err
	}
	if p == prayer.NextFajr {
		p = prayer.Fajr
	}

	days, err := parseDays(flagQueryDays, 1)
	if err != nil {
		return fmt.Errorf("invalid --days value: %w", err)
	}

	a := newApp(cmd, nil)
	snap, schedules, now, err := a.dayRange(cmd, days)
	if err != nil {
		return err
	}
	name := translatorFor(a.settings).PeriodName(p)

	// Single day: one line.
	if days == 1 {
		s := schedules[0]
		if FlagJSON {
			return printJSON(queryJSONSingle{
				Prayer: p.Key(),
				Time:   s.Format(p, snap.TimeFormat),
				Date:   s.Date.Format("02 Jan 2006"),
				Hijri:  a.hijri(cmd.Context(), snap, s),
			})
		}
		fmt.Printf("%s %s\n", name, s.Format(p, snap.TimeFormat))
		return nil
	}

	if FlagJSON {
		out := queryJSONMulti{Location: jsonLocation(snap), Prayer: p.Key()}
		for _, s := range schedules {
			out.Days = append(out.Days, queryJSONDay{
				Date:  s.Date.Format("02 Jan 2006"),
				Hijri: a.hijri(cmd.Context(), snap, s),
				Time:  s.Format(p, snap.TimeFormat),
			})
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Printf("  %s\n", display.Bold(fmt.Sprintf("%s Times, %d Days", name, days)))
	fmt.Println()
	fmt.Printf("  %s\n", locationLabel(snap))
	fmt.Println()

	tbl := display.NewTable([]string{"Date", name})
	todayStr := now.Format("2006-01-02")
	for i, s := range schedules {
		if s.Extremes[p] {
			tbl.SetFootnote(extremeNote)
		}
		tbl.AddRow([]string{s.Date.Format("Mon 02 Jan"), s.Format(p, snap.TimeFormat)})
		if s.Date.Format("2006-01-02") == todayStr {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Hijri  string `json:"hijri,omitempty"`
}

type queryJSONMulti struct {
	Location todayJSONLocation `json:"location"`
	Prayer   string            `json:"prayer"`
	Days     []queryJSONDay    `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri,omitempty"`
	Time  string `json:"time"`
}
