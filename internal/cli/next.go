package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nSuitable for status bars.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: "+strings.Join(prayer.Modes(), ", ")+", or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track, e.g. fajr,dhuhr,asr")

	return cmd
}

// parsePrayers turns a comma-separated list into a set of periods. An empty
// list selects every period.
func parsePrayers(raw string) (map[prayer.Period]bool, error) {
	selected := make(map[prayer.Period]bool)
	if strings.TrimSpace(raw) == "" {
		for _, p := range prayer.Periods {
			selected[p] = true
		}
		return selected, nil
	}
	for _, name := range strings.Split(raw, ",") {
		p, err := prayer.ParsePeriod(name)
		if err != nil {
			return nil, err
		}
		if p == prayer.NextFajr {
			p = prayer.Fajr
		}
		selected[p] = true
	}
	return selected, nil
}

func runNext(cmd *cobra.Command, args []string) error {
	selected, err := parsePrayers(flagPrayers)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a := newApp(cmd, nil)
	snap, sched, err := a.today(ctx)
	if err != nil {
		return err
	}
	now := a.sched.Clock.Now().In(snap.Location.Zone())
	names := translatorFor(a.settings)

	var next *prayer.Prayer
	for p := sched.NextAt(now); p < prayer.NextFajr; p++ {
		if selected[p] {
			pr := sched.Prayer(p)
			next = &pr
			break
		}
	}

	// Nothing selected is left today; look at tomorrow.
	if next == nil {
		tomorrow, err := a.sched.ScheduleFor(snap, sched.Date.AddDate(0, 0, 1))
		if err != nil {
			return calcErr(err)
		}
		for _, p := range prayer.Periods {
			if selected[p] {
				pr := tomorrow.Prayer(p)
				next = &pr
				break
			}
		}
	}

	if next == nil {
		return fmt.Errorf("could not determine next prayer")
	}
	next.Name = names.PeriodName(next.Period)

	fmt.Print(prayer.FormatOutput(*next, now, flagFormat, prayer.Layout(snap.TimeFormat)))
	return nil
}
