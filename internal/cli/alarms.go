package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/display"
	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

var flagPending bool

func newAlarmsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "Show the alarms planned for today",
		Long:  "Show the alarms that would be registered for the rest of today.\nWith --pending, list the alarms held by the daemon's store instead\n(requires REDIS_ADDRESS).",
		Args:  cobra.NoArgs,
		RunE:  runAlarms,
	}
	cmd.Flags().BoolVar(&flagPending, "pending", false, "List alarms held in the redis store")
	return cmd
}

type alarmJSON struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	Prayer   string `json:"prayer"`
	Label    string `json:"label"`
	FireAt   string `json:"fire_at"`
	PrayerAt string `json:"prayer_at"`
}

func runAlarms(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		events     []alarm.Event
		timeFormat string
	)
	if flagPending {
		env := LoadEnvironment()
		if env.RedisAddress == "" {
			return fmt.Errorf("--pending needs REDIS_ADDRESS to point at the daemon's store")
		}
		store, closeStore, err := openAlarmStore(ctx, env)
		if err != nil {
			return err
		}
		defer closeStore()
		if events, err = store.Pending(ctx); err != nil {
			return fmt.Errorf("failed to read pending alarms: %w", err)
		}
		timeFormat = effectiveSettings(cmd).GetString(config.KeyTimeFormat, scheduler.DefaultTimeFormat)
	} else {
		a := newApp(cmd, nil)
		snap, sched, err := a.today(ctx)
		if err != nil {
			return err
		}
		events = a.sched.Planner.Plan(sched, snap.LeadMinutes)
		timeFormat = snap.TimeFormat
	}

	layout := "2006-01-02 " + prayer.Layout(timeFormat)

	if FlagJSON {
		out := make([]alarmJSON, 0, len(events))
		for _, ev := range events {
			out = append(out, alarmJSON{
				ID:       ev.ID,
				Kind:     ev.Kind.String(),
				Prayer:   ev.Period.Key(),
				Label:    ev.Label,
				FireAt:   ev.FireAt.Format(layout),
				PrayerAt: ev.PrayerAt.Format(layout),
			})
		}
		return printJSON(out)
	}

	if len(events) == 0 {
		fmt.Println("No alarms left today.")
		return nil
	}

	tbl := display.NewTable([]string{"ID", "Kind", "Label", "Fires at"})
	tbl.SetAlign(0, display.Right)
	for _, ev := range events {
		tbl.AddRow([]string{fmt.Sprint(ev.ID), ev.Kind.String(), ev.Label, ev.FireAt.Format(layout)})
	}
	fmt.Println()
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}
