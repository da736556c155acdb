package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/export"
)

var (
	flagExportDays   string
	flagExportOutput string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export prayer times as an iCalendar file",
		Long:  "Write the coming days' prayer times as an .ics calendar with a reminder at\neach prayer, and another --lead minutes before it when set.",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagExportDays, "days", "30", "Number of days to export (or 'week'/'month')")
	cmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	days, err := parseDays(flagExportDays, 30)
	if err != nil {
		return fmt.Errorf("invalid --days value: %w", err)
	}

	a := newApp(cmd, nil)
	snap, schedules, now, err := a.dayRange(cmd, days)
	if err != nil {
		return err
	}

	data, err := export.Calendar(schedules, export.Options{
		Name:        "Prayer Times, " + locationLabel(snap),
		LeadMinutes: snap.LeadMinutes,
		Labeler:     translatorFor(a.settings),
		Now:         now,
	})
	if err != nil {
		return err
	}

	if flagExportOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flagExportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", flagExportOutput, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d days to %s\n", days, flagExportOutput)
	return nil
}
