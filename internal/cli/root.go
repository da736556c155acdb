package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/athan/internal/config"
)

// Global flags shared across all subcommands.
var (
	FlagLatitude   float64
	FlagLongitude  float64
	FlagUTCOffset  float64
	FlagMethod     int
	FlagRounding   int
	FlagOffset     int
	FlagLead       int
	FlagEngine     string
	FlagLanguage   string
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagSettingsDB string
	FlagLogLevel   string
)

// loadedStore holds the settings store opened during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedStore config.Store

// NewRootCmd creates the root command for the athan CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "athan",
		Short:   "Islamic prayer times, reminders and alarms",
		Long:    "Compute daily prayer times from your location, show the next prayer and\nschedule notifications before and at each prayer.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			store, err := openStore()
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			loadedStore = store
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.Float64Var(&FlagUTCOffset, "utc-offset", 0, "Override UTC offset in hours (default: system zone)")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (see athan methods)")
	pf.IntVar(&FlagRounding, "rounding", -1, "Override rounding (0=none, 1=normal, 2=special, 3=aggressive)")
	pf.IntVar(&FlagOffset, "offset", 0, "Shift every time by this many minutes")
	pf.IntVar(&FlagLead, "lead", 0, "Minutes before each prayer for a reminder")
	pf.StringVar(&FlagEngine, "engine", "", "Calculation engine: solar or aladhan")
	pf.StringVar(&FlagLanguage, "language", "", "Language for prayer names: en, ar, fr")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/athan/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagSettingsDB, "settings-db", "", "Keep settings in this SQLite database instead of the JSON config")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env ATHAN_LOG_LEVEL)")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newAlarmsCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newLocateCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newDaemonCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("athan %s\n", version)
}

// longRunning lists commands that log at info level by default.
var longRunning = map[string]bool{"daemon": true, "serve": true}

func setupLogging(cmd *cobra.Command) {
	raw := FlagLogLevel
	if raw == "" {
		raw = os.Getenv("ATHAN_LOG_LEVEL")
	}
	level := zerolog.WarnLevel
	if longRunning[cmd.Name()] {
		level = zerolog.InfoLevel
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func openStore() (config.Store, error) {
	if FlagSettingsDB != "" {
		return config.OpenSQLite(FlagSettingsDB)
	}
	return config.Load()
}

// effectiveSettings returns the settings to compute with,
// applying the priority: CLI flags > stored settings > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveSettings(cmd *cobra.Command) *overlay {
	base := loadedStore
	if base == nil {
		base = config.New()
	}
	o := newOverlay(base)

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	float := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	if flagWasSet(flags, root, "latitude") {
		o.set(config.KeyLatitude, float(FlagLatitude))
	}
	if flagWasSet(flags, root, "longitude") {
		o.set(config.KeyLongitude, float(FlagLongitude))
	}
	if flagWasSet(flags, root, "utc-offset") {
		o.set(config.KeyUTCOffset, float(FlagUTCOffset))
	}
	if flagWasSet(flags, root, "method") {
		o.set(config.KeyMethod, strconv.Itoa(FlagMethod))
	}
	if flagWasSet(flags, root, "rounding") {
		o.set(config.KeyRounding, strconv.Itoa(FlagRounding))
	}
	if flagWasSet(flags, root, "offset") {
		o.set(config.KeyOffsetMinutes, strconv.Itoa(FlagOffset))
	}
	if flagWasSet(flags, root, "lead") {
		o.set(config.KeyLeadMinutes, strconv.Itoa(FlagLead))
	}
	if flagWasSet(flags, root, "engine") {
		o.set(config.KeyEngine, FlagEngine)
	}
	if flagWasSet(flags, root, "language") {
		o.set(config.KeyLanguage, FlagLanguage)
	}
	if flagWasSet(flags, root, "cache-dir") {
		o.set(config.KeyCacheDir, FlagCacheDir)
	}
	if flagWasSet(flags, root, "time-format") {
		o.set(config.KeyTimeFormat, FlagTimeFormat)
	}

	return o
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
