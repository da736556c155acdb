// Command athan-status prints the next prayer on one line for status bars.
// It computes everything locally and never touches the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smokyabdulrahman/athan/internal/astro"
	"github.com/smokyabdulrahman/athan/internal/geo"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

// options holds the parsed command line.
type options struct {
	latitude, longitude float64
	utcOffset           float64
	offsetSet           bool
	method              int
	format              string
	timeFormat          string
	prayers             string
}

func main() {
	var opts options

	// Location flags
	flag.Float64Var(&opts.latitude, "latitude", 0, "Latitude for prayer time calculation")
	flag.Float64Var(&opts.longitude, "longitude", 0, "Longitude for prayer time calculation")
	utcOffset := flag.String("utc-offset", "", "UTC offset in hours (default: system zone)")

	// Calculation flags
	flag.IntVar(&opts.method, "method", -1, "Calculation method index (see --list-methods). -1 picks one from the location.")

	// Display flags
	flag.StringVar(&opts.format, "format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Key, .Time, .Remaining, .Hours, .Minutes, .Extreme")
	flag.StringVar(&opts.timeFormat, "time-format", "24h", "Time format: 12h or 24h")
	flag.StringVar(&opts.prayers, "prayers", "", "Comma-separated list of prayers to track (default: all)")

	// Info flags
	showVersion := flag.Bool("version", false, "Print version and exit")
	listMethods := flag.Bool("list-methods", false, "Print supported calculation methods and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("athan-status %s\n", version)
		return
	}

	if *listMethods {
		printMethods()
		return
	}

	if *utcOffset != "" {
		if _, err := fmt.Sscanf(*utcOffset, "%g", &opts.utcOffset); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --utc-offset %q\n", *utcOffset)
			os.Exit(1)
		}
		opts.offsetSet = true
	}

	out, err := run(opts, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// printMethods prints the table of supported calculation methods.
func printMethods() {
	fmt.Println("Supported calculation methods:")
	fmt.Println()
	fmt.Printf("  %-4s %s\n", "ID", "Name")
	fmt.Printf("  %-4s %s\n", "──", "────")
	for i, m := range method.All() {
		fmt.Printf("  %-4d %s\n", i, m.Name)
	}
	fmt.Println()
	fmt.Println("Use --method <ID> to select a calculation method.")
	fmt.Println("If omitted, one is picked from the country of your coordinates.")
}

// run computes the status line at now.
func run(opts options, now time.Time) (string, error) {
	if opts.latitude == 0 && opts.longitude == 0 {
		return "", fmt.Errorf("--latitude and --longitude are required")
	}

	offset := opts.utcOffset
	if !opts.offsetSet {
		_, secs := now.Zone()
		offset = float64(secs) / 3600
	}
	loc := astro.NewLocation(opts.latitude, opts.longitude, 0, 0, 0, offset)
	if err := loc.Validate(); err != nil {
		return "", err
	}

	idx := opts.method
	if idx < 0 {
		code, _ := geo.Offline{}.CountryCode(context.Background(), opts.latitude, opts.longitude)
		idx = method.Resolve(code)
	}

	selected, err := selectPeriods(opts.prayers)
	if err != nil {
		return "", err
	}

	calc := &prayer.Calculator{Engine: astro.NewSolar(), Clock: prayer.FixedClock(now)}
	today, err := calc.Calculate(loc, idx, method.DefaultRoundingIndex, 0)
	if err != nil {
		return "", err
	}

	next, err := nextSelected(calc, today, idx, selected, now)
	if err != nil {
		return "", err
	}
	return prayer.FormatOutput(next, now.In(loc.Zone()), opts.format, prayer.Layout(opts.timeFormat)), nil
}

// selectPeriods parses the --prayers list. An empty list selects all.
func selectPeriods(raw string) (map[prayer.Period]bool, error) {
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

// nextSelected finds the first selected prayer after now, looking into
// tomorrow when today has none left.
func nextSelected(calc *prayer.Calculator, today *prayer.Schedule, idx int, selected map[prayer.Period]bool, now time.Time) (prayer.Prayer, error) {
	for p := today.NextAt(now); p < prayer.NextFajr; p++ {
		if selected[p] {
			return today.Prayer(p), nil
		}
	}
	tomorrow, err := calc.CalculateDate(today.Location, idx, method.DefaultRoundingIndex, 0, today.Date.AddDate(0, 0, 1))
	if err != nil {
		return prayer.Prayer{}, err
	}
	for _, p := range prayer.Periods {
		if selected[p] {
			return tomorrow.Prayer(p), nil
		}
	}
	return prayer.Prayer{}, fmt.Errorf("could not determine next prayer")
}
