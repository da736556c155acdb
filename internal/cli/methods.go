package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/method"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of supported calculation methods with their angles and the\ncountries where each is customary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := method.All()
			if FlagJSON {
				return printJSON(methodsJSON(all))
			}

			fmt.Println("Supported calculation methods:")
			fmt.Println()
			fmt.Printf("  %-3s %-50s %-6s %-9s %s\n", "ID", "Name", "Fajr", "Isha", "Asr")
			fmt.Printf("  %-3s %-50s %-6s %-9s %s\n", "──", "────", "────", "────", "───")
			for i, m := range all {
				fmt.Printf("  %-3d %-50s %-6s %-9s %s\n", i, m.Name, fmt.Sprintf("%g°", m.FajrAngle), ishaLabel(m), m.Mathhab)
			}
			fmt.Println()
			fmt.Println("Use --method <ID> to select a calculation method.")
			fmt.Println("If none is configured, one is chosen from your location.")
			return nil
		},
	}
}

func ishaLabel(m method.Method) string {
	if m.IshaInterval > 0 {
		return fmt.Sprintf("%g min", m.IshaInterval)
	}
	return fmt.Sprintf("%g°", m.IshaAngle)
}

type methodJSON struct {
	Index     int      `json:"index"`
	Name      string   `json:"name"`
	FajrAngle float64  `json:"fajr_angle"`
	Isha      string   `json:"isha"`
	Asr       string   `json:"asr"`
	Countries []string `json:"countries,omitempty"`
}

func methodsJSON(all []method.Method) []methodJSON {
	out := make([]methodJSON, 0, len(all))
	for i, m := range all {
		out = append(out, methodJSON{
			Index:     i,
			Name:      m.Name,
			FajrAngle: m.FajrAngle,
			Isha:      ishaLabel(m),
			Asr:       m.Mathhab.String(),
			Countries: m.CountryCodes(),
		})
	}
	return out
}

var (
	flagResolveSave    bool
	flagResolveCountry string
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [latitude longitude]",
		Short: "Pick the customary method for a location",
		Long: `Reverse-geocode a location and print the calculation method customary in
its country. Without arguments the configured location is used. With
--country the lookup is skipped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <latitude> <longitude>, got %d", len(args))
			}
			return nil
		},
		RunE: runResolve,
	}
	cmd.Flags().BoolVar(&flagResolveSave, "save", false, "Store the resolved method in the settings")
	cmd.Flags().StringVar(&flagResolveCountry, "country", "", "ISO country code to resolve instead of a location")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	a := newApp(cmd, nil)

	var idx int
	switch {
	case flagResolveCountry != "":
		idx = method.Resolve(flagResolveCountry)
	default:
		lat, lon, err := resolveTarget(a, args)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
		defer cancel()
		idx = a.resolver.ResolveFromLocation(ctx, lat, lon)
	}

	m, err := method.Lookup(idx)
	if err != nil {
		return err
	}

	if flagResolveSave {
		if err := a.settings.SetString(config.KeyMethod, strconv.Itoa(idx)); err != nil {
			return fmt.Errorf("failed to save method: %w", err)
		}
	}

	if FlagJSON {
		return printJSON(struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
			Saved bool   `json:"saved"`
		}{idx, m.Name, flagResolveSave})
	}
	fmt.Printf("%d %s\n", idx, m.Name)
	if flagResolveSave {
		fmt.Println("Saved as the calculation method.")
	}
	return nil
}

// resolveTarget returns the coordinates given as arguments, or the
// configured location.
func resolveTarget(a *app, args []string) (float64, float64, error) {
	if len(args) == 2 {
		lat, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return 0, 0, fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil || lon < -180 || lon > 180 {
			return 0, 0, fmt.Errorf("invalid longitude %q", args[1])
		}
		return lat, lon, nil
	}
	snap, err := a.sched.Snapshot()
	if err != nil {
		return 0, 0, err
	}
	return snap.Location.Latitude, snap.Location.Longitude, nil
}

