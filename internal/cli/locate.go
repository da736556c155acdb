package cli

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/geo"
)

var (
	flagLocateSave    bool
	flagLocateRefresh bool
)

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Detect your location from your public IP",
		Long:  "Look up your approximate location from your public IP address.\nResults are cached for 24 hours. Use --save to store them as your location.",
		Args:  cobra.NoArgs,
		RunE:  runLocate,
	}
	cmd.Flags().BoolVar(&flagLocateSave, "save", false, "Store the detected location in the settings")
	cmd.Flags().BoolVar(&flagLocateRefresh, "refresh", false, "Ignore the cached result")
	return cmd
}

func runLocate(cmd *cobra.Command, args []string) error {
	a := newApp(cmd, nil)

	var loc *geo.Location
	if a.cache != nil && !flagLocateRefresh {
		loc = a.cache.LoadGeo()
	}
	if loc == nil {
		detected, err := geo.DetectLocation(cmd.Context())
		if err != nil {
			return fmt.Errorf("location detection failed: %w", err)
		}
		loc = detected
		if a.cache != nil {
			if err := a.cache.SaveGeo(loc); err != nil {
				log.Debug().Err(err).Msg("failed to cache location")
			}
		}
	}

	if flagLocateSave {
		if err := saveLocation(a.settings, loc); err != nil {
			return err
		}
	}

	if FlagJSON {
		return printJSON(loc)
	}

	fmt.Printf("  %-10s %s, %s\n", "Place", loc.City, loc.Country)
	fmt.Printf("  %-10s %.4f, %.4f\n", "Position", loc.Latitude, loc.Longitude)
	fmt.Printf("  %-10s %s (UTC%+g)\n", "Timezone", loc.Timezone, loc.UTCOffset)
	if flagLocateSave {
		fmt.Println()
		fmt.Println("Saved as your location.")
	}
	return nil
}

// saveLocation stores loc as the configured location.
func saveLocation(s *overlay, loc *geo.Location) error {
	float := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	values := []struct{ key, value string }{
		{config.KeyLatitude, float(loc.Latitude)},
		{config.KeyLongitude, float(loc.Longitude)},
		{config.KeyUTCOffset, float(loc.UTCOffset)},
		{config.KeyCity, loc.City},
		{config.KeyCountry, loc.Country},
	}
	for _, kv := range values {
		if err := s.SetString(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", kv.key, err)
		}
	}
	return nil
}
