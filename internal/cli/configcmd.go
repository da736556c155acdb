package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/config"
	"github.com/smokyabdulrahman/athan/internal/method"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  athan config set latitude 21.4225\n  athan config set longitude 39.8262\n  athan config set utc_offset 3\n  athan config set method 3\n  athan config set time_format 24h\n  athan config set language ar",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigUnset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete every stored setting and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	if FlagJSON {
		values := make(map[string]string)
		for _, key := range loadedStore.Keys() {
			values[key] = loadedStore.GetString(key, "")
		}
		return printJSON(values)
	}

	fmt.Printf("  Configuration (%s)\n\n", storePath())

	for _, key := range config.ValidKeys {
		val := loadedStore.GetString(key, "")
		shown := val
		if shown == "" {
			shown = "(not set)"
		}
		if key == config.KeyMethod && val != "" {
			shown = formatMethodValue(val)
		}
		fmt.Printf("  %-15s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty value for %s; use `athan config unset %s` to remove it", key, key)
	}
	if err := loadedStore.SetString(key, value); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := config.Validate(args[0], ""); err != nil {
		return err
	}
	fmt.Println(loadedStore.GetString(args[0], ""))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if err := loadedStore.SetString(args[0], ""); err != nil {
		return err
	}
	fmt.Printf("Unset %s\n", args[0])
	return nil
}

// runConfigReset deletes every stored setting.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := loadedStore.Clear(); err != nil {
		return err
	}
	fmt.Println("Configuration reset to defaults.")
	return nil
}

// runConfigPath prints where settings are kept.
func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(storePath())
	return nil
}

func storePath() string {
	if FlagSettingsDB != "" {
		return FlagSettingsDB
	}
	if c, ok := loadedStore.(*config.Config); ok && c.FilePath() != "" {
		return c.FilePath()
	}
	path, err := config.Path()
	if err != nil {
		return "(unknown)"
	}
	return path
}

// formatMethodValue adds the method name to the numeric value.
func formatMethodValue(val string) string {
	idx, err := strconv.Atoi(val)
	if err != nil {
		return val
	}
	m, err := method.Lookup(idx)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%s (%s)", val, m.Name)
}
