package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve prayer times as a JSON API",
		Long: `Serve schedules, the next prayer and the method catalog over HTTP on
SERVER_ADDRESS (default :8080). When REDIS_ADDRESS is set, /api/alarms lists
the alarms a daemon keeps there.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := LoadEnvironment()

	var alarms server.AlarmLister
	if env.RedisAddress != "" {
		store, closeStore, err := openAlarmStore(ctx, env)
		if err != nil {
			return err
		}
		defer closeStore()
		alarms = store
	}

	a := newApp(cmd, nil)
	srv := server.New(a.sched, alarms, a.resolver)
	if err := srv.Run(ctx, env.ServerAddress); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
