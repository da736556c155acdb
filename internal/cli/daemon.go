package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/athan/internal/notify"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
	"github.com/smokyabdulrahman/athan/internal/server"
)

var (
	flagInterval time.Duration
	flagHTTP     bool
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Deliver prayer notifications until stopped",
		Long: `Keep today's alarms registered and deliver each one when it is due.

Notifications are logged and, when MQTT_BROKER is set, published over MQTT.
Alarms live in memory, or in redis when REDIS_ADDRESS is set. Both may also
be given in a .env file in the working directory.`,
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}
	cmd.Flags().DurationVar(&flagInterval, "interval", notify.DefaultInterval, "How often to check for due alarms")
	cmd.Flags().BoolVar(&flagHTTP, "http", false, "Also serve the JSON API on SERVER_ADDRESS")
	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := LoadEnvironment()

	store, closeStore, err := openAlarmStore(ctx, env)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, closeNotifier, err := openNotifier(env)
	if err != nil {
		return err
	}
	defer closeNotifier()

	a := newApp(cmd, store)
	snap, err := a.sched.Snapshot()
	if err != nil && !errors.Is(err, scheduler.ErrMissingLocation) {
		return err
	}
	if errors.Is(err, scheduler.ErrMissingLocation) {
		log.Warn().Msg("no location configured; alarms stay cancelled until one is set")
	}

	d := &notify.Dispatcher{
		Store:      store,
		Notifier:   notifier,
		Texts:      translatorFor(a.settings),
		Replanner:  a.sched,
		Clock:      a.sched.Clock,
		Interval:   flagInterval,
		Display:    a.sched,
		Location:   snap.Location.Zone(),
		TimeFormat: snap.TimeFormat,
	}

	if flagHTTP {
		srv := server.New(a.sched, store, a.resolver)
		go func() {
			if err := srv.Run(ctx, env.ServerAddress); err != nil {
				log.Error().Err(err).Msg("http server stopped")
				cancel()
			}
		}()
	}

	log.Info().Dur("interval", d.Interval).Msg("daemon started")
	err = d.Run(ctx)
	a.sched.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("daemon stopped")
		return nil
	}
	return err
}

// openNotifier always logs notifications and adds MQTT when a broker is
// configured.
func openNotifier(env Environment) (notify.Notifier, func(), error) {
	notifiers := notify.Multi{notify.LogNotifier{}}
	if env.MQTTBroker == "" {
		return notifiers, func() {}, nil
	}

	client, err := notify.NewMQTTClient(env.MQTTBroker, env.MQTTClientID)
	if err != nil {
		return nil, nil, err
	}
	notifiers = append(notifiers, notify.NewMQTTNotifier(client, env.MQTTTopic))
	return notifiers, func() { client.Disconnect(250) }, nil
}
