package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/athan/internal/alarm"
)

// Environment holds the settings of the long-running commands. They come
// from the process environment, optionally seeded from a .env file.
type Environment struct {
	ServerAddress string
	RedisAddress  string
	RedisUsername string
	RedisPassword string
	RedisPrefix   string
	MQTTBroker    string
	MQTTClientID  string
	MQTTTopic     string
}

// LoadEnvironment reads the environment. A missing .env file is fine.
func LoadEnvironment() Environment {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	env := Environment{
		ServerAddress: os.Getenv("SERVER_ADDRESS"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   os.Getenv("REDIS_PREFIX"),

		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: os.Getenv("MQTT_CLIENT_ID"),
		MQTTTopic:    os.Getenv("MQTT_TOPIC"),
	}

	if env.ServerAddress == "" {
		env.ServerAddress = ":8080"
	}
	if env.MQTTClientID == "" {
		env.MQTTClientID = "athan"
	}
	return env
}

// openAlarmStore returns the Redis store when REDIS_ADDRESS is set and an
// in-memory store otherwise. The returned func releases the store.
func openAlarmStore(ctx context.Context, env Environment) (alarm.Store, func(), error) {
	if env.RedisAddress == "" {
		return alarm.NewMemoryStore(), func() {}, nil
	}

	rdb := alarm.NewRedisClient(alarm.RedisOptions{
		Address:  env.RedisAddress,
		Username: env.RedisUsername,
		Password: env.RedisPassword,
	})
	store := alarm.NewRedisStore(rdb, env.RedisPrefix)
	if err := store.Ping(ctx); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", env.RedisAddress, err)
	}
	log.Info().Str("address", env.RedisAddress).Msg("using redis alarm store")
	return store, func() { rdb.Close() }, nil
}
