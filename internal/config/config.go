/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the kudos-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                 string `mapstructure:"SERVER_PORT"`
	DatabaseURL                string `mapstructure:"DATABASE_URL"`
	RedisURL                   string `mapstructure:"REDIS_URL"`
	RedisLeaderboardPrefix     string `mapstructure:"REDIS_LEADERBOARD_PREFIX"`
	LeaderboardCacheTTLSeconds int    `mapstructure:"LEADERBOARD_CACHE_TTL_SECONDS"`
	RabbitMQURL                string `mapstructure:"RABBITMQ_URL"`
	ResetSchedule              string `mapstructure:"RESET_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_LEADERBOARD_PREFIX", "kudos:leaderboard")
	viper.SetDefault("LEADERBOARD_CACHE_TTL_SECONDS", 30)
	// midnight on the first of every month
	viper.SetDefault("RESET_SCHEDULE", "0 0 1 * *")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_LEADERBOARD_PREFIX")
	_ = viper.BindEnv("LEADERBOARD_CACHE_TTL_SECONDS")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("RESET_SCHEDULE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisLeaderboardPrefix = strings.TrimSpace(config.RedisLeaderboardPrefix)
	if config.RedisLeaderboardPrefix == "" {
		config.RedisLeaderboardPrefix = "kudos:leaderboard"
	}
	if config.LeaderboardCacheTTLSeconds <= 0 {
		config.LeaderboardCacheTTLSeconds = 30
	}
	config.ResetSchedule = strings.TrimSpace(config.ResetSchedule)
	if config.ResetSchedule == "" {
		config.ResetSchedule = "0 0 1 * *"
	}

	return
}
