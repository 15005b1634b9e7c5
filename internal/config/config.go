package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	FIOBaseURL          string
	FIOAPIKey           string
	FIOSyncInterval     time.Duration
	SweeperInterval     time.Duration
	CatalogCacheTTL     time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		if testURL := viper.GetString("DATABASE_URL_TEST"); testURL != "" {
			dbURL = testURL
		}
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		FIOBaseURL:          viper.GetString("FIO_BASE_URL"),
		FIOAPIKey:           viper.GetString("FIO_API_KEY"),
		FIOSyncInterval:     durationOr("FIO_SYNC_INTERVAL", 30*time.Minute),
		SweeperInterval:     durationOr("SWEEPER_INTERVAL", 5*time.Minute),
		CatalogCacheTTL:     durationOr("CATALOG_CACHE_TTL", 15*time.Minute),
	}, nil
}

func durationOr(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(viper.GetString(key))
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
