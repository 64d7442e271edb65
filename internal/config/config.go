package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Addr              string
	DatabaseURL       string
	RedisAddr         string
	JWTSecret         string
	LowStockThreshold int
	MediaDir          string
	MediaBaseURL      string
}

// Load reads configuration from environment variables with an ALIS prefix
// (ALIS_ADDR, ALIS_JWT_SECRET, ...). DATABASE_URL is read unprefixed, as
// hosting providers supply it.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("alis")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("redis_addr", "alis-redis:6379")
	v.SetDefault("low_stock_threshold", 10)
	v.SetDefault("media_dir", "media")
	v.SetDefault("media_base_url", "")

	_ = v.BindEnv("database_url", "DATABASE_URL")

	cfg := Config{
		Addr:              v.GetString("addr"),
		DatabaseURL:       v.GetString("database_url"),
		RedisAddr:         v.GetString("redis_addr"),
		JWTSecret:         v.GetString("jwt_secret"),
		LowStockThreshold: v.GetInt("low_stock_threshold"),
		MediaDir:          v.GetString("media_dir"),
		MediaBaseURL:      v.GetString("media_base_url"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("environment variable DATABASE_URL not found")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("environment variable ALIS_JWT_SECRET not found")
	}
	if cfg.LowStockThreshold < 0 {
		return Config{}, fmt.Errorf("ALIS_LOW_STOCK_THRESHOLD must not be negative")
	}
	return cfg, nil
}
