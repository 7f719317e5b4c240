package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`
	Port        string `mapstructure:"port"`
	PublicURL   string `mapstructure:"public_url"`

	// Auth
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`

	// Firebase push notifications
	FCMCredentialsFile string `mapstructure:"fcm_credentials_file"`

	// Scheduling policy
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// SchedulingConfig carries the organization-wide scheduling policy knobs.
// The hour caps and the staffing target are inputs to the scheduling core,
// not constants baked into it.
type SchedulingConfig struct {
	WeeklyHourCap          int `mapstructure:"weekly_hour_cap"`          // hours, default 48
	DailyHourCap           int `mapstructure:"daily_hour_cap"`           // hours, default 12
	RequiredStaffPerDay    int `mapstructure:"required_staff_per_day"`   // fallback staffing target
	RotationWeeksAhead     int `mapstructure:"rotation_weeks_ahead"`     // worker pre-generation horizon
	CoverageCacheSeconds   int `mapstructure:"coverage_cache_seconds"`   // redis TTL for coverage reports
	CoverageRefreshMinutes int `mapstructure:"coverage_refresh_minutes"` // worker refresh interval
}

// App holds the global config instance
var App Config

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) error {
	// Auto-load .env file if present so 'go run' works without manually
	// exporting env vars. Missing .env is fine in Docker/production.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	v := viper.New()

	// Set default values
	v.SetDefault("port", "8080")
	v.SetDefault("token_ttl_hours", 24)
	v.SetDefault("scheduling.weekly_hour_cap", 48)
	v.SetDefault("scheduling.daily_hour_cap", 12)
	v.SetDefault("scheduling.required_staff_per_day", 5)
	v.SetDefault("scheduling.rotation_weeks_ahead", 4)
	v.SetDefault("scheduling.coverage_cache_seconds", 300)
	v.SetDefault("scheduling.coverage_refresh_minutes", 15)

	// Config file settings
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("dev.config")
		v.SetConfigType("yaml")
	}

	// Environment variable settings
	v.SetEnvPrefix("staffhub")

	// Bind standard environment variables (Docker/deploy compatibility)
	// so standard keys like DATABASE_URL work without the prefix.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("public_url", "PUBLIC_URL")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("fcm_credentials_file", "FCM_CREDENTIALS_FILE")

	_ = v.BindEnv("scheduling.weekly_hour_cap", "WEEKLY_HOUR_CAP")
	_ = v.BindEnv("scheduling.daily_hour_cap", "DAILY_HOUR_CAP")
	_ = v.BindEnv("scheduling.required_staff_per_day", "REQUIRED_STAFF_PER_DAY")
	_ = v.BindEnv("scheduling.rotation_weeks_ahead", "ROTATION_WEEKS_AHEAD")

	v.AutomaticEnv()

	// 1. Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and environment variables")
		} else {
			return err
		}
	} else {
		log.Printf("Loaded config from: %s", v.ConfigFileUsed())
	}

	// 2. Unmarshal into struct
	if err := v.Unmarshal(&App); err != nil {
		return err
	}

	// 3. Backfill environment variables for code that still reads os.Getenv
	setEnvIfEmpty("DATABASE_URL", App.DatabaseURL)
	setEnvIfEmpty("REDIS_URL", App.RedisURL)
	setEnvIfEmpty("PORT", App.Port)
	setEnvIfEmpty("JWT_SECRET", App.JWTSecret)

	return nil
}

func setEnvIfEmpty(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}
