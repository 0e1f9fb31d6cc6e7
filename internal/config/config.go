package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HRAPI     HRAPIConfig
	Dataset   DatasetConfig
	JWT       JWTConfig
	Dashboard DashboardConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// HRAPIConfig holds the upstream HR API connection settings
type HRAPIConfig struct {
	BaseURL string
	Token   string
}

// DatasetConfig holds the ETL and storage settings
type DatasetConfig struct {
	DataDir             string
	OptionalHolidayList string
	RefreshInterval     time.Duration
	RefreshOnStart      bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// DashboardConfig holds the single dashboard credential. The password is a
// bcrypt hash, never plaintext.
type DashboardConfig struct {
	Email        string
	PasswordHash string
}

func Load() (*Config, error) {
	// A missing .env is fine in production; the environment carries the keys.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS"),
	}
	if len(config.App.CORSOrigins) == 0 {
		config.App.CORSOrigins = []string{"http://localhost:3000"}
	}

	config.HRAPI = HRAPIConfig{
		BaseURL: getEnv("HR_API_BASE_URL", ""),
		Token:   getEnv("HR_API_TOKEN", ""),
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	config.Dataset = DatasetConfig{
		DataDir:             getEnv("DATA_DIR", "data"),
		OptionalHolidayList: getEnv("OPTIONAL_HOLIDAY_LIST", "QBAPL 2025-2026 Optional Holidays"),
		RefreshInterval:     refreshInterval,
		RefreshOnStart:      getEnv("REFRESH_ON_START", "false") == "true",
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Dashboard = DashboardConfig{
		Email:        getEnv("DASHBOARD_EMAIL", ""),
		PasswordHash: getEnv("DASHBOARD_PASSWORD_HASH", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Dashboard.Email == "" {
		return fmt.Errorf("DASHBOARD_EMAIL is required")
	}
	if c.Dashboard.PasswordHash == "" {
		return fmt.Errorf("DASHBOARD_PASSWORD_HASH is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
