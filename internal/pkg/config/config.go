package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

//Config holds all runtime configuration, read from environment variables
type Config struct {
	//ServicePort is the port the read-only API listens on
	ServicePort string `env:"SERVICE_PORT" env-default:"8880"`

	//DatabaseDriver selects sqlite (embedded, default) or postgres
	DatabaseDriver string `env:"LOOKING_GLASS_DB_DRIVER" env-default:"sqlite"`
	//DatabasePath is the sqlite database file
	DatabasePath string `env:"LOOKING_GLASS_DB_PATH" env-default:"./output/outages.db"`

	//PostgreSQL connection settings, used only when DatabaseDriver is postgres
	DBHost     string `env:"LOOKING_GLASS_DB_HOST" env-default:""`
	DBUser     string `env:"LOOKING_GLASS_DB_USER" env-default:""`
	DBName     string `env:"LOOKING_GLASS_DB_NAME" env-default:""`
	DBPassword string `env:"LOOKING_GLASS_DB_PASSWORD" env-default:""`
	DBSSLMode  string `env:"LOOKING_GLASS_DB_SSLMODE" env-default:"require"`

	//RetainDays is the default rolling retention window for append-mode runs
	RetainDays int `env:"LOOKING_GLASS_RETAIN_DAYS" env-default:"7"`

	//OutageThresholdPercent is the share of a property's networks that must report an
	//outage within the same trailing window before the property counts as property-wide down
	OutageThresholdPercent float64 `env:"LOOKING_GLASS_OUTAGE_THRESHOLD" env-default:"75"`

	//ReportDir receives the plain-text processing reports
	ReportDir string `env:"LOOKING_GLASS_REPORT_DIR" env-default:"./processing_reports"`

	//InputsDir receives downloaded outage exports
	InputsDir string `env:"LOOKING_GLASS_INPUTS_DIR" env-default:"./inputs"`

	//Eero organization API settings for the fetch command
	EeroAPIBaseURL string `env:"EERO_API_BASE_URL" env-default:"https://api-user.e2ro.com/2.2"`
	EeroAPIToken   string `env:"EERO_API_TOKEN" env-default:""`
}

//Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration from environment: %w", err)
	}
	return cfg, nil
}
