package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Billing   BillingConfig   `yaml:"billing"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the tool server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// CalendarConfig controls the Google Calendar mirror. When disabled the
// scheduler runs without mirroring.
type CalendarConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
	Timezone        string `yaml:"timezone"`
}

// BillingConfig selects the default invoice grouping mode:
// "by_student" or "by_student_and_month".
type BillingConfig struct {
	Grouping string `yaml:"grouping"`
}

// Load reads configuration from an optional YAML file and environment
// variables. A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "tutorbase.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Calendar: CalendarConfig{
			CalendarID: "primary",
			Timezone:   "Asia/Taipei",
		},
		Billing: BillingConfig{
			Grouping: "by_student",
		},
	}

	if path := os.Getenv("TUTORBASE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TUTORBASE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TUTORBASE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TUTORBASE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("TUTORBASE_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("TUTORBASE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TUTORBASE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if enabled := os.Getenv("TUTORBASE_CALENDAR_ENABLED"); enabled != "" {
		cfg.Calendar.Enabled = enabled == "true" || enabled == "1"
	}
	if credsFile := os.Getenv("TUTORBASE_CALENDAR_CREDENTIALS_FILE"); credsFile != "" {
		cfg.Calendar.CredentialsFile = credsFile
	}
	if calID := os.Getenv("TUTORBASE_CALENDAR_ID"); calID != "" {
		cfg.Calendar.CalendarID = calID
	}
	if tz := os.Getenv("TUTORBASE_CALENDAR_TIMEZONE"); tz != "" {
		cfg.Calendar.Timezone = tz
	}
	if grouping := os.Getenv("TUTORBASE_BILLING_GROUPING"); grouping != "" {
		cfg.Billing.Grouping = grouping
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	switch cfg.Billing.Grouping {
	case "by_student", "by_student_and_month":
	default:
		return fmt.Errorf("invalid billing grouping %q", cfg.Billing.Grouping)
	}
	if cfg.Calendar.Enabled && cfg.Calendar.CredentialsFile == "" {
		return fmt.Errorf("calendar enabled but no credentials file configured")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
