package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Storage   StorageConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for the document store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// StorageConfig holds settings for the S3-compatible photo bucket. Leaving the
// endpoint empty disables photo storage.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SheetsConfig contains configuration for the Google Sheets report export.
// Leaving the spreadsheet id empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	AnomalyCron string
	ExportCron  string
	Timezone    string
	OwnerID     string
}

// NotifyConfig holds settings for the outbound report webhook. Leaving the URL
// empty disables notifications.
type NotifyConfig struct {
	WebhookURL string
	Token      string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fleetdesk"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    getenvWithDefault("STORAGE_BUCKET", "car-photos"),
			UseSSL:    getenvBool("STORAGE_USE_SSL", true),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		Reporting: ReportingConfig{
			AnomalyCron: getenvWithDefault("ANOMALY_CRON_SCHEDULE", "0 21 * * *"),
			ExportCron:  getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 6 1 * *"),
			Timezone:    getenvWithDefault("TIMEZONE", "UTC"),
			OwnerID:     os.Getenv("REPORT_OWNER_ID"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Token:      os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Storage.Enabled() {
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY must be provided when STORAGE_ENDPOINT is set")
		}
		if c.Storage.Bucket == "" {
			return errors.New("STORAGE_BUCKET must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_REPORT_ID is set")
	}

	if c.Reporting.AnomalyCron == "" {
		return errors.New("ANOMALY_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.ExportCron == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// Enabled reports whether photo storage is configured.
func (s StorageConfig) Enabled() bool { return s.Endpoint != "" }

// Enabled reports whether the sheets export is configured.
func (s SheetsConfig) Enabled() bool { return s.SpreadsheetID != "" }

// Enabled reports whether webhook notifications are configured.
func (n NotifyConfig) Enabled() bool { return n.WebhookURL != "" }

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
