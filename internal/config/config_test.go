package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "MONGODB_URI", "MONGODB_DB_NAME",
		"STORAGE_ENDPOINT", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY", "STORAGE_BUCKET", "STORAGE_USE_SSL",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_REPORT_ID",
		"ANOMALY_CRON_SCHEDULE", "EXPORT_CRON_SCHEDULE", "TIMEZONE", "REPORT_OWNER_ID",
		"NOTIFY_WEBHOOK_URL", "NOTIFY_WEBHOOK_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.MongoDB.DBName != "fleetdesk" {
		t.Errorf("db name = %s", cfg.MongoDB.DBName)
	}
	if cfg.Reporting.Timezone != "UTC" {
		t.Errorf("timezone = %s", cfg.Reporting.Timezone)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage must be disabled without an endpoint")
	}
	if cfg.Sheets.Enabled() {
		t.Error("sheets must be disabled without a spreadsheet id")
	}
	if cfg.Notify.Enabled() {
		t.Error("notify must be disabled without a webhook url")
	}
}

func TestLoadStorageEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_ENDPOINT", "minio.local:9000")
	t.Setenv("STORAGE_ACCESS_KEY", "ak")
	t.Setenv("STORAGE_SECRET_KEY", "sk")
	t.Setenv("STORAGE_USE_SSL", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !cfg.Storage.Enabled() {
		t.Fatal("storage should be enabled")
	}
	if cfg.Storage.UseSSL {
		t.Error("use_ssl should be false")
	}
	if cfg.Storage.Bucket != "car-photos" {
		t.Errorf("bucket = %s, want default car-photos", cfg.Storage.Bucket)
	}
}

func TestLoadStorageMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_ENDPOINT", "minio.local:9000")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing storage credentials")
	}
}

func TestLoadSheetsMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_REPORT_ID", "sheet-id")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for missing sheets credentials")
	}
	if !strings.Contains(err.Error(), "GOOGLE_SHEETS_CREDENTIALS_PATH") {
		t.Errorf("error = %v", err)
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nil config")
	}
}
