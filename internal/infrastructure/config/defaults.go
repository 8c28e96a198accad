package config

import (
	"time"

	"github.com/spf13/viper"
)

// setViperDefaults registers every configuration key on the viper instance.
// Keys viper has never seen are invisible to Unmarshal even when the matching
// environment variable is set.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("wms.base_url", "")
	v.SetDefault("wms.sandbox_url", "")
	v.SetDefault("wms.sandbox", false)
	v.SetDefault("wms.username", "")
	v.SetDefault("wms.password", "")
	v.SetDefault("wms.max_calls", 0)
	v.SetDefault("wms.time_window", time.Duration(0))
	v.SetDefault("wms.max_retries", 0)
	v.SetDefault("wms.retry_delay", time.Duration(0))
	v.SetDefault("wms.timeout", time.Duration(0))

	v.SetDefault("weclapp.base_url", "")
	v.SetDefault("weclapp.api_token", "")
	v.SetDefault("weclapp.requests_per_second", 0.0)
	v.SetDefault("weclapp.timeout", time.Duration(0))
	v.SetDefault("weclapp.attributes.level", "")
	v.SetDefault("weclapp.attributes.pack_quantity", "")
	v.SetDefault("weclapp.attributes.carton_quantity", "")
	v.SetDefault("weclapp.attributes.shipping_quantity", "")
	v.SetDefault("weclapp.attributes.level_artikel", "")
	v.SetDefault("weclapp.attributes.level_packung", "")
	v.SetDefault("weclapp.attributes.level_karton", "")
	v.SetDefault("weclapp.attributes.level_keine", "")

	v.SetDefault("blob.connection_string", "")
	v.SetDefault("blob.container", "")
	v.SetDefault("blob.blob_name", "")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet_name", "")
	v.SetDefault("sheets.credentials_json", "")

	v.SetDefault("alerting.teams_webhook_url", "")

	v.SetDefault("warehouse.timezone", "")
	v.SetDefault("warehouse.skus_file", "")

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.output", "")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.include_caller", false)
	v.SetDefault("logging.include_stacktrace", false)
	v.SetDefault("logging.rotation.enabled", false)
	v.SetDefault("logging.rotation.max_size", 0)
	v.SetDefault("logging.rotation.max_backups", 0)
	v.SetDefault("logging.rotation.max_age", 0)
	v.SetDefault("logging.rotation.compress", false)
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// WMS defaults
	if cfg.WMS.BaseURL == "" {
		cfg.WMS.BaseURL = "https://api.pulpo.co/"
	}
	if cfg.WMS.SandboxURL == "" {
		cfg.WMS.SandboxURL = "https://api.sandbox.pulpo.co/"
	}
	if cfg.WMS.Username == "" {
		cfg.WMS.Username = "bot@altruan.de"
	}
	if cfg.WMS.MaxCalls == 0 {
		cfg.WMS.MaxCalls = 100
	}
	if cfg.WMS.TimeWindow == 0 {
		cfg.WMS.TimeWindow = 1 * time.Minute
	}
	if cfg.WMS.MaxRetries == 0 {
		cfg.WMS.MaxRetries = 3
	}
	if cfg.WMS.RetryDelay == 0 {
		cfg.WMS.RetryDelay = 30 * time.Second
	}
	if cfg.WMS.Timeout == 0 {
		cfg.WMS.Timeout = 30 * time.Second
	}

	// Weclapp defaults
	if cfg.Weclapp.BaseURL == "" {
		cfg.Weclapp.BaseURL = "https://altruan.weclapp.com/webapp/api/v1"
	}
	if cfg.Weclapp.RequestsPerSecond == 0 {
		cfg.Weclapp.RequestsPerSecond = 5
	}
	if cfg.Weclapp.Timeout == 0 {
		cfg.Weclapp.Timeout = 30 * time.Second
	}

	// Blob defaults
	if cfg.Blob.Container == "" {
		cfg.Blob.Container = "pulpobot"
	}
	if cfg.Blob.BlobName == "" {
		cfg.Blob.BlobName = "pickers.json"
	}

	// Sheets defaults
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = "Picker"
	}

	// Warehouse defaults
	if cfg.Warehouse.Timezone == "" {
		cfg.Warehouse.Timezone = "Europe/Berlin"
	}
	if cfg.Warehouse.SkusFile == "" {
		cfg.Warehouse.SkusFile = "skus_to_batch.json"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.Rotation.MaxSize == 0 {
		cfg.Logging.Rotation.MaxSize = 100 // MB
	}
	if cfg.Logging.Rotation.MaxBackups == 0 {
		cfg.Logging.Rotation.MaxBackups = 3
	}
	if cfg.Logging.Rotation.MaxAge == 0 {
		cfg.Logging.Rotation.MaxAge = 28 // days
	}
}
