package config

import "time"

// WMSConfig holds the Pulpo WMS client configuration
type WMSConfig struct {
	// Base URL of the production API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Base URL of the sandbox API
	SandboxURL string `mapstructure:"sandbox_url" validate:"omitempty,url"`

	// Route all traffic to the sandbox
	Sandbox bool `mapstructure:"sandbox"`

	// API credentials
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Rate limiting: calls allowed per sliding time window
	MaxCalls   int           `mapstructure:"max_calls" validate:"min=1"`
	TimeWindow time.Duration `mapstructure:"time_window"`

	// Retry behavior for rate-limited requests
	MaxRetries int           `mapstructure:"max_retries" validate:"min=1"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

// WeclappConfig holds the article-master client configuration
type WeclappConfig struct {
	// Base URL of the tenant API
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// AuthenticationToken header value
	APIToken string `mapstructure:"api_token"`

	// Maximum requests per second
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// Tenant-specific custom attribute ids
	Attributes WeclappAttributesConfig `mapstructure:"attributes"`
}

// WeclappAttributesConfig names the tenant's custom attribute definitions and
// the select options of the packaging level attribute
type WeclappAttributesConfig struct {
	Level            string `mapstructure:"level"`
	PackQuantity     string `mapstructure:"pack_quantity"`
	CartonQuantity   string `mapstructure:"carton_quantity"`
	ShippingQuantity string `mapstructure:"shipping_quantity"`

	LevelArtikel string `mapstructure:"level_artikel"`
	LevelPackung string `mapstructure:"level_packung"`
	LevelKarton  string `mapstructure:"level_karton"`
	LevelKeine   string `mapstructure:"level_keine"`
}

// BlobConfig holds the roster blob storage configuration
type BlobConfig struct {
	// Azure storage connection string
	ConnectionString string `mapstructure:"connection_string"`

	// Container and blob holding the picker roster
	Container string `mapstructure:"container"`
	BlobName  string `mapstructure:"blob_name"`
}

// SheetsConfig holds the picker spreadsheet configuration
type SheetsConfig struct {
	// Spreadsheet id from the sheet URL
	SpreadsheetID string `mapstructure:"spreadsheet_id"`

	// Tab holding the picker columns
	SheetName string `mapstructure:"sheet_name"`

	// Service account credentials, raw JSON
	CredentialsJSON string `mapstructure:"credentials_json"`
}

// AlertingConfig holds the operator alerting configuration
type AlertingConfig struct {
	// Teams incoming webhook; empty disables alert delivery
	TeamsWebhookURL string `mapstructure:"teams_webhook_url" validate:"omitempty,url"`
}

// WarehouseConfig holds the warehouse-level run configuration
type WarehouseConfig struct {
	// IANA timezone the scheduling hours are interpreted in
	Timezone string `mapstructure:"timezone" validate:"required"`

	// JSON file with the SKUs under the special palette regime
	SkusFile string `mapstructure:"skus_file"`
}
