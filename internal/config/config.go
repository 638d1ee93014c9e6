package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultCategories is the fixed category set offered by the command line.
var DefaultCategories = []string{"밥", "커피", "농구", "사람(술 등)", "기타"}

type Config struct {
	// Backend selection
	UseGoogleSheets bool `env:"USE_GOOGLE_SHEETS" envDefault:"false"`

	// Database
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/wallet.db"`

	// Google Sheets
	GoogleSpreadsheetID       string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName           string `env:"GOOGLE_SHEET_NAME" envDefault:"Expenses"`
	GoogleServiceAccountJSON  string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile  string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleApplicationCredsEnv string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// AMQP, empty URL disables change events
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"wallet"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"expense_events"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	Categories []string `env:"WALLET_CATEGORIES" envSeparator:","`

	// TrueType font for chart labels; the built-in font has no Hangul
	ChartFont string `env:"WALLET_CHART_FONT"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Categories = normalizeCategories(cfg.Categories)
	if len(cfg.Categories) == 0 {
		cfg.Categories = append([]string(nil), DefaultCategories...)
	}
	return cfg, nil
}

// HasGoogleCredentials reports whether any service account source is configured.
func (c *Config) HasGoogleCredentials() bool {
	return strings.TrimSpace(c.GoogleServiceAccountJSON) != "" ||
		strings.TrimSpace(c.GoogleServiceAccountFile) != "" ||
		strings.TrimSpace(c.GoogleApplicationCredsEnv) != ""
}

// SheetsEnabled selects the spreadsheet backend: either explicitly, or implicitly
// when both a spreadsheet id and credentials are present.
func (c *Config) SheetsEnabled() bool {
	if c.UseGoogleSheets {
		return true
	}
	return strings.TrimSpace(c.GoogleSpreadsheetID) != "" && c.HasGoogleCredentials()
}

// EventsEnabled reports whether expense change events should be published.
func (c *Config) EventsEnabled() bool {
	return strings.TrimSpace(c.AMQPURL) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SheetsEnabled() {
		if strings.TrimSpace(c.GoogleSpreadsheetID) == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when Google Sheets is enabled")
		}
		if strings.TrimSpace(c.GoogleSheetName) == "" {
			errors = append(errors, "GOOGLE_SHEET_NAME cannot be empty when Google Sheets is enabled")
		}
		if !c.HasGoogleCredentials() {
			errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided when Google Sheets is enabled")
		}
		for _, file := range []string{c.GoogleServiceAccountFile, c.GoogleApplicationCredsEnv} {
			if file == "" || strings.TrimSpace(c.GoogleServiceAccountJSON) != "" {
				continue
			}
			if _, err := os.Stat(file); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("service account file does not exist: %s", file))
			}
		}
	} else if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	// Validate AMQP URL if provided
	if c.EventsEnabled() {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(normalizeCategories(c.Categories)) == 0 {
		errors = append(errors, "at least one category must be configured")
	}

	if c.ChartFont != "" {
		if _, err := os.Stat(c.ChartFont); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("chart font does not exist: %s", c.ChartFont))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func normalizeCategories(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
