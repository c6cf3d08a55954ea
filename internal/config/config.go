package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	BlockSuspicious    bool
	// MetricsAddr serves /metrics from the workers; empty disables it.
	MetricsAddr string

	// Auth
	AuthJWTSecret string

	// Database
	DataBackend  string
	SQLiteDBPath string

	// Ledger
	StrictIdentity    bool
	ArchiveTimeZone   string
	DashboardCacheTTL time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets history export
	GoogleSpreadsheetID    string
	GoogleHistorySheetName string
	GoogleCredentialsFile  string
	GoogleCredentialsJSON  string

	// Statement worker
	StatementInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		BlockSuspicious:    getEnvBool("BLOCK_SUSPICIOUS", false),
		MetricsAddr:        getEnv("METRICS_ADDR", ""),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finledger.db"),

		StrictIdentity:    getEnvBool("STRICT_IDENTITY", false),
		ArchiveTimeZone:   getEnv("ARCHIVE_TZ", "Local"),
		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "month_history"),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleHistorySheetName: getEnv("GOOGLE_HISTORY_SHEET_NAME", "History"),
		GoogleCredentialsFile:  getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON:  getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		StatementInterval: getEnvDuration("STATEMENT_INTERVAL", time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
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

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleHistorySheetName == "" {
			errors = append(errors, "Google history sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleCredentialsFile != ""
		if !hasFile && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.ArchiveTimeZone != "" && c.ArchiveTimeZone != "Local" {
		if _, err := time.LoadLocation(c.ArchiveTimeZone); err != nil {
			errors = append(errors, fmt.Sprintf("invalid archive time zone '%s': %v", c.ArchiveTimeZone, err))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.DashboardCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}

	if c.StatementInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid statement interval %v: must be at least 1 minute", c.StatementInterval))
	} else if c.StatementInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid statement interval %v: must be at most 24 hours", c.StatementInterval))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AuthEnabled reports whether bearer tokens are verified.
func (c *Config) AuthEnabled() bool {
	return c.AuthJWTSecret != ""
}

// ExportEnabled reports whether archive entries are exported to Google Sheets.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
