package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fincore/internal/core"
)

type Config struct {
	// Database; empty keeps notifications in memory
	SQLiteDBPath string

	// Ledger seed (JSON)
	LedgerSeedPath string

	// AMQP; empty URL disables the fan-out
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Telegram; empty token disables the sink
	TelegramBotToken string
	TelegramChatID   int64
	TelegramBaseURL  string
	RelayTypes       []string

	// Logging
	LogLevel  string
	LogFormat string

	// Preferences defaults
	BudgetWarning     float64
	BudgetCritical    float64
	BudgetExceeded    float64
	UnusualSpending   float64
	LowBalance        float64
	QuietHoursEnabled bool
	QuietHoursStart   int
	QuietHoursEnd     int

	// Monitoring
	AdjustmentCategories []string
	CreditLowThreshold   float64
	DebounceWindow       time.Duration
	BudgetCacheTTL       time.Duration
	SpendingCacheTTL     time.Duration
	SweepInterval        time.Duration
	DailyCheckInterval   time.Duration
	PruneInterval        time.Duration

	// Popups
	PopupMaxVisible   int
	PopupPollInterval time.Duration
	PopupLifetime     time.Duration
}

func Load() *Config {
	defaults := core.DefaultPreferences()
	cfg := &Config{
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/fincore.db"),
		LedgerSeedPath: getEnv("LEDGER_SEED_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fincore"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),
		TelegramBaseURL:  getEnv("TELEGRAM_BASE_URL", ""),
		RelayTypes:       getEnvList("RELAY_TYPES", nil),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		BudgetWarning:     getEnvFloat("THRESHOLD_BUDGET_WARNING", defaults.Thresholds.BudgetWarning),
		BudgetCritical:    getEnvFloat("THRESHOLD_BUDGET_CRITICAL", defaults.Thresholds.BudgetCritical),
		BudgetExceeded:    getEnvFloat("THRESHOLD_BUDGET_EXCEEDED", defaults.Thresholds.BudgetExceeded),
		UnusualSpending:   getEnvFloat("THRESHOLD_UNUSUAL_SPENDING", defaults.Thresholds.UnusualSpending),
		LowBalance:        getEnvFloat("THRESHOLD_LOW_BALANCE", defaults.Thresholds.LowBalance),
		QuietHoursEnabled: getEnvBool("QUIET_HOURS_ENABLED", defaults.QuietHours.Enabled),
		QuietHoursStart:   getEnvInt("QUIET_HOURS_START", defaults.QuietHours.StartHour),
		QuietHoursEnd:     getEnvInt("QUIET_HOURS_END", defaults.QuietHours.EndHour),

		AdjustmentCategories: getEnvList("ADJUSTMENT_CATEGORIES", nil),
		CreditLowThreshold:   getEnvFloat("CREDIT_LOW_THRESHOLD", 0),
		DebounceWindow:       getEnvDuration("DEBOUNCE_WINDOW", 10*time.Second),
		BudgetCacheTTL:       getEnvDuration("BUDGET_CACHE_TTL", 30*time.Second),
		SpendingCacheTTL:     getEnvDuration("SPENDING_CACHE_TTL", 60*time.Second),
		SweepInterval:        getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		DailyCheckInterval:   getEnvDuration("DAILY_CHECK_INTERVAL", time.Hour),
		PruneInterval:        getEnvDuration("PRUNE_INTERVAL", time.Hour),

		PopupMaxVisible:   getEnvInt("POPUP_MAX_VISIBLE", 3),
		PopupPollInterval: getEnvDuration("POPUP_POLL_INTERVAL", 500*time.Millisecond),
		PopupLifetime:     getEnvDuration("POPUP_LIFETIME", 5*time.Second),
	}

	return cfg
}

// Preferences returns the notification preferences configured for the host.
func (c *Config) Preferences() core.Preferences {
	p := core.DefaultPreferences()
	p.Thresholds = core.Thresholds{
		BudgetWarning:   c.BudgetWarning,
		BudgetCritical:  c.BudgetCritical,
		BudgetExceeded:  c.BudgetExceeded,
		UnusualSpending: c.UnusualSpending,
		LowBalance:      c.LowBalance,
	}
	p.QuietHours = core.QuietHours{
		Enabled:   c.QuietHoursEnabled,
		StartHour: c.QuietHoursStart,
		EndHour:   c.QuietHoursEnd,
	}
	return p
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate SQLite directory if a database is configured
	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate ledger seed if provided
	if c.LedgerSeedPath != "" {
		if _, err := os.Stat(c.LedgerSeedPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("ledger seed file does not exist: %s", c.LedgerSeedPath))
		}
	}

	// Validate AMQP URL if provided
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

	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		errors = append(errors, "TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is provided")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Validate thresholds
	if c.BudgetWarning <= 0 || c.BudgetWarning > c.BudgetCritical || c.BudgetCritical > c.BudgetExceeded {
		errors = append(errors, fmt.Sprintf("invalid budget thresholds %v/%v/%v: must be positive and ascending",
			c.BudgetWarning, c.BudgetCritical, c.BudgetExceeded))
	}
	if c.UnusualSpending <= 100 {
		errors = append(errors, fmt.Sprintf("invalid unusual spending threshold %v: must be above 100", c.UnusualSpending))
	}
	if c.LowBalance < 0 || c.CreditLowThreshold < 0 {
		errors = append(errors, "low balance thresholds cannot be negative")
	}
	if c.QuietHoursStart < 0 || c.QuietHoursStart > 23 || c.QuietHoursEnd < 0 || c.QuietHoursEnd > 23 {
		errors = append(errors, fmt.Sprintf("invalid quiet hours %d-%d: hours must be between 0 and 23", c.QuietHoursStart, c.QuietHoursEnd))
	}

	// Validate intervals
	for _, iv := range []struct {
		name string
		d    time.Duration
	}{
		{"debounce window", c.DebounceWindow},
		{"budget cache TTL", c.BudgetCacheTTL},
		{"spending cache TTL", c.SpendingCacheTTL},
		{"sweep interval", c.SweepInterval},
		{"daily check interval", c.DailyCheckInterval},
		{"prune interval", c.PruneInterval},
		{"popup poll interval", c.PopupPollInterval},
		{"popup lifetime", c.PopupLifetime},
	} {
		if iv.d <= 0 {
			errors = append(errors, fmt.Sprintf("invalid %s %v: must be positive", iv.name, iv.d))
		}
	}
	if c.PopupMaxVisible < 1 {
		errors = append(errors, fmt.Sprintf("invalid popup max visible %d: must be at least 1", c.PopupMaxVisible))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
