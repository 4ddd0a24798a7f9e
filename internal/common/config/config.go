// internal/common/config/config.go
package config

import (
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	DataSource DataSourceConfig `mapstructure:"datasource"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Digest     DigestConfig     `mapstructure:"digest"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DataSourceConfig describes the remote JSON endpoint the reports are built
// from. PropertiesURL and ComplaintsURL are optional; PropertiesURL falls back
// to BaseURL.
type DataSourceConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	PropertiesURL string `mapstructure:"properties_url"`
	ComplaintsURL string `mapstructure:"complaints_url"`
	APIKey        string `mapstructure:"api_key"`
	APIKeyHeader  string `mapstructure:"api_key_header"`
	APIKeyPrefix  string `mapstructure:"api_key_prefix"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

// AuthHeader returns the header name/value pair to attach to data source
// requests, or empty strings when no key is configured. An empty prefix sends
// the raw token.
func (d DataSourceConfig) AuthHeader() (string, string) {
	if d.APIKey == "" {
		return "", ""
	}
	value := d.APIKey
	if d.APIKeyPrefix != "" {
		value = d.APIKeyPrefix + " " + d.APIKey
	}
	return d.APIKeyHeader, value
}

// EffectivePropertiesURL returns the listing endpoint, falling back to BaseURL.
func (d DataSourceConfig) EffectivePropertiesURL() string {
	if strings.TrimSpace(d.PropertiesURL) != "" {
		return d.PropertiesURL
	}
	return d.BaseURL
}

type TelegramConfig struct {
	Token        string `mapstructure:"token"`
	MessageLimit int    `mapstructure:"message_limit"`
	PollTimeout  int    `mapstructure:"poll_timeout"` // seconds
}

// DigestConfig holds settings for the scheduled top-rated digest.
type DigestConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron expression
	TopCount int    `mapstructure:"top_count"`

	Email struct {
		Enabled    bool     `mapstructure:"enabled"`
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
	} `mapstructure:"email"`

	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sms"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
