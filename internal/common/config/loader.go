// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like TELEGRAM_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from several locations so the bot works when started
// from the repo root, cmd/bot, or a test directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig falls back to the raw environment variable names earlier
// deployments used, so an existing .env keeps working unchanged.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Telegram.Token == "" {
		if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
			cfg.Telegram.Token = val
		}
	}
	if cfg.DataSource.BaseURL == "" {
		if val := os.Getenv("MOCKAPI_URL"); val != "" {
			cfg.DataSource.BaseURL = val
		}
	}
	if cfg.DataSource.PropertiesURL == "" {
		if val := os.Getenv("PROPERTIES_URL"); val != "" {
			cfg.DataSource.PropertiesURL = val
		}
	}
	if cfg.DataSource.ComplaintsURL == "" {
		if val := os.Getenv("COMPLAINTS_URL"); val != "" {
			cfg.DataSource.ComplaintsURL = val
		}
	}
	if cfg.DataSource.APIKey == "" {
		if val := os.Getenv("MOCKAPI_KEY"); val != "" {
			cfg.DataSource.APIKey = val
		}
	}
	if val, set := os.LookupEnv("MOCKAPI_KEY_HEADER"); set && val != "" {
		cfg.DataSource.APIKeyHeader = val
	}
	// An explicitly empty prefix means "send the raw token".
	if val, set := os.LookupEnv("MOCKAPI_KEY_PREFIX"); set {
		cfg.DataSource.APIKeyPrefix = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "property-report-bot"
	}

	// Data source defaults
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 10000
	}
	if cfg.DataSource.APIKeyHeader == "" {
		cfg.DataSource.APIKeyHeader = "Authorization"
	}
	if cfg.DataSource.APIKeyPrefix == "" {
		cfg.DataSource.APIKeyPrefix = "Bearer"
	}

	// Telegram defaults
	if cfg.Telegram.MessageLimit == 0 {
		cfg.Telegram.MessageLimit = 4000
	}
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 60
	}

	// Digest defaults
	if cfg.Digest.Schedule == "" {
		cfg.Digest.Schedule = "0 8 * * *"
	}
	if cfg.Digest.TopCount == 0 {
		cfg.Digest.TopCount = 5
	}
	if cfg.Digest.AWS.Region == "" {
		cfg.Digest.AWS.Region = "us-east-1"
	}

	// Metrics defaults
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
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
}

// validateConfig validates critical configuration fields. A missing token or
// base URL is the single fatal condition of the whole system.
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if cfg.DataSource.BaseURL == "" {
		return fmt.Errorf("datasource.base_url is required")
	}
	if cfg.Telegram.MessageLimit < 1 {
		return fmt.Errorf("telegram.message_limit must be positive")
	}
	if cfg.Digest.Enabled && !cfg.Digest.Email.Enabled && !cfg.Digest.SMS.Enabled {
		return fmt.Errorf("digest is enabled but no digest channel is")
	}
	return nil
}
