package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// Environment variables honoured without the YTFETCH_ prefix
var envAliases = map[string]string{
	"auth.password": "AUTHENTICATION_PASSWORD",
	"server.host":   "HOST",
	"server.port":   "PORT",
}

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.yt-fetch")
		v.AddConfigPath("/etc/yt-fetch")
	}

	setDefaults(v, config)

	v.SetEnvPrefix("YTFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envAliases {
		// Prefixed variable first, then the bare alias
		if err := v.BindEnv(key, "YTFETCH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("server.shutdown_timeout", config.Server.ShutdownTimeout)
	v.SetDefault("auth.password", config.Auth.Password)
	v.SetDefault("extractor.binary", config.Extractor.Binary)
	v.SetDefault("extractor.cookie_file", config.Extractor.CookieFile)
	v.SetDefault("extractor.timeout", config.Extractor.Timeout)
	v.SetDefault("extractor.report_paths", config.Extractor.ReportPaths)
	v.SetDefault("extractor.extra_args", config.Extractor.ExtraArgs)
	v.SetDefault("download.work_dir", config.Download.WorkDir)
	v.SetDefault("download.logs_dir", config.Download.LogsDir)
	v.SetDefault("download.cleanup", config.Download.Cleanup)
	v.SetDefault("download.max_concurrent", config.Download.MaxConcurrent)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.WorkDir = expandPath(config.Download.WorkDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Extractor.CookieFile = expandPath(config.Extractor.CookieFile)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout cannot be negative")
	}

	if config.Extractor.Binary == "" {
		return fmt.Errorf("extractor binary not configured")
	}

	if config.Extractor.Timeout < 0 {
		return fmt.Errorf("extractor timeout cannot be negative")
	}

	if config.Download.WorkDir == "" {
		return fmt.Errorf("download work directory not configured")
	}

	if config.Download.MaxConcurrent < 0 {
		return fmt.Errorf("max concurrent extractions cannot be negative")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
