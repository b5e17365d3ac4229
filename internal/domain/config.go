package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Download  DownloadConfig  `mapstructure:"download"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds the shared secret checked by the access gate.
// An empty Password disables the gate.
type AuthConfig struct {
	Password string `mapstructure:"password"`
}

// Enabled reports whether requests must carry the shared secret
func (a AuthConfig) Enabled() bool {
	return a.Password != ""
}

// ExtractorConfig contains yt-dlp invocation settings
type ExtractorConfig struct {
	Binary      string        `mapstructure:"binary"`
	CookieFile  string        `mapstructure:"cookie_file"`
	Timeout     time.Duration `mapstructure:"timeout"`      // 0 means no limit
	ReportPaths bool          `mapstructure:"report_paths"` // ask yt-dlp to print final file paths
	ExtraArgs   []string      `mapstructure:"extra_args"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	WorkDir       string `mapstructure:"work_dir"`
	LogsDir       string `mapstructure:"logs_dir"`
	Cleanup       bool   `mapstructure:"cleanup"`
	MaxConcurrent int    `mapstructure:"max_concurrent"` // 0 means unbounded
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Extractor: ExtractorConfig{
			Binary:      "yt-dlp",
			ReportPaths: true,
		},
		Download: DownloadConfig{
			WorkDir: "$HOME/.yt-fetch/work",
			LogsDir: "$HOME/.yt-fetch/logs",
			Cleanup: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
