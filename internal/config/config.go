package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. ODI_SERVER_PORT.
const EnvPrefix = "ODI"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Phases    PhasesConfig    `yaml:"phases" envconfig:"PHASES"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig locates the source CSV files
type DataConfig struct {
	Dir                string `yaml:"dir" envconfig:"DIR"`
	PlayersFile        string `yaml:"players_file" envconfig:"PLAYERS_FILE"`
	BowlingFile        string `yaml:"bowling_file" envconfig:"BOWLING_FILE"`
	FallOfWicketsFile  string `yaml:"fow_file" envconfig:"FOW_FILE"`
	PartnershipsFile   string `yaml:"partnerships_file" envconfig:"PARTNERSHIPS_FILE"`
	MatchSummariesFile string `yaml:"match_summaries_file" envconfig:"MATCH_SUMMARIES_FILE"`
	// CacheKeyMode is "mtime" or "content".
	CacheKeyMode string `yaml:"cache_key_mode" envconfig:"CACHE_KEY_MODE"`
}

// PhasesConfig defines the innings phase boundaries in overs
type PhasesConfig struct {
	PowerplayEnd float64 `yaml:"powerplay_end" envconfig:"POWERPLAY_END"`
	MiddleEnd    float64 `yaml:"middle_end" envconfig:"MIDDLE_END"`
	InningsOvers float64 `yaml:"innings_overs" envconfig:"INNINGS_OVERS"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	// TraceExporter is "stdout" or "none"
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration. Defaults are overlaid by the YAML file at
// path (or the first file found in the usual locations when path is empty),
// then by ODI_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("unsupported log output %q", c.Logging.Output)
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be set")
	}
	for name, v := range map[string]string{
		"players_file":      c.Data.PlayersFile,
		"bowling_file":      c.Data.BowlingFile,
		"fow_file":          c.Data.FallOfWicketsFile,
		"partnerships_file": c.Data.PartnershipsFile,
	} {
		if v == "" {
			return fmt.Errorf("data.%s must be set", name)
		}
	}
	if c.Data.CacheKeyMode != "mtime" && c.Data.CacheKeyMode != "content" {
		return fmt.Errorf("data.cache_key_mode must be mtime or content, got %q", c.Data.CacheKeyMode)
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter %q", c.Telemetry.TraceExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0, 1]")
	}

	p := c.Phases
	if p.PowerplayEnd <= 0 || p.PowerplayEnd >= p.MiddleEnd || p.MiddleEnd >= p.InningsOvers {
		return fmt.Errorf("phase boundaries must satisfy 0 < powerplay_end < middle_end < innings_overs")
	}
	return nil
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501", "http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Dir:                "data",
			PlayersFile:        "player_info_clean.csv",
			BowlingFile:        "bowling_clean.csv",
			FallOfWicketsFile:  "fow_clean.csv",
			PartnershipsFile:   "partnership_clean.csv",
			MatchSummariesFile: "match_summary_clean.csv",
			CacheKeyMode:       "mtime",
		},
		Phases: PhasesConfig{
			PowerplayEnd: 10,
			MiddleEnd:    40,
			InningsOvers: 50,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "crickalytics",
			Environment:    "development",
			TracingEnabled: false,
			MetricsEnabled: true,
			TraceExporter:  "stdout",
			SampleRatio:    1.0,
		},
	}
}
