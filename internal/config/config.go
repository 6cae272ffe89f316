package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "DIVCLI"

// ConfigFileEnv names the environment variable that points at a YAML config file.
const ConfigFileEnv = "DIVCLI_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig      `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig        `yaml:"paths" envconfig:"PATHS"`
	Sheets     SheetsConfig       `yaml:"sheets" envconfig:"SHEETS"`
	Screening  ScreeningConfig    `yaml:"screening" envconfig:"SCREENING"`
	Forecast   ForecastConfig     `yaml:"forecast" envconfig:"FORECAST"`
	MarketData MarketDataConfig   `yaml:"market_data" envconfig:"MARKET_DATA"`
	Render     RenderConfig       `yaml:"render" envconfig:"RENDER"`
	Server     ServerConfig       `yaml:"server" envconfig:"SERVER"`
	Tracing    TracingConfig      `yaml:"tracing" envconfig:"TRACING"`
	Baselines  []InstrumentConfig `yaml:"baselines" ignored:"true" validate:"dive"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TracingConfig selects the span exporter. "none" still records spans so
// trace ids reach the logs, it just never exports them.
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=none stdout"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against the working directory.
type PathsConfig struct {
	DataFile  string `yaml:"data_file" envconfig:"DATA_FILE"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	Holdings  string `yaml:"holdings" envconfig:"HOLDINGS"`
}

// SheetsConfig selects a Google spreadsheet as the data source.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	APIKey          string `yaml:"api_key" envconfig:"API_KEY"`
}

// ScreeningConfig holds screen thresholds. Yields are percentages, the
// payout ratio is a fraction.
type ScreeningConfig struct {
	Category          string  `yaml:"category" envconfig:"CATEGORY" validate:"required"`
	SPComparisonYield float64 `yaml:"sp_comparison_yield" envconfig:"SP_COMPARISON_YIELD" validate:"gte=0"`
	InflationRate     float64 `yaml:"inflation_rate" envconfig:"INFLATION_RATE"`
	MinYield          float64 `yaml:"min_yield" envconfig:"MIN_YIELD" validate:"gte=0"`
	MaxYield          float64 `yaml:"max_yield" envconfig:"MAX_YIELD" validate:"gtefield=MinYield"`
	MaxPayoutRatio    float64 `yaml:"max_payout_ratio" envconfig:"MAX_PAYOUT_RATIO" validate:"gt=0"`
	MinGrowthRate     float64 `yaml:"min_growth_rate" envconfig:"MIN_GROWTH_RATE"`
}

// ForecastConfig holds forecast defaults. Rates are percentages.
type ForecastConfig struct {
	Output               string  `yaml:"output" envconfig:"OUTPUT" validate:"required"`
	Capital              float64 `yaml:"capital" envconfig:"CAPITAL" validate:"gt=0"`
	SharePriceGrowthRate float64 `yaml:"share_price_growth_rate" envconfig:"SHARE_PRICE_GROWTH_RATE" validate:"gt=-100"`
	Years                int     `yaml:"years" envconfig:"YEARS" validate:"gte=1,lte=100"`
	TaxRate              float64 `yaml:"tax_rate" envconfig:"TAX_RATE" validate:"gte=0,lte=100"`
	Capitalizations      int     `yaml:"capitalizations" envconfig:"CAPITALIZATIONS" validate:"gte=1,lte=365"`
}

// MarketDataConfig configures the dividend data provider.
type MarketDataConfig struct {
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	APIKey            string        `yaml:"api_key" envconfig:"API_KEY"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gte=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	MaxAttempts       int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"gte=1"`
	Backoff           time.Duration `yaml:"backoff" envconfig:"BACKOFF" validate:"gte=0"`
	Concurrency       int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1"`
}

// RenderConfig sizes charts and console tables.
type RenderConfig struct {
	Width    int     `yaml:"width" envconfig:"WIDTH" validate:"gte=100"`
	Height   int     `yaml:"height" envconfig:"HEIGHT" validate:"gte=100"`
	Headroom float64 `yaml:"headroom" envconfig:"HEADROOM" validate:"gte=0"`
	MaxRows  int     `yaml:"max_rows" envconfig:"MAX_ROWS" validate:"gte=0"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int             `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// InstrumentConfig is a savings product plotted next to dividend forecasts.
// Rate is a percentage.
type InstrumentConfig struct {
	Name   string  `yaml:"name" validate:"required"`
	Rate   float64 `yaml:"rate" validate:"gt=0"`
	Scheme string  `yaml:"scheme" validate:"oneof=daily monthly annual"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their current value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the config file named by DIVCLI_CONFIG, or the
// first one found in the usual locations.
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"divcli.yaml",
		"configs/divcli.yaml",
		"../configs/divcli.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/divcli.log",
		},
		Paths: PathsConfig{
			DataFile:  "data/U.S.DividendChampions-LIVE.xlsx",
			OutputDir: ".",
			LogsDir:   "logs",
			Holdings:  "holdings.yaml",
		},
		Screening: ScreeningConfig{
			Category:          "All",
			SPComparisonYield: 1.61,
			InflationRate:     3.4,
			MinYield:          3.9,
			MaxYield:          10.0,
			MaxPayoutRatio:    0.75,
			MinGrowthRate:     0,
		},
		Forecast: ForecastConfig{
			Output:               "dividend-investment-gains.png",
			Capital:              10000,
			SharePriceGrowthRate: 7.4,
			Years:                4,
			TaxRate:              15,
			Capitalizations:      4,
		},
		MarketData: MarketDataConfig{
			BaseURL:           "https://api.polygon.io",
			RequestsPerSecond: 5.0 / 60,
			Burst:             1,
			Timeout:           30 * time.Second,
			MaxAttempts:       5,
			Backoff:           30 * time.Second,
			Concurrency:       2,
		},
		Render: RenderConfig{
			Width:    1280,
			Height:   960,
			Headroom: 0.2,
			MaxRows:  25,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRatio: 1.0,
		},
		Baselines: []InstrumentConfig{
			{Name: "Savings account", Rate: 4.05, Scheme: "daily"},
			{Name: "Bonds", Rate: 7.5, Scheme: "daily"},
			{Name: "Term deposit", Rate: 4.0, Scheme: "monthly"},
			{Name: "Promo deposit", Rate: 7.0, Scheme: "monthly"},
		},
	}
}
