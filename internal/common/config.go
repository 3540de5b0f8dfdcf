package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML duration strings like "30s" decode
// directly into config fields.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Portal      PortalConfig   `toml:"portal"`
	Browser     BrowserConfig  `toml:"browser"`
	News        NewsConfig     `toml:"news"`
	Quotes      QuotesConfig   `toml:"quotes"`
	Analysis    AnalysisConfig `toml:"analysis"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// PortalConfig contains configuration for the fund portal scraper
type PortalConfig struct {
	URL                string   `toml:"url"`                   // Portal results page URL
	FactSheetURL       string   `toml:"fact_sheet_url"`        // Document endpoint URL template (4 ordered %s verbs: origin, period, variable, product)
	RequestDelay       Duration `toml:"request_delay"`         // Minimum delay between portal scrapes
	ResultsTimeout     Duration `toml:"results_timeout"`       // Max wait for the results table to appear
	RowSettleTimeout   Duration `toml:"row_settle_timeout"`    // Max wait for result rows to stop changing
	PeriodsTimeout     Duration `toml:"periods_timeout"`       // Max wait for the period dropdown to populate
	DownloadTimeout    Duration `toml:"download_timeout"`      // HTTP timeout for the document download
	MaxDocumentSize    int      `toml:"max_document_size"`     // Maximum accepted document size in bytes
	MaxHoldings        int      `toml:"max_holdings"`          // Cap on extracted holding names per document
	MinHoldingTextSize int      `toml:"min_holding_text_size"` // Minimum extracted text length before holdings parsing is attempted
}

// BrowserConfig contains headless Chrome session configuration
type BrowserConfig struct {
	UserAgent         string   `toml:"user_agent"`         // User agent presented to scraped sites
	NavigationTimeout Duration `toml:"navigation_timeout"` // Overall timeout for a single browser session
	StepTimeout       Duration `toml:"step_timeout"`       // Default per-step timeout inside a recipe
	SettleDelay       Duration `toml:"settle_delay"`       // Fallback fixed wait when no observable condition exists
	Headless          bool     `toml:"headless"`           // Run Chrome headless
	NoSandbox         bool     `toml:"no_sandbox"`         // Disable the Chrome sandbox (required in containers)
	WindowWidth       int      `toml:"window_width"`
	WindowHeight      int      `toml:"window_height"`
}

// NewsConfig contains configuration for the news search fallback
type NewsConfig struct {
	SearchURL  string `toml:"search_url"`  // News search URL template (1 %s verb: query)
	MaxResults int    `toml:"max_results"` // Maximum headlines to include in context
}

// QuotesConfig contains configuration for market quote research
type QuotesConfig struct {
	QuoteURL    string              `toml:"quote_url"`    // Quote page URL template (1 %s verb: symbol)
	MaxNews     int                 `toml:"max_news"`     // Maximum related headlines per symbol
	MaxArticles int                 `toml:"max_articles"` // Maximum full articles to fetch per symbol
	Symbols     map[string][]string `toml:"symbols"`      // Portfolio name -> ticker symbols
}

// AnalysisConfig contains configuration for AI report generation
type AnalysisConfig struct {
	Models      []string `toml:"models"`      // Model fallback chain, tried in order
	Timeout     string   `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32  `toml:"temperature"` // Completion temperature (default: 0.4)
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in skandia.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Portal: PortalConfig{
			URL:                "https://portal.skandia.com.co/om.rentabilidades.pl/oldmutual",
			FactSheetURL:       "https://portal.skandia.com.co/SkCo.Communications.Web/SkCo/Communications/Web/Security.aspx?Origen=%s&Period=%s&IdVariable=%s&Product=%s",
			RequestDelay:       Duration(2 * time.Second),
			ResultsTimeout:     Duration(15 * time.Second),
			RowSettleTimeout:   Duration(10 * time.Second),
			PeriodsTimeout:     Duration(10 * time.Second),
			DownloadTimeout:    Duration(30 * time.Second),
			MaxDocumentSize:    20 * 1024 * 1024, // 20MB
			MaxHoldings:        10,
			MinHoldingTextSize: 100,
		},
		Browser: BrowserConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavigationTimeout: Duration(90 * time.Second),
			StepTimeout:       Duration(10 * time.Second),
			SettleDelay:       Duration(3 * time.Second),
			Headless:          true,
			NoSandbox:         true,
			WindowWidth:       1920,
			WindowHeight:      1080,
		},
		News: NewsConfig{
			SearchURL:  "https://www.google.com/search?q=%s&tbm=nws&tbs=qdr:y&hl=es&gl=CO",
			MaxResults: 5,
		},
		Quotes: QuotesConfig{
			QuoteURL:    "https://finance.yahoo.com/quote/%s",
			MaxNews:     5,
			MaxArticles: 2,
			Symbols:     map[string][]string{},
		},
		Analysis: AnalysisConfig{
			Models: []string{
				"gemini-2.5-flash",
				"gemini-2.0-flash",
				"gemini-2.5-pro",
				"gemini-2.0-pro-exp",
				"gemini-flash-latest",
			},
			Timeout:     "2m",
			Temperature: 0.4,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SKANDIA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SKANDIA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SKANDIA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("SKANDIA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("SKANDIA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	// Portal configuration
	if url := os.Getenv("SKANDIA_PORTAL_URL"); url != "" {
		config.Portal.URL = url
	}
	if url := os.Getenv("SKANDIA_PORTAL_FACT_SHEET_URL"); url != "" {
		config.Portal.FactSheetURL = url
	}
	if delay := os.Getenv("SKANDIA_PORTAL_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.Portal.RequestDelay = Duration(d)
		}
	}

	// Browser configuration
	if userAgent := os.Getenv("SKANDIA_BROWSER_USER_AGENT"); userAgent != "" {
		config.Browser.UserAgent = userAgent
	}
	if headless := os.Getenv("SKANDIA_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if noSandbox := os.Getenv("SKANDIA_BROWSER_NO_SANDBOX"); noSandbox != "" {
		if ns, err := strconv.ParseBool(noSandbox); err == nil {
			config.Browser.NoSandbox = ns
		}
	}
	if timeout := os.Getenv("SKANDIA_BROWSER_NAVIGATION_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Browser.NavigationTimeout = Duration(t)
		}
	}

	// Analysis configuration
	if timeout := os.Getenv("SKANDIA_ANALYSIS_TIMEOUT"); timeout != "" {
		config.Analysis.Timeout = timeout
	}
	if temperature := os.Getenv("SKANDIA_ANALYSIS_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Analysis.Temperature = float32(t)
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// AnalysisTimeout returns the parsed analysis operation timeout
func (c *Config) AnalysisTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Analysis.Timeout); err == nil && d > 0 {
		return d
	}
	return 2 * time.Minute
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	switch c.Environment {
	case "production", "prod", "Production":
		return true
	}
	return false
}
