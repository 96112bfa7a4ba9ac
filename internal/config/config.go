package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/SaweraJamal/PowerScan/pkg/models"
	"github.com/spf13/viper"
)

// Config represents the scanner configuration
type Config struct {
	// Scan settings
	Workers         int           `mapstructure:"workers"`          // number of worker goroutines
	MaxSize         string        `mapstructure:"max_size"`         // maximum file size to scan
	Extensions      []string      `mapstructure:"extensions"`       // file extensions to scan
	Exclude         []string      `mapstructure:"exclude"`          // gitignore-style exclude patterns
	DetectorTimeout time.Duration `mapstructure:"detector_timeout"` // per file and detector matching budget
	SnippetContext  int           `mapstructure:"snippet_context"`  // bytes of context around the earliest match
	PreviewBytes    int           `mapstructure:"preview_bytes"`    // size of the file preview

	// Catalog and selection
	CatalogPath string   `mapstructure:"catalog_path"` // catalog file or directory, empty for builtin
	Detectors   []string `mapstructure:"detectors"`    // selected detector ids, empty for all
	Severities  []string `mapstructure:"severities"`   // selected severities

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // console, json, records, csv, md, txt, html, sarif
	OutputFile   string `mapstructure:"output_file"`   // output file path

	Server  ServerConfig  `mapstructure:"server"`
	Advisor AdvisorConfig `mapstructure:"advisor"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	WatchCatalog bool   `mapstructure:"watch_catalog"` // reload the catalog when its files change
	MaxUpload    string `mapstructure:"max_upload"`    // maximum multipart body size
}

// AdvisorConfig holds migration advice settings
type AdvisorConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Model        string `mapstructure:"model"`         // haiku, sonnet, opus
	Token        string `mapstructure:"token"`         // Anthropic API token
	MaxDetectors int    `mapstructure:"max_detectors"` // cost control limit
	Timeout      int    `mapstructure:"timeout"`       // seconds per request
}

// DefaultExtensions are scanned when no extensions are configured
var DefaultExtensions = []string{"html", "htm", "css", "js", "mjs"}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("max_size", "2M")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("exclude", []string{".git/", "node_modules/", "vendor/", "*.min.js", "*.min.css"})
	v.SetDefault("detector_timeout", "2s")
	v.SetDefault("snippet_context", 40)
	v.SetDefault("preview_bytes", 500)
	v.SetDefault("catalog_path", "")
	v.SetDefault("detectors", []string{})
	v.SetDefault("severities", []string{"major", "minor"})
	v.SetDefault("report_format", "")
	v.SetDefault("output_file", "")

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.watch_catalog", false)
	v.SetDefault("server.max_upload", "32M")

	// Advisor defaults
	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "haiku")
	v.SetDefault("advisor.token", "")
	v.SetDefault("advisor.max_detectors", 10)
	v.SetDefault("advisor.timeout", 30)

	// Read environment variables, POWERSCAN_SERVER_ADDR for server.addr
	v.SetEnvPrefix("POWERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from defaults, an optional powerscan.yaml in
// the working directory and environment variables
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("powerscan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadConfigFrom loads configuration from an explicit config file
func LoadConfigFrom(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ShouldScanFile determines if a file should be scanned based on extension
func (c *Config) ShouldScanFile(extension string) bool {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))

	exts := c.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		if strings.ToLower(strings.TrimPrefix(ext, ".")) == extension {
			return true
		}
	}
	return false
}

// SeverityFilter returns the configured severities. Unknown names are ignored.
func (c *Config) SeverityFilter() []models.Severity {
	var out []models.Severity
	seen := make(map[models.Severity]bool)
	for _, s := range c.Severities {
		sev, ok := models.ParseSeverity(s)
		if !ok || seen[sev] {
			continue
		}
		seen[sev] = true
		out = append(out, sev)
	}
	return out
}

// DetectorSelection returns the configured detector ids, or all when none are set
func (c *Config) DetectorSelection(all []string) []string {
	if len(c.Detectors) == 0 {
		return all
	}
	return c.Detectors
}
