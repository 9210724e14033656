package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/capture"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/logging"
	"github.com/lsd-consulting/lsd-interceptors-go/pkg/participant"
)

// Defaults.
const (
	DefaultListen       = ":8080"
	DefaultAdmin        = ":9090"
	DefaultSourceHeader = "User-Agent"
	DefaultTargetHeader = "Host"
	DefaultMemoryLimit  = 1000

	// StdoutOutput writes captured messages to standard output.
	StdoutOutput = "-"
)

// Environment overrides.
const (
	EnvListen   = "LSD_LISTEN"
	EnvUpstream = "LSD_UPSTREAM"
	EnvLogLevel = "LSD_LOG_LEVEL"
)

// Config is the capture proxy configuration.
type Config struct {
	// Listen is the proxy listen address.
	Listen string `yaml:"listen" json:"listen"`
	// Admin is the admin API listen address. Empty disables it.
	Admin string `yaml:"admin" json:"admin"`
	// Upstream is the base URL every proxied request is sent to.
	Upstream string `yaml:"upstream" json:"upstream"`

	ShowEncodedBody bool   `yaml:"showEncodedBody" json:"showEncodedBody"`
	SourceHeader    string `yaml:"sourceHeader" json:"sourceHeader"`
	TargetHeader    string `yaml:"targetHeader" json:"targetHeader"`

	// Output is an NDJSON file path, or "-" for stdout. Empty disables it.
	Output string `yaml:"output" json:"output"`
	// MemoryLimit bounds the messages kept for the admin API.
	MemoryLimit int `yaml:"memoryLimit" json:"memoryLimit"`

	Filter *capture.Filter `yaml:"filter,omitempty" json:"filter,omitempty"`
	Log    LogConfig       `yaml:"log" json:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used for missing fields.
func Default() *Config {
	return &Config{
		Listen:       DefaultListen,
		Admin:        DefaultAdmin,
		SourceHeader: DefaultSourceHeader,
		TargetHeader: DefaultTargetHeader,
		Output:       StdoutOutput,
		MemoryLimit:  DefaultMemoryLimit,
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

// ConfigError describes an invalid field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validLogFormats = map[string]bool{
	string(logging.FormatText): true,
	string(logging.FormatJSON): true,
}

// Validate checks the configuration and returns the first problem as a
// *ConfigError.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return &ConfigError{Field: "listen", Message: "listen address is required"}
	}
	if c.Admin != "" && c.Admin == c.Listen {
		return &ConfigError{Field: "admin", Message: "admin address must differ from listen address"}
	}

	if c.Upstream == "" {
		return &ConfigError{Field: "upstream", Message: "upstream URL is required"}
	}
	u, err := url.Parse(c.Upstream)
	if err != nil {
		return &ConfigError{Field: "upstream", Message: "invalid URL: " + err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "upstream", Message: fmt.Sprintf("unsupported scheme %q (must be http or https)", u.Scheme)}
	}
	if u.Host == "" {
		return &ConfigError{Field: "upstream", Message: "upstream URL has no host"}
	}

	if strings.TrimSpace(c.SourceHeader) == "" {
		return &ConfigError{Field: "sourceHeader", Message: "must not be blank"}
	}
	if strings.TrimSpace(c.TargetHeader) == "" {
		return &ConfigError{Field: "targetHeader", Message: "must not be blank"}
	}
	if c.MemoryLimit < 0 {
		return &ConfigError{Field: "memoryLimit", Message: "must be >= 0"}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return &ConfigError{Field: "log.level", Message: fmt.Sprintf("invalid level %q", c.Log.Level)}
	}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		return &ConfigError{Field: "log.format", Message: fmt.Sprintf("invalid format %q (must be text or json)", c.Log.Format)}
	}

	if err := c.Filter.Validate(); err != nil {
		return &ConfigError{Field: "filter", Message: err.Error()}
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup(EnvUpstream); ok && v != "" {
		c.Upstream = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Capture returns the interceptor configuration.
func (c *Config) Capture() *capture.Config {
	cfg := capture.DefaultConfig()
	cfg.ShowEncodedBody = c.ShowEncodedBody
	cfg.SourceName = participant.HeaderSource(c.SourceHeader)
	cfg.TargetName = participant.HeaderTarget(c.TargetHeader)
	cfg.Filter = c.Filter
	return cfg
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}
