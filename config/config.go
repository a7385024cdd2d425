// Package config loads service settings from an optional HCL file and
// environment variables, and validates them on startup.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the application configuration.
// Durations are Go duration strings such as "15s" or "5m".
type Config struct {
	Host           string `hcl:"host,optional"`
	Port           int    `hcl:"port,optional"`
	TempDir        string `hcl:"temp_dir,optional"`
	MaxUploadBytes int64  `hcl:"max_upload_bytes,optional"`
	BatchSize      int    `hcl:"batch_size,optional"`

	ReadTimeout     string `hcl:"read_timeout,optional"`
	RequestTimeout  string `hcl:"request_timeout,optional"`
	ShutdownTimeout string `hcl:"shutdown_timeout,optional"`

	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`

	// KeepaliveURL is pinged every KeepaliveInterval when set.
	KeepaliveURL      string `hcl:"keepalive_url,optional"`
	KeepaliveInterval string `hcl:"keepalive_interval,optional"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              8080,
		TempDir:           os.TempDir(),
		MaxUploadBytes:    50 << 20,
		BatchSize:         1000,
		ReadTimeout:       "15s",
		RequestTimeout:    "60s",
		ShutdownTimeout:   "30s",
		LogLevel:          "info",
		LogFormat:         "text",
		KeepaliveInterval: "10m",
	}
}

// Load reads the configuration from the given HCL file. Attributes missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the HCL file
// at path when path is not empty, then environment overrides. The result
// is validated.
func Resolve(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables:
//
//	PORT, TABCONV_HOST, TABCONV_TEMP_DIR, TABCONV_MAX_UPLOAD_BYTES,
//	LOG_LEVEL, LOG_FORMAT, TABCONV_KEEPALIVE_URL
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: invalid integer %q", v)
		}
		c.Port = port
	}
	if v, ok := lookup("TABCONV_MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TABCONV_MAX_UPLOAD_BYTES: invalid integer %q", v)
		}
		c.MaxUploadBytes = n
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"TABCONV_HOST", &c.Host},
		{"TABCONV_TEMP_DIR", &c.TempDir},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
		{"TABCONV_KEEPALIVE_URL", &c.KeepaliveURL},
	}
	for _, s := range strs {
		if v, ok := lookup(s.env); ok && v != "" {
			*s.dst = v
		}
	}
	return nil
}

// Validate checks that the configuration is valid.
// It returns an error listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port (%d) must be 1-65535", c.Port))
	}
	if c.TempDir == "" {
		errs = append(errs, "temp_dir is required")
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, "max_upload_bytes must be positive")
	}
	if c.BatchSize <= 0 {
		errs = append(errs, "batch_size must be positive")
	}

	durations := []struct {
		name, value string
		positive    bool
	}{
		{"read_timeout", c.ReadTimeout, false},
		{"request_timeout", c.RequestTimeout, true},
		{"shutdown_timeout", c.ShutdownTimeout, true},
		{"keepalive_interval", c.KeepaliveInterval, c.KeepaliveURL != ""},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s (%q) is not a duration", d.name, d.value))
		case parsed < 0:
			errs = append(errs, fmt.Sprintf("%s must be non-negative", d.name))
		case d.positive && parsed == 0:
			errs = append(errs, fmt.Sprintf("%s must be positive", d.name))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log_level (%q) must be one of: debug, info, warn, error", c.LogLevel))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("log_format (%q) must be one of: text, json", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Timeouts holds the parsed duration settings.
type Timeouts struct {
	Read      time.Duration
	Request   time.Duration
	Shutdown  time.Duration
	Keepalive time.Duration
}

// Timeouts parses the duration settings. Values that do not parse are
// zero; Validate reports them.
func (c *Config) Timeouts() Timeouts {
	parse := func(s string) time.Duration {
		d, _ := time.ParseDuration(s)
		return d
	}
	return Timeouts{
		Read:      parse(c.ReadTimeout),
		Request:   parse(c.RequestTimeout),
		Shutdown:  parse(c.ShutdownTimeout),
		Keepalive: parse(c.KeepaliveInterval),
	}
}

// Addr returns the server listen address in host:port format.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String returns a one-line summary of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Addr: %q, TempDir: %q, MaxUploadBytes: %d, BatchSize: %d, ", c.Addr(), c.TempDir, c.MaxUploadBytes, c.BatchSize)
	fmt.Fprintf(&b, "Timeouts: {Read: %s, Request: %s, Shutdown: %s}, ", c.ReadTimeout, c.RequestTimeout, c.ShutdownTimeout)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, Keepalive: {URL: %q, Interval: %s}}", c.LogLevel, c.LogFormat, c.KeepaliveURL, c.KeepaliveInterval)
	return b.String()
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("host", cty.StringVal(cfg.Host))
	root.SetAttributeValue("port", cty.NumberIntVal(int64(cfg.Port)))
	root.SetAttributeValue("temp_dir", cty.StringVal(cfg.TempDir))
	root.SetAttributeValue("max_upload_bytes", cty.NumberIntVal(cfg.MaxUploadBytes))
	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.AppendNewline()
	root.SetAttributeValue("read_timeout", cty.StringVal(cfg.ReadTimeout))
	root.SetAttributeValue("request_timeout", cty.StringVal(cfg.RequestTimeout))
	root.SetAttributeValue("shutdown_timeout", cty.StringVal(cfg.ShutdownTimeout))
	root.AppendNewline()
	root.SetAttributeValue("log_level", cty.StringVal(cfg.LogLevel))
	root.SetAttributeValue("log_format", cty.StringVal(cfg.LogFormat))
	root.AppendNewline()
	root.SetAttributeValue("keepalive_url", cty.StringVal(cfg.KeepaliveURL))
	root.SetAttributeValue("keepalive_interval", cty.StringVal(cfg.KeepaliveInterval))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
