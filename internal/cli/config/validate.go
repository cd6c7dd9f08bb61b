package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url, got %q\nHint: set base_url in kgadmin.yaml, KGADMIN_BASE_URL or --base-url", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", c.PageSize)
	}
	switch strings.ToLower(c.OutputFormat) {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("output must be one of auto|text|markdown|json, got %q", c.OutputFormat)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	return nil
}
