package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "KGADMIN_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// command options and never reach the config.
var flagKeys = map[string]string{
	"base-url":       "base_url",
	"token":          "token",
	"timeout":        "timeout",
	"page-size":      "page_size",
	"env":            "environment",
	"verbose":        "verbose",
	"log-level":      "log_level",
	"output":         "output",
	"port":           "ui.port",
	"session-secret": "ui.session_secret",
	"demo":           "ui.demo",
	"open":           "ui.auto_open",
	"watch":          "ui.watch",
	"journal":        "journal",
}

// configExistsIn returns the config file in dir, if any.
func configExistsIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFileUpward searches upward from startDir for a kgadmin config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigFileUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// envKey transforms KGADMIN_BASE_URL -> base_url and KGADMIN_UI_PORT -> ui.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "ui_"); ok {
		return "ui." + rest
	}
	return key
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"base_url":    DefaultBaseURL,
		"timeout":     DefaultTimeout.String(),
		"environment": DefaultEnv,
		"verbose":     false,
		"log_level":   DefaultLogLevel,
		"output":      DefaultOutput,
		"ui.port":     DefaultUIPort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigFileUpward(cwd)
		}
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (KGADMIN_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Apply the selected environment's backend overrides. Values set by
	// flag or env var win over the environment block.
	if envCfg, ok := cfg.Environments[cfg.Environment]; ok {
		if envCfg.BaseURL != "" && !explicit(flags, "base-url", "base_url") {
			cfg.BaseURL = envCfg.BaseURL
		}
		if envCfg.Token != "" && !explicit(flags, "token", "token") {
			cfg.Token = envCfg.Token
		}
		if envCfg.Timeout > 0 && !explicit(flags, "timeout", "timeout") {
			cfg.Timeout = envCfg.Timeout
		}
	}

	// Expand environment variables in sensitive fields
	cfg.BaseURL = strings.TrimRight(expandEnvVars(cfg.BaseURL), "/")
	cfg.Token = expandEnvVars(cfg.Token)
	if cfg.UI != nil {
		cfg.UI.SessionSecret = expandEnvVars(cfg.UI.SessionSecret)
		cfg.UI.Watch = expandHome(expandEnvVars(cfg.UI.Watch))
	}
	cfg.Journal = expandHome(expandEnvVars(cfg.Journal))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// explicit reports whether a value was given by flag or env var.
func explicit(flags *pflag.FlagSet, flag, key string) bool {
	if flags != nil && flags.Changed(flag) {
		return true
	}
	_, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key))
	return ok
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
