// Package config provides configuration management for the proxy.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "RELAY_PROXY"

	// EnvKeysPrefix is the prefix for per-provider key overrides, e.g.
	// RELAY_PROXY_KEYS_OPENAI=sk-a,sk-b. This takes priority over any keys
	// for the same provider found in the config file.
	EnvKeysPrefix = "RELAY_PROXY_KEYS_"
)

// Load reads configuration from the given path (or the default search
// path when empty), applies environment-variable key overrides, and
// validates the result.
func Load(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/relaykit")
		v.AddConfigPath("$HOME/.relaykit")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintf(os.Stderr, "[proxy] config file not found, using environment variables and defaults only\n")
		} else {
			return nil, &ConfigError{Op: "read", Err: fmt.Errorf("failed to read config file: %w", err)}
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Op: "unmarshal", Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	applyKeyOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Watch installs a Viper config-file watcher that invokes onChange with a
// freshly reloaded configuration every time the underlying file changes.
// Invalid reloads are dropped (logged by the caller via the returned
// error channel semantics: onChange is simply never called for them).
func Watch(configPath string, onChange func(*Configuration)) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load(configPath)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "")
}

// applyKeyOverrides scans the environment for RELAY_PROXY_KEYS_<PROVIDER>
// variables and, when present, replaces that provider's key list.
func applyKeyOverrides(cfg *Configuration) {
	for i := range cfg.Providers {
		envName := EnvKeysPrefix + strings.ToUpper(cfg.Providers[i].Name)
		raw := os.Getenv(envName)
		if raw == "" {
			continue
		}

		keys := make([]string, 0)
		for _, k := range strings.Split(raw, ",") {
			k = strings.TrimSpace(k)
			if k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			cfg.Providers[i].Keys = keys
			fmt.Fprintf(os.Stderr, "[proxy] provider %q keys overridden from %s\n", cfg.Providers[i].Name, envName)
		}
	}
}
