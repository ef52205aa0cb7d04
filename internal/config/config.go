// Package config provides configuration management for the proxy, loaded
// from environment variables and a YAML file via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/relaykit/relaykit/internal/domain"
)

// ProviderConfig describes one named upstream: its credential flavor, key
// pool, base URL, and optional access-key gate.
type ProviderConfig struct {
	// Name is the lowercase, unique route segment ("/<name>/...").
	Name string `json:"name" mapstructure:"name"`

	// Flavor is "openai" or "gemini".
	Flavor domain.Flavor `json:"flavor" mapstructure:"flavor"`

	// Keys is the ordered list of upstream API keys for this provider.
	Keys []string `json:"keys" mapstructure:"keys"`

	// BaseURL is the absolute upstream base URL.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// AccessKey, if set, must be presented by clients via [ACCESS_KEY:...].
	AccessKey string `json:"access_key" mapstructure:"access_key"`

	// DefaultModel is opaque metadata, unused by the core.
	DefaultModel string `json:"default_model" mapstructure:"default_model"`

	// RotationCodes overrides the default {429} rotation policy for this
	// provider when the client does not supply [STATUS_CODES:...].
	RotationCodes []int `json:"rotation_codes" mapstructure:"rotation_codes"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host                   string `json:"host" mapstructure:"host"`
	Port                   int    `json:"port" mapstructure:"port"`
	ReadTimeoutSeconds     int    `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// AdminConfig holds the out-of-scope admin UI's credentials. The core
// never reads this; it is exposed only so the admin collaborator can be
// constructed from the same snapshot.
type AdminConfig struct {
	Password string `json:"password" mapstructure:"password"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	Format     string `json:"format" mapstructure:"format"`
	OutputPath string `json:"output_path" mapstructure:"output_path"`
}

// Configuration holds the full application configuration snapshot.
type Configuration struct {
	Server    ServerConfig     `json:"server" mapstructure:"server"`
	Providers []ProviderConfig `json:"providers" mapstructure:"providers"`

	// Legacy holds the pre-constructed clients for the /gemini/* and
	// /openai/* built-in aliases, keyed by "gemini"/"openai". Populated
	// only when the admin wants those aliases to work without also
	// declaring a same-named entry in Providers (which would make the
	// alias redundant, since a same-named provider always wins routing).
	Legacy map[string]ProviderConfig `json:"legacy" mapstructure:"legacy"`

	Admin   AdminConfig   `json:"admin" mapstructure:"admin"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// Provider returns the provider config matching name, case-insensitively.
func (c *Configuration) Provider(name string) (ProviderConfig, bool) {
	lname := strings.ToLower(name)
	for _, p := range c.Providers {
		if strings.ToLower(p.Name) == lname {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// LegacyProvider returns the pre-constructed legacy client config for a
// /gemini/* or /openai/* alias, case-insensitively. The map key backfills
// Name when the config omitted it, so ClientCache never keys two distinct
// legacy entries under the same empty name.
func (c *Configuration) LegacyProvider(name string) (ProviderConfig, bool) {
	for key, p := range c.Legacy {
		if strings.EqualFold(key, name) {
			if p.Name == "" {
				p.Name = key
			}
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// Validate checks the configuration for required fields, accumulating
// every error found rather than stopping at the first one.
func (c *Configuration) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if len(c.Providers) == 0 {
		errs = append(errs, "providers cannot be empty, at least one provider is required")
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("providers[%d].name is required", i))
		} else {
			lname := strings.ToLower(p.Name)
			if _, dup := seen[lname]; dup {
				errs = append(errs, fmt.Sprintf("providers[%d].name %q is not unique", i, p.Name))
			}
			seen[lname] = struct{}{}
		}

		if !p.Flavor.Valid() {
			errs = append(errs, fmt.Sprintf("providers[%d].flavor %q must be 'openai' or 'gemini'", i, p.Flavor))
		}

		if p.BaseURL == "" {
			errs = append(errs, fmt.Sprintf("providers[%d].base_url is required", i))
		} else if u, err := url.Parse(p.BaseURL); err != nil || !u.IsAbs() {
			errs = append(errs, fmt.Sprintf("providers[%d].base_url %q must be an absolute URL", i, p.BaseURL))
		}

		nonEmpty := 0
		for _, k := range p.Keys {
			if k != "" {
				nonEmpty++
			}
		}
		if nonEmpty == 0 {
			errs = append(errs, fmt.Sprintf("providers[%d].keys must contain at least one non-empty key", i))
		}
	}

	for name, p := range c.Legacy {
		if !p.Flavor.Valid() {
			errs = append(errs, fmt.Sprintf("legacy[%s].flavor %q must be 'openai' or 'gemini'", name, p.Flavor))
		}
		if p.BaseURL == "" {
			errs = append(errs, fmt.Sprintf("legacy[%s].base_url is required", name))
		} else if u, err := url.Parse(p.BaseURL); err != nil || !u.IsAbs() {
			errs = append(errs, fmt.Sprintf("legacy[%s].base_url %q must be an absolute URL", name, p.BaseURL))
		}
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid, must be one of: debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Provider is the read-only interface the core (C1-C7) consumes from a
// configuration source. Anything holding a *Configuration snapshot, or an
// atomic reload wrapper such as Store below, satisfies it.
type Provider interface {
	Snapshot() *Configuration
}

// Store is an atomically-swappable Configuration snapshot. Readers never
// observe a partially-updated configuration: Reload swaps the pointer in
// a single atomic store, and Snapshot reads it in a single atomic load.
type Store struct {
	current atomic.Pointer[Configuration]
}

// NewStore creates a Store already holding cfg.
func NewStore(cfg *Configuration) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the currently active configuration.
func (s *Store) Snapshot() *Configuration {
	return s.current.Load()
}

// Reload atomically replaces the active configuration.
func (s *Store) Reload(cfg *Configuration) {
	s.current.Store(cfg)
}
