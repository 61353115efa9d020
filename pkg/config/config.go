package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Roles accepted for basic auth users.
const (
	RoleAdmin    = "admin"
	RoleReadOnly = "readonly"
)

// Config is the root configuration for glowingstore.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	App     AppConfig     `yaml:"app"`
	API     APIConfig     `yaml:"api"`
	Swagger SwaggerConfig `yaml:"swagger"`
	Auth    AuthConfig    `yaml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen           string          `yaml:"listen"`
	HTTPSRedirection bool            `yaml:"https_redirection"`
	CORSOrigins      []string        `yaml:"cors_origins"`
	StaticRoot       string          `yaml:"static_root"`
	RequestTimeout   time.Duration   `yaml:"request_timeout"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"` // default 60, -1 to disable
}

// AppConfig describes the application in generated documents.
type AppConfig struct {
	ApplicationName        string   `yaml:"application_name"`
	ApplicationDescription string   `yaml:"application_description"`
	SupportedCultures      []string `yaml:"supported_cultures"`
}

// APIConfig contains the default version declarations of every controller.
type APIConfig struct {
	Versions []VersionConfig `yaml:"versions"`
}

// VersionConfig declares one API version.
type VersionConfig struct {
	Version    string `yaml:"version"`
	Deprecated bool   `yaml:"deprecated"`
}

// SwaggerConfig contains documentation endpoint settings.
type SwaggerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	Stylesheet     string `yaml:"stylesheet"`
	DocsPrefix     string `yaml:"docs_prefix"`
	InstancePrefix string `yaml:"instance_prefix"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	Basic BasicAuthConfig `yaml:"basic"`
}

// BasicAuthConfig contains basic auth settings.
type BasicAuthConfig struct {
	Enabled bool       `yaml:"enabled"`
	Users   []UserAuth `yaml:"users"`
}

// UserAuth represents a user configured for basic auth.
type UserAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Load reads and parses configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse parses configuration from YAML, applying defaults and validation.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables.
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config

	applyDefaults(&cfg)

	return &cfg
}

// expandEnvVars replaces ${VAR} and $VAR patterns with environment variable values.
func expandEnvVars(s string) string {
	// Match ${VAR} pattern.
	re := regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}

		return match
	})

	// Match $VAR pattern (only at word boundaries).
	re = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}

		return match
	})

	return s
}

// applyDefaults sets default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}

	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}

	if cfg.Server.StaticRoot == "" {
		cfg.Server.StaticRoot = "./wwwroot"
	}

	if cfg.Server.RateLimit.RequestsPerMinute == 0 {
		cfg.Server.RateLimit.RequestsPerMinute = 60
	}

	if cfg.App.ApplicationName == "" {
		cfg.App.ApplicationName = "GlowingStore API"
	}

	if len(cfg.App.SupportedCultures) == 0 {
		cfg.App.SupportedCultures = []string{"en-US"}
	}

	if len(cfg.API.Versions) == 0 {
		cfg.API.Versions = []VersionConfig{{Version: "1.0"}}
	}

	if cfg.Swagger.DocsPrefix == "" {
		cfg.Swagger.DocsPrefix = "/swagger"
	}

	for i := range cfg.Auth.Basic.Users {
		if cfg.Auth.Basic.Users[i].Role == "" {
			cfg.Auth.Basic.Users[i].Role = RoleReadOnly
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}

	if c.App.ApplicationName == "" {
		return fmt.Errorf("app.application_name is required")
	}

	for _, culture := range c.App.SupportedCultures {
		if _, err := language.Parse(culture); err != nil {
			return fmt.Errorf("app.supported_cultures: invalid culture %q: %w", culture, err)
		}
	}

	for _, v := range c.API.Versions {
		if _, err := versioning.ParseVersion(v.Version); err != nil {
			return fmt.Errorf("api.versions: %w", err)
		}
	}

	if !strings.HasPrefix(c.Swagger.DocsPrefix, "/") {
		return fmt.Errorf("swagger.docs_prefix must start with /")
	}

	if strings.Trim(c.Swagger.DocsPrefix, "/") == "" {
		return fmt.Errorf("swagger.docs_prefix must name a path below /")
	}

	if (c.Swagger.Username == "") != (c.Swagger.Password == "") {
		return fmt.Errorf("swagger.username and swagger.password must be set together")
	}

	if c.Auth.Basic.Enabled {
		if len(c.Auth.Basic.Users) == 0 {
			return fmt.Errorf("auth.basic.users is required when basic auth is enabled")
		}

		usernames := make(map[string]bool, len(c.Auth.Basic.Users))

		for _, user := range c.Auth.Basic.Users {
			if user.Username == "" {
				return fmt.Errorf("auth.basic.users: username is required")
			}

			if usernames[user.Username] {
				return fmt.Errorf("duplicate basic auth user: %s", user.Username)
			}

			usernames[user.Username] = true

			if user.Password == "" {
				return fmt.Errorf("user %s: password is required", user.Username)
			}

			if user.Role != RoleAdmin && user.Role != RoleReadOnly {
				return fmt.Errorf("user %s: unsupported role %q", user.Username, user.Role)
			}
		}
	}

	return nil
}

// Declarations returns the configured version declarations. Validate must
// have succeeded.
func (c *Config) Declarations() []versioning.Declaration {
	decls := make([]versioning.Declaration, 0, len(c.API.Versions))

	for _, v := range c.API.Versions {
		decls = append(decls, versioning.Declaration{
			Version:    versioning.MustParseVersion(v.Version),
			Deprecated: v.Deprecated,
		})
	}

	return decls
}

// String returns a sanitized string representation of the config (no secrets).
func (c *Config) String() string {
	var sb strings.Builder

	versions := make([]string, 0, len(c.API.Versions))
	for _, v := range c.API.Versions {
		if v.Deprecated {
			versions = append(versions, v.Version+" (deprecated)")
		} else {
			versions = append(versions, v.Version)
		}
	}

	sb.WriteString(fmt.Sprintf("Server: listen=%s https_redirection=%t static_root=%s rate_limit=%d/min\n",
		c.Server.Listen, c.Server.HTTPSRedirection, c.Server.StaticRoot, c.Server.RateLimit.RequestsPerMinute))
	sb.WriteString(fmt.Sprintf("App: name=%q cultures=%s\n",
		c.App.ApplicationName, strings.Join(c.App.SupportedCultures, ",")))
	sb.WriteString(fmt.Sprintf("API: versions=%s\n", strings.Join(versions, ",")))
	sb.WriteString(fmt.Sprintf("Swagger: enabled=%t protected=%t prefix=%s\n",
		c.Swagger.Enabled, c.Swagger.Username != "", c.Swagger.DocsPrefix))
	sb.WriteString(fmt.Sprintf("Auth: basic=%t users=%d\n",
		c.Auth.Basic.Enabled, len(c.Auth.Basic.Users)))

	return sb.String()
}
