package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/zettelgraph/internal/index"
	"github.com/starford/zettelgraph/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Source kinds.
const (
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Source SourceConfig      `yaml:"source"`
	Watch  WatchConfig       `yaml:"watch"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if c.ReadsVault() {
		if err := c.Vault.Validate(); err != nil {
			return err
		}
	}
	if c.Source.Kind == SourceSQLite {
		if err := c.SQLite.Validate(); err != nil {
			return err
		}
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ReadsVault reports whether the configured source parses the vault: always
// for the files source, and for the sqlite source only when sync is on.
func (c *Config) ReadsVault() bool {
	switch c.Source.Kind {
	case SourceSQLite:
		return c.Source.Sync
	default:
		return true
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig describes the note directory.
type VaultConfig struct {
	Path       string   `yaml:"path"`
	Recursive  bool     `yaml:"recursive"`
	Extensions []string `yaml:"extensions"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extensions, validation.Each(validation.In(toAny(parser.SupportedExtensions())...))),
	)
}

// SQLiteConfig holds the relational index location and driver.
type SQLiteConfig struct {
	Path   string `yaml:"path"`
	Driver string `yaml:"driver"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = index.DriverCGO
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Driver, validation.In(index.DriverCGO, index.DriverPure)),
	)
}

// SourceConfig selects where note records are read from.
//
// Kind controls the ingestion adapter:
//   - "files" (default): parse the vault directly on every build.
//   - "sqlite": read the relational index. The database is opened read-only
//     unless Sync is set, in which case vault notes are upserted into it
//     before each build. Rows the vault does not yield are kept.
type SourceConfig struct {
	Kind string `yaml:"kind"`
	Sync bool   `yaml:"sync"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if c.Kind == "" {
		c.Kind = SourceFiles
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required, validation.In(SourceFiles, SourceSQLite)),
	)
}

// WatchConfig controls vault watching in serve mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:       "./notes",
			Extensions: []string{".org", ".md"},
		},
		SQLite: SQLiteConfig{
			Path:   "./zettelgraph.db",
			Driver: index.DriverCGO,
		},
		Source: SourceConfig{
			Kind: SourceFiles,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

func toAny(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
