package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/epropulse/epropulse/internal/auth"
	"github.com/epropulse/epropulse/internal/contact"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/search"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeSession  = "session"
)

// minSecretLength is the shortest accepted session signing secret.
const minSecretLength = 32

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Database DatabaseConfig    `yaml:"database"`
	Content  ContentConfig     `yaml:"content"`
	Media    MediaConfig       `yaml:"media"`
	Auth     AuthConfig        `yaml:"auth"`
	Editor   EditorConfig      `yaml:"editor"`
	SEO      seo.Thresholds    `yaml:"seo"`
	Search   SearchConfig      `yaml:"search"`
	Contact  contact.Config    `yaml:"contact"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Media.Validate(); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if err := validateThresholds(&c.SEO); err != nil {
		return fmt.Errorf("seo: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Contact.Validate(); err != nil {
		return fmt.Errorf("contact: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level   `yaml:"log_level"`
	HTTP     HTTPConfig   `yaml:"http"`
	Site     seo.SiteInfo `yaml:"site"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Site,
		validation.Field(&c.Site.Name, validation.Required),
		validation.Field(&c.Site.BaseURL, validation.Required, is.URL),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// CORSOrigins lists the origins allowed to call the API from a browser.
	// Empty disables CORS headers.
	CORSOrigins []string `yaml:"cors_origins"`
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

// DatabaseConfig selects the content store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = store.DriverSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(store.DriverSQLite, store.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// ContentConfig points at a directory of HTML posts imported into the
// store. An empty Dir disables the import.
type ContentConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// MediaConfig holds the uploaded images directory.
type MediaConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Validate validates the media configuration.
func (c *MediaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.MaxBytes, validation.Min(int64(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the back office is protected:
//   - "disabled" (default): every request acts as a local admin, suitable for local dev.
//   - "session": admins sign in with email and password; Secret signs the
//     session tokens and must be at least 32 bytes.
//
// When AdminEmail is set and no account exists yet, an admin is created
// with AdminPassword at startup.
type AuthConfig struct {
	Mode          string        `yaml:"mode"`
	Secret        string        `yaml:"secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeSession)),
		validation.Field(&c.SessionTTL, validation.Required),
		validation.Field(&c.AdminEmail, is.EmailFormat),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeSession && len(c.Secret) < minSecretLength {
		return fmt.Errorf("mode is %q but secret is shorter than %d bytes", AuthModeSession, minSecretLength)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeSession
}

// EditorConfig tunes authoring sessions.
type EditorConfig struct {
	SEODelay     time.Duration `yaml:"seo_delay"`
	ChangeDelay  time.Duration `yaml:"change_delay"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CacheEntries int           `yaml:"cache_entries"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SEODelay, validation.Required),
		validation.Field(&c.ChangeDelay, validation.Required),
		validation.Field(&c.SessionTTL, validation.Required),
		validation.Field(&c.CacheEntries, validation.Required, validation.Min(1)),
	)
}

func validateThresholds(t *seo.Thresholds) error {
	if err := validation.ValidateStruct(t,
		validation.Field(&t.WordsGood, validation.Required, validation.Min(1)),
		validation.Field(&t.WordsWarning, validation.Min(0)),
		validation.Field(&t.H2Good, validation.Min(0)),
		validation.Field(&t.LinksGood, validation.Min(0)),
		validation.Field(&t.ImagesGood, validation.Min(0)),
	); err != nil {
		return err
	}
	if t.WordsWarning > t.WordsGood {
		return fmt.Errorf("words_warning (%d) exceeds words_good (%d)", t.WordsWarning, t.WordsGood)
	}
	return nil
}

// SearchConfig tunes catalogue search and suggestions.
type SearchConfig struct {
	Fields          []string `yaml:"fields"`
	Suggestions     []string `yaml:"suggestions"`
	SuggestionLimit int      `yaml:"suggestion_limit"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SuggestionLimit, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Site: seo.SiteInfo{
				Name:    "Epropulse",
				BaseURL: "http://localhost:8080",
				Locale:  "fr_FR",
			},
		},
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    "./epropulse.db",
		},
		Media: MediaConfig{
			Dir:      "./media",
			MaxBytes: media.DefaultMaxBytes,
		},
		Auth: AuthConfig{
			Mode:       AuthModeDisabled,
			SessionTTL: auth.DefaultSessionTTL,
		},
		Editor: EditorConfig{
			SEODelay:     editor.DefaultSEODelay,
			ChangeDelay:  editor.DefaultChangeDelay,
			SessionTTL:   editor.DefaultSessionTTL,
			CacheEntries: seo.DefaultCacheEntries,
		},
		SEO: seo.DefaultThresholds(),
		Search: SearchConfig{
			SuggestionLimit: search.DefaultSuggestionLimit,
			Suggestions: []string{
				"Création de site web",
				"Référencement naturel",
				"Boutique en ligne",
				"Hébergement",
				"Maintenance WordPress",
			},
		},
		Contact: contact.DefaultConfig(),
	}
}
