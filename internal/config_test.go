package internal

import (
	"strings"
	"testing"

	"github.com/epropulse/epropulse/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q, want :8080", cfg.App.HTTP.Address())
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	cfg.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_SessionModeValid(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	cfg.Mode = AuthModeSession
	cfg.Secret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("session mode with secret should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("session mode should be enabled")
	}
}

func TestAuthConfig_SessionModeShortSecret(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	cfg.Mode = AuthModeSession
	cfg.Secret = "short"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("session mode with short secret should fail")
	}
	if !strings.Contains(err.Error(), "secret is shorter") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	cfg.Mode = "magic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestAuthConfig_InvalidAdminEmail(t *testing.T) {
	cfg := NewDefaultConfig().Auth
	cfg.AdminEmail = "not-an-email"
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed admin email should fail validation")
	}
}

func TestDatabaseConfig(t *testing.T) {
	cfg := DatabaseConfig{DSN: "file.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default: %v", err)
	}
	if cfg.Driver != store.DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Driver, store.DriverSQLite)
	}

	cfg = DatabaseConfig{Driver: "mysql", DSN: "x"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown driver should fail validation")
	}

	cfg = DatabaseConfig{Driver: store.DriverPostgres}
	if err := cfg.Validate(); err == nil {
		t.Error("missing dsn should fail validation")
	}
}

func TestSEOThresholds_WarningAboveGood(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SEO.WordsWarning = cfg.SEO.WordsGood + 1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("words_warning above words_good should fail")
	}
	if !strings.HasPrefix(err.Error(), "seo: ") {
		t.Errorf("error = %v, want seo section prefix", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = AuthModeSession
	cfg.Auth.Secret = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
	if !strings.HasPrefix(err.Error(), "auth: ") {
		t.Errorf("error = %v, want auth section prefix", err)
	}
}

func TestFullConfig_SiteURLRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Site.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing site base_url should fail")
	}
}
