package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Name    string        `yaml:"name"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
	Nested  struct {
		DSN string `yaml:"dsn"`
	} `yaml:"nested"`
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "port: 9090\ntimeout: 2s\n")
	cfg := &testConfig{Name: "default", Port: 8080}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, want default kept", cfg.Name)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_DSN", "postgres://db/site")
	path := writeFile(t, "port: 1\nnested:\n  dsn: ${TEST_CONFIG_DSN}\n")
	cfg := &testConfig{}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Nested.DSN != "postgres://db/site" {
		t.Errorf("dsn = %q", cfg.Nested.DSN)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeFile(t, "port: 1\nprot: 2\n")
	err := Load(path, &testConfig{})
	if err == nil {
		t.Fatal("expected unknown field error")
	}
	if !strings.Contains(err.Error(), "prot") {
		t.Errorf("error = %v, want mention of prot", err)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "name: x\n")
	err := Load(path, &testConfig{})
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("error = %v, want validation failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &testConfig{Port: 1}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	cfg := &testConfig{Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}

	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &testConfig{}); err == nil {
		t.Error("defaults should still be validated")
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg := &testConfig{Port: 3}
	if err := Decode([]byte(""), cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}
