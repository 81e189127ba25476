package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/faultline/logger"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != EnvDevelopment {
			t.Errorf("expected %q, got %q", EnvDevelopment, cfg.Environment)
		}
		if cfg.Logging.Level != "debug" || cfg.Logging.FilesEnabled() {
			t.Errorf("expected debug console-only logging, got %+v", cfg.Logging)
		}
	})

	t.Run("production propagates to logging", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if !cfg.IsProduction() || !cfg.Logging.IsProduction() {
			t.Fatal("expected production profile")
		}
		if cfg.Logging.Level != "info" || !cfg.Logging.FilesEnabled() || !cfg.Logging.RedactionEnabled() {
			t.Errorf("unexpected production logging %+v", cfg.Logging)
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected service name propagated, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("any other value is a development profile", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "staging"}
		cfg.ApplyDefaults()
		if cfg.IsProduction() {
			t.Error("staging must not be production")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid", ServiceConfig{Name: "svc"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name cannot be empty"},
		{"bad log level", ServiceConfig{Name: "svc", Logging: logger.Config{Level: "loud"}}, true, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server        struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: test-service
environment: staging
logging:
  level: warn
  max_age: 7
server:
  port: 9090
`)

	var cfg testConfig
	if err := LoadConfig("test-service", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "test-service" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.MaxAge != 7 {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "name: svc\nenvironment: development\nserver:\n  port: 8080\n")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOGGING_MAX_BODY_BYTES", "1024")

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("ENVIRONMENT must override the file, got %q", cfg.Environment)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected 7070, got %d", cfg.Server.Port)
	}
	if cfg.Logging.MaxBodyBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.Logging.MaxBodyBytes)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "FAULTLINE_TEST_NAME=from-env-file\n")
	t.Cleanup(func() { os.Unsetenv("FAULTLINE_TEST_NAME") })

	var cfg struct {
		Faultline struct {
			Test struct {
				Name string `mapstructure:"name"`
			} `mapstructure:"test"`
		} `mapstructure:"faultline"`
	}
	if err := LoadConfig("svc", &cfg, WithConfigFile(filepath.Join(dir, "none.yml")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Faultline.Test.Name != "from-env-file" {
		t.Errorf("expected value from .env, got %q", cfg.Faultline.Test.Name)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "name: [unterminated\n")

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(configPath)); err == nil {
		t.Fatal("expected an error for a malformed config file")
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./config/config.yml":     true,
		"../.env.my-svc":          true,
		"./.env":                  true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "../.env.my-svc" {
		t.Errorf("expected the service env file first, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml", EnvFile: "/etc/svc.env"})
	if files.ConfigFile != "/etc/svc.yml" || files.EnvFile != "/etc/svc.env" {
		t.Errorf("explicit paths must win, got %+v", files)
	}
}

func TestLoadConfigUsesFileSystem(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"/virtual/.env": true}}
	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithFileSystem(fs), WithEnvFile("/virtual/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "/virtual/.env" {
		t.Errorf("expected the env file to be loaded through the filesystem, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("LOGGING_MAX_BODY_BYTES")
	for _, want := range []string{"logging_max_body_bytes", "logging.max_body_bytes", "logging.max.body_bytes"} {
		found := false
		for _, v := range got {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}

	if got := envKeyVariants("ENVIRONMENT"); len(got) != 1 || got[0] != "environment" {
		t.Errorf("single-word keys map to themselves, got %v", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem != fs || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config %+v", lc)
	}
}
