package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.BootstrapAdminPass != "" {
		t.Fatalf("expected empty BOOTSTRAP_ADMIN_PASSWORD when unset, got %q", cfg.BootstrapAdminPass)
	}
}

func TestLoadDefaultsToLocalSQLiteFile(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("BIND_HOST", "")
	t.Setenv("PORT", "9090")
	t.Setenv("RATES_CACHE_TTL_SECONDS", "nope")

	cfg := Load()
	if cfg.DBPath != "inventario_joyeria.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Address() != "127.0.0.1:9090" {
		t.Fatalf("expected loopback address, got %q", cfg.Address())
	}
	if cfg.RatesCacheTTLSeconds != 60 {
		t.Fatalf("expected fallback ttl 60, got %d", cfg.RatesCacheTTLSeconds)
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "JOYERIA_DOTENV_FRESH=from-file\nJOYERIA_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("JOYERIA_DOTENV_SET", "from-env")
	t.Cleanup(func() {
		_ = os.Unsetenv("JOYERIA_DOTENV_FRESH")
	})

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("JOYERIA_DOTENV_FRESH"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("JOYERIA_DOTENV_SET"); got != "from-env" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
}
