package internal

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSourceConfig_EmptyKindDefaultsFiles(t *testing.T) {
	cfg := SourceConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty kind should default: %v", err)
	}
	if cfg.Kind != SourceFiles {
		t.Errorf("kind = %q, want %q", cfg.Kind, SourceFiles)
	}
}

func TestSourceConfig_InvalidKind(t *testing.T) {
	cfg := SourceConfig{Kind: "postgres"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid kind should fail validation")
	}
}

func TestSQLiteConfig_Driver(t *testing.T) {
	cfg := SQLiteConfig{Path: "x.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default: %v", err)
	}
	if cfg.Driver != "sqlite3" {
		t.Errorf("driver = %q", cfg.Driver)
	}
	cfg.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail validation")
	}
}

func TestVaultConfig_Extensions(t *testing.T) {
	cfg := VaultConfig{Path: "./notes", Extensions: []string{".org", ".txt"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unsupported extension should fail validation")
	}
}

func TestFullConfig_SQLiteRequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Kind = SourceSQLite
	cfg.SQLite.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("sqlite source without a path should fail")
	}
}

func TestFullConfig_FilesRequireVault(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("files source without a vault should fail")
	}
}

func TestFullConfig_SQLiteReadsVaultOnlyWithSync(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Kind = SourceSQLite
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sqlite source without sync needs no vault: %v", err)
	}
	if cfg.ReadsVault() {
		t.Error("sqlite source without sync should not read the vault")
	}

	cfg.Source.Sync = true
	if !cfg.ReadsVault() {
		t.Error("sqlite source with sync should read the vault")
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sync without a vault should fail")
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := WatchConfig{Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled || cfg.AuthEnabled() {
		t.Errorf("mode = %q", cfg.Mode)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "secret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}
