package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("INFOBOARD_TOKEN", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebHost != "127.0.0.1" {
		t.Errorf("WebHost = %q, want default", cfg.WebHost)
	}
	if cfg.WebPort != 7380 {
		t.Errorf("WebPort = %d, want default", cfg.WebPort)
	}
	if cfg.Token != "" {
		t.Errorf("Token = %q, want empty", cfg.Token)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	data := `{"token":"abc123","web_port":9000,"message_delay_ms":500,"disabled_tools":["section_command"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Token != "abc123" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d", cfg.WebPort)
	}
	// Defaults still fill unset fields
	if cfg.WebHost != "127.0.0.1" {
		t.Errorf("WebHost = %q", cfg.WebHost)
	}
	if cfg.MessageDelayMS != 500 {
		t.Errorf("MessageDelayMS = %d", cfg.MessageDelayMS)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "section_command" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_TokenFromEnv(t *testing.T) {
	t.Setenv("INFOBOARD_TOKEN", "env-token")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Token)
	}
}

func TestLoad_FileTokenBeatsEnv(t *testing.T) {
	t.Setenv("INFOBOARD_TOKEN", "env-token")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"token":"file-token"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Token)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestMerge(t *testing.T) {
	base := &Config{WebHost: "0.0.0.0", WebPort: 7380, DisabledTools: []string{"a"}}
	overlay := &Config{WebPort: 8000, DBMaxOpenConns: 1, DisabledTools: []string{"a", "b"}}

	got := Merge(base, overlay)
	if got.WebHost != "0.0.0.0" {
		t.Errorf("WebHost = %q", got.WebHost)
	}
	if got.WebPort != 8000 {
		t.Errorf("WebPort = %d", got.WebPort)
	}
	if got.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d", got.DBMaxOpenConns)
	}
	if len(got.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v", got.DisabledTools)
	}
}
