package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AGENT_JOBS_ROOT", "")
	t.Setenv("IDLE_TIMEOUT_SEC", "")
	t.Setenv("CLAUDE_COMMS_SERVER", "")
	os.Unsetenv("AGENT_JOBS_ROOT")
	os.Unsetenv("IDLE_TIMEOUT_SEC")
	os.Unsetenv("CLAUDE_COMMS_SERVER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IdleTimeoutSec != 300 {
		t.Fatalf("idle_timeout_sec = %d, want 300", cfg.IdleTimeoutSec)
	}
	if cfg.IdleTimeout() != 300*time.Second {
		t.Fatalf("IdleTimeout() = %v", cfg.IdleTimeout())
	}
	if cfg.CommsServer != "http://localhost:4000" {
		t.Fatalf("comms_server = %q", cfg.CommsServer)
	}
	if !strings.Contains(cfg.JobsRoot, "agent_jobs") {
		t.Fatalf("jobs_root = %q", cfg.JobsRoot)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	t.Setenv("AGENT_JOBS_ROOT", root)
	t.Setenv("IDLE_TIMEOUT_SEC", "120")
	t.Setenv("CLAUDE_COMMS_SERVER", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JobsRoot != root {
		t.Fatalf("jobs_root = %q, want %q", cfg.JobsRoot, root)
	}
	if cfg.IdleTimeoutSec != 120 {
		t.Fatalf("idle_timeout_sec = %d, want 120", cfg.IdleTimeoutSec)
	}
	if cfg.CommsServer != "http://localhost:9999" {
		t.Fatalf("comms_server = %q", cfg.CommsServer)
	}
}

func TestLoadConfigFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	os.Unsetenv("AGENT_JOBS_ROOT")
	os.Unsetenv("IDLE_TIMEOUT_SEC")
	os.Unsetenv("CLAUDE_COMMS_SERVER")

	dir := filepath.Join(xdg, "agentjob")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "idle_timeout_sec: 60\nrefresh_sec: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IdleTimeoutSec != 60 {
		t.Fatalf("idle_timeout_sec = %d, want 60 from file", cfg.IdleTimeoutSec)
	}
	if cfg.RefreshSec != 5 || cfg.Refresh() != 5*time.Second {
		t.Fatalf("refresh_sec = %d", cfg.RefreshSec)
	}
}

func TestEnvWinsOverConfigFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("IDLE_TIMEOUT_SEC", "45")

	dir := filepath.Join(xdg, "agentjob")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("idle_timeout_sec: 60\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IdleTimeoutSec != 45 {
		t.Fatalf("idle_timeout_sec = %d, want env value 45", cfg.IdleTimeoutSec)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{JobsRoot: "/tmp/jobs", IdleTimeoutSec: 300, RefreshSec: 2}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := &Config{JobsRoot: "/tmp/jobs", IdleTimeoutSec: 0, RefreshSec: 2}
	if err := bad.Validate(); err == nil {
		t.Fatal("zero idle timeout accepted")
	}
	bad = &Config{JobsRoot: "", IdleTimeoutSec: 300, RefreshSec: 2}
	if err := bad.Validate(); err == nil {
		t.Fatal("empty jobs root accepted")
	}
}
