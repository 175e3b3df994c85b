package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	cfg, _, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "5050" {
		t.Fatalf("port=%q, want 5050", cfg.Server.Port)
	}
	if cfg.Agent.Provider != "elevenlabs" || cfg.Agent.TimeoutSeconds != 20 {
		t.Fatalf("unexpected agent defaults: %+v", cfg.Agent)
	}
	if cfg.Scheduler.Spec != "* * * * *" {
		t.Fatalf("scheduler spec=%q", cfg.Scheduler.Spec)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "config.yaml"), `
server:
  port: "8080"
database:
  driver: sqlite
  path: /tmp/gm.db
agent:
  provider: openai
`)
	t.Setenv("GOODMIND_AGENT_AGENT_ID", "agent-from-env")
	t.Setenv("GOODMIND_OPENAI_API_KEY", "sk-test")

	cfg, _, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port=%q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/gm.db" {
		t.Fatalf("database=%+v", cfg.Database)
	}
	if cfg.Agent.Provider != "openai" {
		t.Fatalf("provider=%q", cfg.Agent.Provider)
	}
	if cfg.Agent.AgentID != "agent-from-env" {
		t.Fatalf("agent id=%q, want env override", cfg.Agent.AgentID)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("openai key=%q", cfg.OpenAI.APIKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "GOODMIND_AGENT_API_KEY=xi-from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("GOODMIND_AGENT_API_KEY") })

	cfg, _, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.APIKey != "xi-from-dotenv" {
		t.Fatalf("api key=%q, want value from .env", cfg.Agent.APIKey)
	}
}
