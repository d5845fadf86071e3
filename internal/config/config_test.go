package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:4000" {
		t.Errorf("got server_url %q, want default", cfg.ServerURL)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("got timeout %d, want 30", cfg.TimeoutSeconds)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".diasync.yml")
	content := `server_url: https://diagrams.example.com
socket_url: wss://diagrams.example.com/ws
token: secret
user:
  id: u1
  email: ana@example.com
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "https://diagrams.example.com" {
		t.Errorf("got server_url %q", cfg.ServerURL)
	}
	if cfg.User.ID != "u1" || cfg.User.Email != "ana@example.com" {
		t.Errorf("got user %+v", cfg.User)
	}
	if cfg.Token != "secret" {
		t.Errorf("got token %q", cfg.Token)
	}
	// Unset fields keep defaults.
	if cfg.Serve.Port != 4000 {
		t.Errorf("got serve.port %d, want default 4000", cfg.Serve.Port)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DIASYNC_TOKEN", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("got token %q, want env override", cfg.Token)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".diasync.yml")

	cfg := DefaultConfig()
	cfg.Token = "secret"
	cfg.User.ID = "u1"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != "secret" || got.User.ID != "u1" {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"missing server url", func(c *Config) { c.ServerURL = "" }, true},
		{"relative server url", func(c *Config) { c.ServerURL = "localhost" }, true},
		{"http socket url", func(c *Config) { c.SocketURL = "http://x.example.com" }, true},
		{"empty socket url ok", func(c *Config) { c.SocketURL = "" }, false},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }, true},
		{"port out of range", func(c *Config) { c.Serve.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionUser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.User = UserConfig{ID: "u1", Email: "ana@example.com", FirstName: "Ana", LastName: "Gomez"}

	u := cfg.SessionUser()
	if !u.Valid() {
		t.Error("configured user should be valid")
	}
	if u.Participant().Email != "ana@example.com" {
		t.Errorf("got %+v", u.Participant())
	}
}
