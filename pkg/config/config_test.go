package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServerBaseURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://127.0.0.1:8000", want: "http://127.0.0.1:8000"},
		{in: "http://127.0.0.1:8000/", want: "http://127.0.0.1:8000"},
		{in: "https://pool.example.com/v1", want: "https://pool.example.com"},
		{in: "https://pool.example.com/v1/", want: "https://pool.example.com"},
		{in: "https://pool.example.com/v1?x=1#frag", want: "https://pool.example.com"},
		{in: "pool.example.com", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		cfg := &ClientConfig{ServerURL: tc.in}
		got, err := cfg.ServerBaseURL()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ServerBaseURL(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ServerBaseURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ServerBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadOrCreateWritesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "poolctl.toml")
	cfg, err := LoadOrCreateClientConfig(path)
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	if cfg.ServerURL == "" {
		t.Fatal("default server_url is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created config: %v", err)
	}
	if !strings.Contains(string(b), "server_url") {
		t.Fatalf("created config missing server_url:\n%s", b)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poolctl.toml")
	want := &ClientConfig{ServerURL: "https://pool.example.com"}
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ServerURL != want.ServerURL {
		t.Fatalf("server_url = %q, want %q", got.ServerURL, want.ServerURL)
	}
}

func TestNormalizeFillsDefault(t *testing.T) {
	cfg := &ClientConfig{ServerURL: "  "}
	cfg.Normalize()
	if cfg.ServerURL != "http://127.0.0.1:8000" {
		t.Fatalf("normalized server_url = %q", cfg.ServerURL)
	}
}
