package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kctheme.yaml")
	body := `
addr: ":9000"
realm: acme
theme:
  name: acme
  variant: dark
  manifests: [themes/acme.yaml]
presets: [presets/acme.json]
liveReload: false
shutdownGrace: 2s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("KCTHEME_REALM=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("KCTHEME_ADDR", ":9100")
	t.Setenv("KCTHEME_WATCH", "templates, mocks ,")
	t.Cleanup(func() { os.Unsetenv("KCTHEME_REALM") })

	cfg, err := Load(path, envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Addr = ":9100"
	want.Realm = "from-dotenv"
	want.Theme = Theme{Name: "acme", Variant: "dark", Manifests: []string{"themes/acme.yaml"}}
	want.Presets = []string{"presets/acme.json"}
	want.LiveReload = false
	want.ShutdownGrace = 2 * time.Second
	want.Watch = []string{"templates", "mocks"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	if err := Decode([]byte("adress: ':80'\n"), &cfg); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"LIVE_RELOAD":    "maybe",
		"SHUTDOWN_GRACE": "soon",
	}
	for key, value := range cases {
		cfg := Default()
		lookup := func(name string) (string, bool) {
			if name == EnvPrefix+key {
				return value, true
			}
			return "", false
		}
		if err := cfg.applyEnv(lookup); err == nil {
			t.Fatalf("%s=%s: expected error", key, value)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "trace"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected log level error")
	}
	cfg = Default()
	cfg.Addr = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected addr error")
	}
}
