package appearance

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"light":  ModeLight,
		" DARK ": ModeDark,
		"system": ModeSystem,
		"":       ModeSystem,
		"sepia":  ModeSystem,
	}
	for raw, want := range cases {
		if got := ParseMode(raw); got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestFromRequestAndResolve(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := FromRequest(req); got != ModeSystem {
		t.Fatalf("no cookie should mean system, got %s", got)
	}
	if got := Resolve(ModeSystem, req); got != ModeLight {
		t.Fatalf("system without hint should resolve light, got %s", got)
	}

	req.Header.Set(PrefersColorSchemeHeader, "dark")
	if got := Resolve(ModeSystem, req); got != ModeDark {
		t.Fatalf("client hint ignored, got %s", got)
	}

	req.AddCookie(Cookie(ModeLight, false))
	if got := FromRequest(req); got != ModeLight {
		t.Fatalf("cookie ignored, got %s", got)
	}
	if got := Resolve(FromRequest(req), req); got != ModeLight {
		t.Fatalf("explicit mode must win over the hint, got %s", got)
	}
}

func TestNextCyclesModes(t *testing.T) {
	mode := ModeSystem
	var seen []Mode
	for i := 0; i < 3; i++ {
		mode = Next(mode)
		seen = append(seen, mode)
	}
	if seen[0] != ModeLight || seen[1] != ModeDark || seen[2] != ModeSystem {
		t.Fatalf("unexpected cycle %v", seen)
	}
}

func TestCookieClearsForSystem(t *testing.T) {
	if c := Cookie(ModeSystem, true); c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("system cookie should expire, got %+v", c)
	}
	if c := Cookie(ModeDark, true); c.Value != "dark" || !c.Secure {
		t.Fatalf("unexpected dark cookie %+v", c)
	}
}

func TestSelector(t *testing.T) {
	selector, err := NewSelector()
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select defaults: %v", err)
	}
	if selection.Theme != DefaultTheme || selection.Variant != "light" {
		t.Fatalf("unexpected default selection %s/%s", selection.Theme, selection.Variant)
	}

	selection, err = selector.Select("KCTHEME", "system")
	if err != nil {
		t.Fatalf("select system: %v", err)
	}
	if selection.Variant != "light" {
		t.Fatalf("system should select light, got %s", selection.Variant)
	}

	if _, err := selector.Select("other", ""); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if _, err := selector.Select("", "sepia"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if selector.Provider() == nil {
		t.Fatalf("expected go-theme provider")
	}
}

func TestRendererConfig_MergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:      "acme",
		Version:   "1.0.0",
		Tokens:    map[string]string{"brand": "#123456", "radius": "4px"},
		Templates: map[string]string{PartialInput: "themes/acme/input.html"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme/",
			Files:  map[string]string{AssetStylesheet: "theme.css", "cdn": "https://cdn.example.com/x.js"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{PartialSelect: "themes/acme/dark/select.html"},
				Assets:    theme.Assets{Files: map[string]string{AssetScript: "runtime.dark.js"}},
			},
		},
	}

	cfg := RendererConfig(&theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}, map[string]string{
		PartialInput:    "fallback/input.html",
		PartialTextarea: "fallback/textarea.html",
	})

	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	wantPartials := map[string]string{
		PartialInput:    "themes/acme/input.html",
		PartialTextarea: "fallback/textarea.html",
		PartialSelect:   "themes/acme/dark/select.html",
	}
	if diff := cmp.Diff(wantPartials, cfg.Partials); diff != "" {
		t.Fatalf("partials mismatch (-want +got):\n%s", diff)
	}
	wantVars := map[string]string{"--brand": "#654321", "--radius": "4px"}
	if diff := cmp.Diff(wantVars, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	for key, want := range map[string]string{
		AssetStylesheet: "/assets/themes/acme/theme.css",
		AssetScript:     "/assets/themes/acme/runtime.dark.js",
		"cdn":           "https://cdn.example.com/x.js",
		"missing":       "",
	} {
		if got := cfg.AssetURL(key); got != want {
			t.Fatalf("AssetURL(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRendererConfig_NilSelection(t *testing.T) {
	if cfg := RendererConfig(nil, nil); cfg != nil {
		t.Fatalf("expected nil config, got %+v", cfg)
	}
}

func TestLoadManifest(t *testing.T) {
	manifest, err := LoadManifest([]byte(`
name: acme
version: 1.2.0
tokens:
  color-primary: "#123456"
assets:
  prefix: /static/acme
  files:
    kctheme.stylesheet: acme.css
variants:
  light: {}
  dark:
    tokens:
      color-primary: "#654321"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if manifest.Name != "acme" || manifest.Version != "1.2.0" {
		t.Fatalf("unexpected manifest header: %s %s", manifest.Name, manifest.Version)
	}
	if manifest.Assets.Files[AssetStylesheet] != "acme.css" {
		t.Fatalf("assets not loaded: %#v", manifest.Assets)
	}
	if diff := cmp.Diff(map[string]string{"color-primary": "#654321"}, manifest.Variants["dark"].Tokens); diff != "" {
		t.Fatalf("dark tokens mismatch (-want +got):\n%s", diff)
	}
	if _, ok := manifest.Variants["light"]; !ok {
		t.Fatal("light variant missing")
	}

	selector, err := NewSelector(manifest)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "dark")
	if err != nil || selection.Theme != "acme" {
		t.Fatalf("select: %+v %v", selection, err)
	}
}

func TestLoadManifest_RequiresName(t *testing.T) {
	if _, err := LoadManifest([]byte("version: 1\n")); err == nil {
		t.Fatal("expected error for manifest without name")
	}
}
