package sanitize

import (
	"strings"
	"testing"
)

func TestKcSanitize_KeepsFormattingDropsScripts(t *testing.T) {
	input := `Invalid <b>email</b><br><script>alert(1)</script><a href="javascript:alert(1)">x</a><a href="https://example.com/help">help</a>`
	got := KcSanitize(input)

	for _, unwanted := range []string{"<script", "alert(1)", "javascript:"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("expected %q removed, got %q", unwanted, got)
		}
	}
	for _, wanted := range []string{"<b>email</b>", "<br", `href="https://example.com/help"`} {
		if !strings.Contains(got, wanted) {
			t.Fatalf("expected %q kept, got %q", wanted, got)
		}
	}

	if again := KcSanitize(input); again != got {
		t.Fatalf("cached result differs: %q vs %q", again, got)
	}
}

func TestKcSanitize_Empty(t *testing.T) {
	if got := KcSanitize("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestText(t *testing.T) {
	if got := Text("<p>Hello <b>there</b></p>"); got != "Hello there" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestSVG_RemovesScriptsAndHandlers(t *testing.T) {
	raw := `<svg viewBox="0 0 24 24" onload="alert(1)"><script>alert(1)</script><path d="M0 0h24v24H0z" onclick="x()"/></svg>`
	got := SVG(raw)
	if strings.Contains(got, "script") || strings.Contains(got, "onload") || strings.Contains(got, "onclick") {
		t.Fatalf("expected unsafe content removed, got %q", got)
	}
	if !strings.Contains(got, `d="M0 0h24v24H0z"`) {
		t.Fatalf("expected path data kept, got %q", got)
	}
}
