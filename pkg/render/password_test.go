package render_test

import (
	"testing"

	"github.com/goliatone/go-kctheme/pkg/render"
)

func TestPasswordToggle(t *testing.T) {
	opts := render.RenderOptions{RevealedPasswords: map[string]bool{"password-new": true}}

	hidden := render.PasswordToggleFor("password", opts)
	if hidden.InputType() != "password" || hidden.AriaLabelKey() != "showPassword" {
		t.Fatalf("unexpected hidden state: %s %s", hidden.InputType(), hidden.AriaLabelKey())
	}

	revealed := render.PasswordToggleFor("password-new", opts)
	if revealed.InputType() != "text" || revealed.AriaLabelKey() != "hidePassword" {
		t.Fatalf("unexpected revealed state: %s %s", revealed.InputType(), revealed.AriaLabelKey())
	}
	if back := revealed.Toggle(); back.Revealed || back.InputID != "password-new" {
		t.Fatalf("toggle should hide again, got %+v", back)
	}
}
