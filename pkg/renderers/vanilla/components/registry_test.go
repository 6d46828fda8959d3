package components

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
)

func noopRenderer(*bytes.Buffer, profile.FieldState, ComponentData) error { return nil }

func TestRegistryDescriptorIsACopy(t *testing.T) {
	reg := New()
	if err := reg.Register("Test", Descriptor{Renderer: noopRenderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("test")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Stylesheets[0] = "/mutated.css"

	original, _ := reg.Descriptor("test")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}
}

func TestRegistryRegisterValidates(t *testing.T) {
	reg := New()
	if err := reg.Register(" ", Descriptor{Renderer: noopRenderer}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := reg.Register("x", Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister("input", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/input.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("select", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/select.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Inline: "init()"}},
	})

	styles, scripts := reg.Assets([]string{"input", "select", "missing"})
	if diff := cmp.Diff([]string{"/shared.css", "/input.css", "/select.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if len(scripts) != 2 || scripts[0].Src != "/shared.js" || scripts[1].Inline != "init()" {
		t.Fatalf("unexpected scripts: %+v", scripts)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewDefaultRegistry()
	reg.MustRegister("phone", Descriptor{Renderer: noopRenderer})

	email := profile.FieldState{Attribute: kccontext.Attribute{Name: "email"}, Control: profile.ControlText}
	mobile := profile.FieldState{Attribute: kccontext.Attribute{Name: "mobile"}, Control: profile.ControlText}
	overrides := map[string]string{"mobile": "phone"}

	if desc, err := reg.Resolve(email, overrides); err != nil || desc.Name != NameInput {
		t.Fatalf("email resolved to %q, %v", desc.Name, err)
	}
	if desc, err := reg.Resolve(mobile, overrides); err != nil || desc.Name != "phone" {
		t.Fatalf("mobile resolved to %q, %v", desc.Name, err)
	}

	_, err := reg.Resolve(mobile, map[string]string{"mobile": "signature"})
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestRegistryCloneIsIndependent(t *testing.T) {
	reg := NewDefaultRegistry()
	clone := reg.Clone()
	clone.MustRegister("extra", Descriptor{Renderer: noopRenderer})

	if _, ok := reg.Descriptor("extra"); ok {
		t.Fatalf("clone registration leaked into the original")
	}
}

func TestDefaultRegistryCoversControls(t *testing.T) {
	want := []string{
		"checkbox-group", "hidden", "multiselect", "password",
		"radio-group", "select", "text", "textarea",
	}
	if diff := cmp.Diff(want, NewDefaultRegistry().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
