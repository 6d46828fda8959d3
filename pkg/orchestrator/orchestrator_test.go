package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
)

type stubRenderer struct {
	name string
	last kccontext.KcContext
	opts render.RenderOptions
}

func (r *stubRenderer) Name() string {
	if r.name == "" {
		return "stub"
	}
	return r.name
}

func (r *stubRenderer) ContentType() string { return "text/plain" }

func (r *stubRenderer) Render(_ context.Context, kc kccontext.KcContext, opts render.RenderOptions) ([]byte, error) {
	r.last = kc
	r.opts = opts
	return []byte(r.Name() + ":" + string(kc.Page())), nil
}

func TestOrchestrator_GenerateDefaultVanilla(t *testing.T) {
	payload := `
pageId: login.ftl
realm:
  name: demo
  displayName: Demo
  password: true
url:
  loginAction: https://kc.example.com/login-actions/authenticate
  resourcesPath: /resources
`
	out, err := orchestrator.New().Generate(context.Background(), orchestrator.Request{Context: []byte(payload)})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{
		`data-page="login.ftl"`,
		`action="https://kc.example.com/login-actions/authenticate"`,
		`data-theme="light"`,
		`--color-primary: #2563eb;`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, html)
		}
	}
}

func TestOrchestrator_RendererSelection(t *testing.T) {
	first := &stubRenderer{name: "first"}
	second := &stubRenderer{name: "second"}
	registry := render.NewRegistry()
	registry.MustRegister(first)
	registry.MustRegister(second)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("second"),
	)
	req := orchestrator.Request{KcContext: &kccontext.Info{Common: kccontext.Common{PageID: kccontext.PageInfo}}}

	out, err := orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate default: %v", err)
	}
	if string(out) != "second:info.ftl" {
		t.Fatalf("expected default renderer, got %q", out)
	}

	req.Renderer = "first"
	if out, err = orch.Generate(context.Background(), req); err != nil || string(out) != "first:info.ftl" {
		t.Fatalf("expected named renderer, got %q (%v)", out, err)
	}

	req.Renderer = "missing"
	if _, err := orch.Generate(context.Background(), req); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestOrchestrator_DefaultFallsBackToFirstRegistered(t *testing.T) {
	only := &stubRenderer{name: "only"}
	registry := render.NewRegistry()
	registry.MustRegister(only)

	orch := orchestrator.New(orchestrator.WithRegistry(registry))
	renderer, err := orch.Renderer("")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if renderer.Name() != "only" {
		t.Fatalf("expected fallback to the only renderer, got %q", renderer.Name())
	}
}

func TestOrchestrator_GenerateErrors(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithRegistry(render.NewRegistry()))

	if _, err := orch.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatal("expected error without kcContext")
	}
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Context: []byte(`{"realm": {}}`)}); !errors.Is(err, kccontext.ErrMissingPageID) {
		t.Fatalf("expected ErrMissingPageID, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Generate(ctx, orchestrator.Request{Context: []byte(`{"pageId": "login.ftl"}`)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
