// Package kctheme renders Keycloak login pages from a kcContext. The root
// package re-exports the pieces most callers need; the pkg/ tree holds the
// full API.
package kctheme

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla"
)

// RenderOptions describes per-request overrides renderers use to surface
// field errors, replay form actions or pick an appearance.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML decodes a kcContext payload (JSON or YAML) and renders it with
// the vanilla renderer and the bundled theme.
func GenerateHTML(ctx context.Context, kcContext []byte, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Context:  kcContext,
		Renderer: vanilla.Name,
	})
}

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet and browser runtime.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(kctheme.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
