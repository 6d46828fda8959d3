package render

import (
	"context"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

// Renderer turns a page-scoped kcContext into a byte representation (HTML,
// a terminal transcript, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, kc kccontext.KcContext, options RenderOptions) ([]byte, error)
}
