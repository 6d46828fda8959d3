package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla"
)

const defaultRendererName = vanilla.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry replaces the renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer names the renderer used when a request names none.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformers registers transformers applied to every decoded kcContext
// before rendering, in order.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		for _, transformer := range transformers {
			if transformer != nil {
				o.transformers = append(o.transformers, transformer)
			}
		}
	}
}

// Orchestrator renders kcContexts with a registered renderer and a theme
// resolved through a go-theme selector.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	initialiseErr   error
	defaultsApplied bool

	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations: a registry
// holding the vanilla renderer and a selector over the bundled manifest.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one page render.
type Request struct {
	// Context is a raw kcContext payload, JSON or YAML. Ignored when
	// KcContext is set.
	Context []byte

	// KcContext is an already decoded page.
	KcContext kccontext.KcContext

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant are passed to the theme selector. An empty
	// variant follows RenderOptions.Appearance when it is light or dark.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries per-request instructions. A non-nil Theme skips
	// theme selection.
	RenderOptions render.RenderOptions
}

// Generate decodes the kcContext, applies transformers, resolves the theme
// and returns the renderer output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
		if err := o.initialiseErr; err != nil {
			return nil, err
		}
	}

	kc, err := o.resolveContext(req)
	if err != nil {
		return nil, err
	}
	if err := o.applyTransformers(ctx, kc); err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := o.ResolveTheme(req.ThemeName, o.variantFor(req))
		if err != nil {
			return nil, err
		}
		opts.Theme = cfg
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, kc, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	return output, nil
}

// Renderer returns the renderer registered under name, the default renderer
// when name is empty, or the first registered one as a last resort.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) resolveContext(req Request) (kccontext.KcContext, error) {
	if req.KcContext != nil {
		return req.KcContext, nil
	}
	if len(req.Context) == 0 {
		return nil, errors.New("orchestrator: kcContext is required")
	}
	kc, err := kccontext.Decode(req.Context)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode kcContext: %w", err)
	}
	return kc, nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, kc kccontext.KcContext) error {
	for _, transformer := range o.transformers {
		if err := transformer.Transform(ctx, kc); err != nil {
			return fmt.Errorf("orchestrator: transform kcContext: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) variantFor(req Request) string {
	if req.ThemeVariant != "" {
		return req.ThemeVariant
	}
	switch req.RenderOptions.Appearance {
	case appearance.ModeLight, appearance.ModeDark:
		return string(req.RenderOptions.Appearance)
	}
	return ""
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	o.ensureThemeSelector()

	o.defaultsApplied = true
}
