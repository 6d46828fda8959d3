package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/render"
	rendertemplate "github.com/goliatone/go-kctheme/pkg/render/template"
	"github.com/goliatone/go-kctheme/pkg/render/template/pongo"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla/components"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateReload   bool
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[string]string
	classes          chromeClasses
	assetsPrefix     string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide base.html and the pages/ directory.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers a directory on disk over the template bundle. A
// file there replaces the bundled template with the same path, so a theme
// can override pages/login.html alone.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTemplateReload re-reads templates on every render.
func WithTemplateReload(enabled bool) Option {
	return func(cfg *config) {
		cfg.templateReload = enabled
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the control registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithComponentOverrides renders the named attributes with a specific
// registered component instead of the one their control maps to.
func WithComponentOverrides(overrides map[string]string) Option {
	return func(cfg *config) {
		if len(overrides) == 0 {
			return
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string, len(overrides))
		}
		for attribute, component := range overrides {
			attribute = strings.TrimSpace(attribute)
			component = strings.TrimSpace(component)
			if attribute == "" || component == "" {
				continue
			}
			cfg.overrides[attribute] = component
		}
	}
}

// WithChromeClasses overrides the CSS classes put around profile controls.
func WithChromeClasses(classes map[ChromeClass]string) Option {
	return func(cfg *config) {
		if len(classes) == 0 {
			return
		}
		if cfg.classes == nil {
			cfg.classes = make(chromeClasses, len(classes))
		}
		for key, value := range classes {
			cfg.classes[key] = value
		}
	}
}

// WithAssetsPrefix sets the URL the bundled stylesheet and script are served
// from when no theme configuration provides one. Defaults to the page's
// url.resourcesPath, then /assets.
func WithAssetsPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetsPrefix = strings.TrimSpace(prefix)
	}
}

// Renderer renders login pages to HTML with pongo2 templates.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	overrides    map[string]string
	classes      chromeClasses
	assetsPrefix string
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithDir(cfg.templateDir),
			pongo.WithFS(cfg.templateFS),
			pongo.WithReload(cfg.templateReload),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	return &Renderer{
		templates:    renderer,
		registry:     registry,
		overrides:    cfg.overrides,
		classes:      cfg.classes,
		assetsPrefix: cfg.assetsPrefix,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the page kc describes. Pages without a dedicated template
// use pages/default.
func (r *Renderer) Render(ctx context.Context, kc kccontext.KcContext, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if kc == nil {
		return nil, errors.New("vanilla renderer: kcContext is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	messages := render.Messages(kc, opts)
	data := &pageData{}
	builder := &pageBuilder{
		kc:       kc,
		base:     kc.Base(),
		messages: messages,
		opts:     opts,
		data:     data,
	}
	if err := builder.build(r); err != nil {
		return nil, err
	}
	r.attachAssets(kc, opts, &data.layout)

	view := render.MessageFuncs(messages)
	translator := opts.Translator
	if translator == nil {
		translator = i18n.Default()
	}
	for name, fn := range render.TemplateI18nFuncs(translator, render.TemplateI18nConfig{
		LocaleKey: "lang",
		OnMissing: opts.OnMissing,
	}) {
		view[name] = fn
	}
	view["kc"] = contextValue(kc)
	view["layout"] = data.layout
	view["page"] = data.page
	view["form"] = data.form
	view["hidden"] = hiddenViews(data.hidden)

	result, err := r.templates.RenderTemplate(pageTemplate(kc.Page()), view)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// profileForm renders the dynamic profile form of the page into b.
func (r *Renderer) profileForm(b *pageBuilder, action string) error {
	form, formErrors, err := render.ProfileForm(b.kc, b.messages, b.opts)
	if err != nil {
		return fmt.Errorf("vanilla renderer: %w", err)
	}

	var partials map[string]string
	if b.opts.Theme != nil {
		partials = b.opts.Theme.Partials
	}
	fields := newComponentRenderer(r.registry, r.overrides, r.classes, components.ComponentData{
		Template:      r.templates,
		ThemePartials: partials,
		Messages:      b.messages,
		Revealed:      func(id string) bool { return b.opts.RevealedPasswords[id] },
	})
	markup, err := fields.renderForm(form)
	if err != nil {
		return fmt.Errorf("vanilla renderer: %w", err)
	}

	stylesheets, scripts := fields.assets()
	b.data.layout.Stylesheets = append(b.data.layout.Stylesheets, stylesheets...)
	for _, script := range scripts {
		b.data.layout.Scripts = append(b.data.layout.Scripts, scriptView{
			Src:    script.Src,
			Type:   scriptType(script),
			Inline: script.Inline,
			Async:  script.Async,
			Defer:  script.Defer,
		})
	}

	b.data.form = &formView{
		Action:      action,
		HTML:        markup,
		Submittable: form.IsSubmittable(),
		Errors:      sanitizeAll(formErrors),
	}
	return nil
}

// attachAssets puts the bundled stylesheet and script ahead of component
// assets.
func (r *Renderer) attachAssets(kc kccontext.KcContext, opts render.RenderOptions, layout *layoutView) {
	stylesheet := r.assetURL(kc, opts, appearance.AssetStylesheet, StylesheetName)
	script := r.assetURL(kc, opts, appearance.AssetScript, RuntimeScriptName)

	layout.Stylesheets = append([]string{stylesheet}, layout.Stylesheets...)
	layout.Scripts = append([]scriptView{{Src: script, Defer: true}}, layout.Scripts...)
}

func (r *Renderer) assetURL(kc kccontext.KcContext, opts render.RenderOptions, key, file string) string {
	if opts.Theme != nil && opts.Theme.AssetURL != nil {
		if resolved := strings.TrimSpace(opts.Theme.AssetURL(key)); resolved != "" {
			return resolved
		}
	}
	prefix := r.assetsPrefix
	if prefix == "" {
		prefix = kc.Base().URL.ResourcesPath
	}
	if prefix == "" {
		prefix = "/assets"
	}
	return joinURL(prefix, file)
}

func scriptType(script components.Script) string {
	if script.Module {
		return "module"
	}
	return script.Type
}

// contextValue exposes the page to templates. Generic pages expose their raw
// payload so unknown fields stay reachable.
func contextValue(kc kccontext.KcContext) any {
	if generic, ok := kc.(*kccontext.Generic); ok && len(generic.Raw) > 0 {
		return generic.Raw
	}
	return kc
}
