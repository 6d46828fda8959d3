package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-kctheme/pkg/appearance"
)

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeManifests registers manifests in a fresh selector. The first
// manifest becomes the default theme.
func WithThemeManifests(manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		selector, err := appearance.NewSelector(manifests...)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: theme manifests: %w", err)
			return
		}
		o.themeSelector = selector
	}
}

// WithThemeDefaults sets the theme and variant used when a request names
// none.
func WithThemeDefaults(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = strings.TrimSpace(name)
		o.themeVariant = strings.TrimSpace(variant)
	}
}

// WithThemeFallbacks sets partials used when the selected manifest does not
// override them.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		if o.themeFallbacks == nil {
			o.themeFallbacks = make(map[string]string, len(fallbacks))
		}
		for key, value := range fallbacks {
			o.themeFallbacks[key] = value
		}
	}
}

// ResolveTheme selects name/variant and derives the renderer configuration.
// Empty values fall back to the orchestrator defaults and then to the
// selector's own defaults.
func (o *Orchestrator) ResolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.themeName
	}
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return appearance.RendererConfig(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) ensureThemeSelector() {
	if o.themeSelector != nil || o.initialiseErr != nil {
		return
	}
	selector, err := appearance.NewSelector()
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: default theme: %w", err)
		return
	}
	o.themeSelector = selector
}
