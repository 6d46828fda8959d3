package appearance

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RendererConfig derives what renderers need from a theme selection. Partials
// start from fallbacks and are overridden by the manifest templates, then by
// the variant templates. Tokens merge the same way and each token also
// becomes a "--<token>" CSS custom property.
func RendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}

	manifest := selection.Manifest
	if manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}

	prefix := manifest.Assets.Prefix
	files := map[string]string{}
	for key, file := range manifest.Assets.Files {
		files[key] = file
	}
	merge(cfg.Tokens, manifest.Tokens)
	merge(cfg.Partials, manifest.Templates)

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		merge(cfg.Tokens, variant.Tokens)
		merge(cfg.Partials, variant.Templates)
		merge(files, variant.Assets.Files)
		if strings.TrimSpace(variant.Assets.Prefix) != "" {
			prefix = variant.Assets.Prefix
		}
	}

	for token, value := range cfg.Tokens {
		cfg.CSSVars["--"+token] = value
	}
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok || strings.TrimSpace(file) == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		if prefix == "" {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func merge(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
