package appearance

import (
	theme "github.com/goliatone/go-theme"
)

// DefaultTheme is the name of the bundled manifest.
const DefaultTheme = "kctheme"

// Partial keys renderers look up in theme.RendererConfig.Partials.
const (
	PartialInput         = "kc.input"
	PartialPassword      = "kc.password"
	PartialTextarea      = "kc.textarea"
	PartialSelect        = "kc.select"
	PartialMultiSelect   = "kc.multiselect"
	PartialRadioGroup    = "kc.radio-group"
	PartialCheckboxGroup = "kc.checkbox-group"
	PartialHidden        = "kc.hidden"
)

// Asset keys of the bundled manifest.
const (
	AssetStylesheet = "kctheme.stylesheet"
	AssetScript     = "kctheme.script"
)

// DefaultManifest describes the bundled theme with a light and a dark
// variant. Tokens become CSS custom properties.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-background": "#ffffff",
			"color-foreground": "#0f172a",
			"color-muted":      "#64748b",
			"color-primary":    "#2563eb",
			"color-primary-fg": "#ffffff",
			"color-border":     "#e2e8f0",
			"color-error":      "#dc2626",
			"color-success":    "#16a34a",
			"color-warning":    "#d97706",
			"radius":           "0.5rem",
			"font-family":      "system-ui, sans-serif",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: "kctheme.css",
				AssetScript:     "kctheme.js",
			},
		},
		Variants: map[string]theme.Variant{
			string(ModeLight): {},
			string(ModeDark): {
				Tokens: map[string]string{
					"color-background": "#0b1120",
					"color-foreground": "#e2e8f0",
					"color-muted":      "#94a3b8",
					"color-primary":    "#3b82f6",
					"color-border":     "#1e293b",
					"color-error":      "#f87171",
				},
			},
		},
	}
}
