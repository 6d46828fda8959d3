package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/profile"
)

// RenderOptions describe per-request data renderers use to customise their
// output without mutating the kcContext.
type RenderOptions struct {
	// Locale overrides the language Keycloak selected.
	Locale string
	// Translator resolves message keys. Nil uses the embedded catalog.
	Translator i18n.Translator
	// OnMissing decides what to print for unresolved keys.
	OnMissing MissingTranslationHandler
	// DoMakeUserConfirmPassword asks for the password twice. Nil means true.
	DoMakeUserConfirmPassword *bool
	// FieldErrors are merged with the errors Keycloak reported in
	// messagesPerField.
	FieldErrors []profile.FormFieldError
	// Actions are replayed on the profile form before rendering, which lets
	// callers render the state reached after user input.
	Actions []profile.FormAction
	// RevealedPasswords lists password input ids shown in clear text.
	RevealedPasswords map[string]bool
	// HiddenFields are emitted inside the primary form.
	HiddenFields map[string]string
	// Theme carries the resolved go-theme configuration.
	Theme *theme.RendererConfig
	// Appearance is the light/dark preference of the visitor.
	Appearance appearance.Mode
	// LiveReloadURL enables the development reload socket when set.
	LiveReloadURL string
}

// ConfirmPassword resolves DoMakeUserConfirmPassword.
func (o RenderOptions) ConfirmPassword() bool {
	if o.DoMakeUserConfirmPassword == nil {
		return true
	}
	return *o.DoMakeUserConfirmPassword
}

// Bool returns a pointer to v, for optional boolean options.
func Bool(v bool) *bool { return &v }
