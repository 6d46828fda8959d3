package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
)

// ErrMissingTranslator is passed to missing handlers when no translator is
// configured.
var ErrMissingTranslator = errors.New("render: missing translator")

// MissingTranslationHandler decides what to print for an unresolved key.
// params carries the template arguments; err explains the failure.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

func missingTranslationDefault(_ string, key string, params []any, _ error) string {
	for _, param := range params {
		if m, ok := param.(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// Messages binds the message helpers of one page render.
func Messages(kc kccontext.KcContext, opts RenderOptions) *i18n.I18n {
	var onMissing i18n.MissingHandler
	if opts.OnMissing != nil {
		handler := opts.OnMissing
		onMissing = func(locale, key string, err error) string {
			return handler(locale, key, nil, err)
		}
	}
	return i18n.Bind(kc, opts.Translator, opts.Locale, onMissing)
}

// ProfileForm builds the profile form of kc with server errors from
// messagesPerField and opts.FieldErrors applied, then replays opts.Actions.
// The returned messages are server errors that matched no attribute.
func ProfileForm(kc kccontext.KcContext, messages *i18n.I18n, opts RenderOptions, extra ...profile.Option) (*profile.Form, []string, error) {
	attrs, err := profile.AttributesFor(kc)
	if err != nil {
		return nil, nil, err
	}

	mapping := MapFieldErrors(attrs, kc.Base().MessagesPerField)
	serverErrors := append(mapping.Fields, opts.FieldErrors...)

	formOpts := []profile.Option{
		profile.WithDoMakeUserConfirmPassword(opts.ConfirmPassword()),
		profile.WithServerErrors(serverErrors...),
	}
	if messages != nil {
		formOpts = append(formOpts, profile.WithMessages(messages))
	}
	formOpts = append(formOpts, extra...)

	form, err := profile.FromContext(kc, formOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("render: build profile form: %w", err)
	}
	for _, action := range opts.Actions {
		if err := form.Dispatch(action); err != nil {
			return nil, nil, fmt.Errorf("render: replay %s %q: %w", action.Kind, action.Name, err)
		}
	}
	return form, mapping.Form, nil
}
