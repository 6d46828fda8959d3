package i18n

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// MissingHandler decides what to show when a key cannot be resolved.
type MissingHandler func(locale, key string, err error) string

// I18n is the message view bound to one rendered page.
type I18n struct {
	translator Translator
	locale     string
	overrides  map[string]string
	languages  []kccontext.Language
	onMissing  MissingHandler
}

// Bind returns the helpers for kc. An empty locale falls back to the
// language Keycloak selected, then DefaultLanguage. A nil translator uses
// the embedded catalog.
func Bind(kc kccontext.KcContext, t Translator, locale string, onMissing MissingHandler) *I18n {
	if t == nil {
		t = Default()
	}
	i := &I18n{translator: t, onMissing: onMissing}

	if kc != nil {
		base := kc.Base()
		i.overrides = base.Keycloakify.Messages
		if base.Locale != nil {
			if locale == "" {
				locale = base.Locale.CurrentLanguageTag
			}
			i.languages = base.Locale.Supported
		}
	}
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLanguage
	}
	i.locale = locale
	return i
}

// Locale returns the active language tag.
func (i *I18n) Locale() string { return i.locale }

// CurrentLanguage returns the active language with its label.
func (i *I18n) CurrentLanguage() kccontext.Language {
	for _, lang := range i.languages {
		if lang.LanguageTag == i.locale {
			if lang.Label == "" {
				lang.Label = Label(lang.LanguageTag)
			}
			return lang
		}
	}
	return kccontext.Language{LanguageTag: i.locale, Label: Label(i.locale)}
}

// EnabledLanguages lists the languages offered by the realm, labelled.
func (i *I18n) EnabledLanguages() []kccontext.Language {
	out := make([]kccontext.Language, 0, len(i.languages))
	for _, lang := range i.languages {
		if lang.Label == "" {
			lang.Label = Label(lang.LanguageTag)
		}
		out = append(out, lang)
	}
	return out
}

// MsgStr resolves key as plain text. Theme overrides win over the catalog.
// Unknown keys resolve to themselves.
func (i *I18n) MsgStr(key string, args ...string) string {
	template, ok := i.lookup(key)
	if !ok {
		return key
	}
	return Format(template, toAny(args)...)
}

// Msg resolves key and sanitizes the result for HTML output.
func (i *I18n) Msg(key string, args ...string) string {
	return sanitize.KcSanitize(i.MsgStr(key, args...))
}

// AdvancedMsgStr resolves values that may embed ${key} references, as sent
// in attribute display names and group headers. A bare key that exists in
// the catalog is translated; anything else is returned unchanged.
func (i *I18n) AdvancedMsgStr(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "${") {
		return placeholderPattern.ReplaceAllStringFunc(trimmed, func(match string) string {
			inner := placeholderPattern.FindStringSubmatch(match)[1]
			return i.MsgStr(strings.TrimSpace(inner))
		})
	}
	if template, ok := i.lookup(trimmed); ok {
		return template
	}
	return key
}

// AdvancedMsg is AdvancedMsgStr sanitized for HTML output.
func (i *I18n) AdvancedMsg(key string) string {
	return sanitize.KcSanitize(i.AdvancedMsgStr(key))
}

// Has reports whether key resolves for the active locale.
func (i *I18n) Has(key string) bool {
	_, ok := i.lookup(key)
	return ok
}

func (i *I18n) lookup(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	if value, ok := i.overrides[key]; ok {
		return value, true
	}
	var err error
	if catalog, ok := i.translator.(*Catalog); ok {
		if value, found := catalog.Lookup(i.locale, key); found {
			return value, true
		}
		err = ErrMissingMessage
	} else {
		var value string
		value, err = i.translator.Translate(i.locale, key)
		if err == nil && value != "" {
			return value, true
		}
	}
	if i.onMissing != nil {
		if fallback := i.onMissing(i.locale, key, err); fallback != "" {
			return fallback, true
		}
	}
	return "", false
}

func toAny(args []string) []any {
	out := make([]any, len(args))
	for idx, arg := range args {
		out[idx] = arg
	}
	return out
}
