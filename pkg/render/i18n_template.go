package render

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

// TemplateI18nConfig configures the translate helpers handed to templates.
type TemplateI18nConfig struct {
	// LocaleKey is the map key or struct field holding the locale when a
	// template passes a view instead of a language tag. Defaults to "locale".
	LocaleKey string
	// FuncName renames the translate helper.
	FuncName  string
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns translate(localeSrc, key, args...) and
// current_locale(localeSrc). localeSrc is a language tag, a bound *i18n.I18n,
// a kcContext, or a map/struct carrying the locale under LocaleKey.
func TemplateI18nFuncs(t i18n.Translator, cfg TemplateI18nConfig) map[string]any {
	key := strings.TrimSpace(cfg.LocaleKey)
	if key == "" {
		key = "locale"
	}
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	translate := func(localeSrc any, msgKey string, params ...any) string {
		msgKey = strings.TrimSpace(msgKey)
		if msgKey == "" {
			return ""
		}
		locale := localeOf(localeSrc, key)
		if t == nil {
			return onMissing(locale, msgKey, params, ErrMissingTranslator)
		}
		msg, err := t.Translate(locale, msgKey, params...)
		if err != nil || strings.TrimSpace(msg) == "" {
			return onMissing(locale, msgKey, params, err)
		}
		return msg
	}
	return map[string]any{
		name:             translate,
		"current_locale": func(localeSrc any) string { return localeOf(localeSrc, key) },
	}
}

// MessageFuncs exposes the page message helpers by the names Keycloak
// themes use: msg, msgStr, advancedMsg and advancedMsgStr. msg and
// advancedMsg return sanitized HTML.
func MessageFuncs(m *i18n.I18n) map[string]any {
	if m == nil {
		m = i18n.Bind(nil, nil, "", nil)
	}
	return map[string]any{
		"msg":            func(key string, args ...string) string { return m.Msg(key, args...) },
		"msgStr":         func(key string, args ...string) string { return m.MsgStr(key, args...) },
		"advancedMsg":    m.AdvancedMsg,
		"advancedMsgStr": m.AdvancedMsgStr,
	}
}

func localeOf(src any, key string) string {
	switch v := src.(type) {
	case nil:
		return ""
	case string:
		return v
	case *i18n.I18n:
		if v != nil {
			return v.Locale()
		}
		return ""
	case kccontext.KcContext:
		if base := v.Base(); base != nil && base.Locale != nil {
			return base.Locale.CurrentLanguageTag
		}
		return ""
	case map[string]string:
		return v[key]
	case map[string]any:
		if value, ok := v[key]; ok && value != nil {
			return strings.TrimSpace(fmt.Sprint(value))
		}
		return ""
	}

	rv := reflect.Indirect(reflect.ValueOf(src))
	if rv.Kind() != reflect.Struct {
		return ""
	}
	field := rv.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, key) })
	if field.IsValid() && field.Kind() == reflect.String {
		return field.String()
	}
	return ""
}
