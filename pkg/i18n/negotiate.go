package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Negotiate picks the supported language that best matches an
// Accept-Language header. The first supported language wins when nothing
// matches; DefaultLanguage when supported is empty.
func Negotiate(acceptLanguage string, supported []string) string {
	if len(supported) == 0 {
		return DefaultLanguage
	}

	tags := make([]language.Tag, 0, len(supported))
	for _, lang := range supported {
		tag, err := language.Parse(strings.TrimSpace(lang))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return supported[0]
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return tags[0].String()
	}

	_, index, confidence := language.NewMatcher(tags).Match(desired...)
	if confidence == language.No {
		return tags[0].String()
	}
	return tags[index].String()
}

// Label returns the native display name of a language tag, for example
// "français" for "fr".
func Label(tag string) string {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return tag
	}
	if name := display.Self.Name(parsed); name != "" {
		return name
	}
	return tag
}
