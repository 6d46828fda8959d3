package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
)

// ErrorMapping splits server messages into attribute errors and page-level
// messages.
type ErrorMapping struct {
	Fields []profile.FormFieldError
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapFieldErrors maps messagesPerField keys onto profile attributes. Keys may
// address one value of a multivalued attribute ("attributes.phone[1]",
// "/phone/1"). Keys that match no attribute become page-level messages so
// nothing is lost.
func MapFieldErrors(attrs []kccontext.Attribute, payload kccontext.MessagesPerField) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	names := make(map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		names[attr.Name] = struct{}{}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, rawPath := range keys {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}
		name, index, ok := mapErrorPath(rawPath, names)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		for _, message := range messages {
			mapping.Fields = append(mapping.Fields, profile.ServerErrorAt(name, index, message))
		}
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, names map[string]struct{}) (string, int, bool) {
	if isFormLevelKey(raw) {
		return "", profile.NoFieldIndex, false
	}
	if _, ok := names[strings.TrimSpace(raw)]; ok {
		return strings.TrimSpace(raw), profile.NoFieldIndex, true
	}

	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", profile.NoFieldIndex, false
	}

	for i, segment := range segments {
		if _, ok := names[segment]; !ok {
			continue
		}
		index := profile.NoFieldIndex
		if i+1 < len(segments) {
			if n, err := strconv.Atoi(segments[i+1]); err == nil && n >= 0 {
				index = n
			}
		}
		return segment, index, true
	}
	return "", profile.NoFieldIndex, false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"user":       {},
		"profile":    {},
		"attributes": {},
		"data":       {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", kccontext.GlobalField, "form", "__all__":
		return true
	default:
		return false
	}
}
