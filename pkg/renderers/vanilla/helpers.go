package vanilla

import (
	"sort"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

// pageTemplate maps a pageId to its template. Pages without a dedicated
// template use the default page.
func pageTemplate(id kccontext.PageID) string {
	for _, known := range kccontext.KnownPages() {
		if known == id {
			return "pages/" + strings.TrimSuffix(string(id), ".ftl")
		}
	}
	return "pages/default"
}

type cssVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func sortedCSSVars(vars map[string]string) []cssVar {
	if len(vars) == 0 {
		return nil
	}
	out := make([]cssVar, 0, len(vars))
	for name, value := range vars {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		out = append(out, cssVar{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func joinURL(base, name string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "/" + strings.TrimLeft(name, "/")
	}
	return base + "/" + strings.TrimLeft(name, "/")
}

func sanitizeAll(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	for _, message := range messages {
		out = append(out, sanitize.KcSanitize(message))
	}
	return out
}
