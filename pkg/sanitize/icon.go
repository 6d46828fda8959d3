package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// SVG keeps the drawing subset of an inline SVG icon and drops scripts,
// event handlers and foreign elements.
func SVG(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		shapes := []string{"path", "circle", "rect", "polygon", "ellipse"}
		policy.AllowElements(append([]string{"svg", "g", "title"}, shapes...)...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")
		policy.AllowAttrs("fill", "transform").OnElements("g")
		for _, el := range shapes {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "rx", "ry", "width", "height", "points",
				"fill", "fill-rule", "clip-rule", "transform",
			).OnElements(el)
		}

		iconPolicy = policy
	})
	return iconPolicy
}
