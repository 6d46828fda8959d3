// Package sanitize cleans the markup that reaches the page from the server:
// message summaries, field errors and translated messages.
package sanitize

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
)

const cacheSize = 512

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy

	cacheOnce sync.Once
	cache     *lru.Cache[string, string]
)

// KcSanitize returns html with everything but inline formatting, line breaks,
// lists and http(s)/mailto links removed. Keycloak messages routinely carry
// <br> separators and links, so plain escaping is not enough.
func KcSanitize(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	c := resultCache()
	if c != nil {
		if cleaned, ok := c.Get(html); ok {
			return cleaned
		}
	}
	cleaned := messageSanitizer().Sanitize(html)
	if c != nil {
		c.Add(html, cleaned)
	}
	return cleaned
}

// Text strips every tag and returns the remaining text.
func Text(html string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(html))
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "br", "p", "span", "ul", "ol", "li", "small", "code")
		policy.AllowAttrs("href", "target", "rel").OnElements("a")
		policy.AllowElements("a")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.AllowRelativeURLs(true)
		policy.RequireNoFollowOnLinks(false)
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "p")
		messagePolicy = policy
	})
	return messagePolicy
}

func resultCache() *lru.Cache[string, string] {
	cacheOnce.Do(func() {
		c, err := lru.New[string, string](cacheSize)
		if err == nil {
			cache = c
		}
	})
	return cache
}
