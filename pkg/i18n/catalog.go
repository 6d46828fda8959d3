// Package i18n resolves the login theme messages: an embedded catalog per
// language, Accept-Language negotiation and the per-request helpers pages
// use (msg, msgStr, advancedMsg).
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var embeddedMessages embed.FS

// DefaultLanguage is used when neither the request nor the realm picks one.
const DefaultLanguage = "en"

// ErrMissingMessage is returned when no language in the fallback chain has
// the requested key.
var ErrMissingMessage = errors.New("i18n: missing message")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog stores messages per language.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
	fallback string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallback sets the language consulted after the requested one.
func WithFallback(lang string) Option {
	return func(c *Catalog) {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			c.fallback = trimmed
		}
	}
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		messages: make(map[string]map[string]string),
		fallback: DefaultLanguage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded message files.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(embeddedMessages, "messages")
	})
	if defaultErr != nil {
		panic(fmt.Errorf("i18n: load embedded messages: %w", defaultErr))
	}
	return defaultCatalog
}

// LoadFS reads messages_<lang>.yaml (or .yml/.json) files from dir.
func LoadFS(fsys fs.FS, dir string, opts ...Option) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("i18n: filesystem is nil")
	}
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	c := NewCatalog(opts...)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang, ok := languageFromFile(entry.Name())
		if !ok {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		messages, err := decodeMessages(entry.Name(), raw)
		if err != nil {
			return nil, err
		}
		c.Add(lang, messages)
	}
	return c, nil
}

func languageFromFile(name string) (string, bool) {
	ext := path.Ext(name)
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		return "", false
	}
	base := strings.TrimSuffix(name, ext)
	if !strings.HasPrefix(base, "messages_") {
		return "", false
	}
	lang := strings.TrimPrefix(base, "messages_")
	return lang, lang != ""
}

func decodeMessages(name string, raw []byte) (map[string]string, error) {
	messages := make(map[string]string)
	if path.Ext(name) == ".json" {
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", name, err)
		}
		return messages, nil
	}
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("i18n: decode %s: %w", name, err)
	}
	return messages, nil
}

// Add merges messages into lang, replacing existing keys.
func (c *Catalog) Add(lang string, messages map[string]string) {
	lang = normaliseTag(lang)
	if lang == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.messages[lang]
	if !ok {
		target = make(map[string]string, len(messages))
		c.messages[lang] = target
	}
	for key, value := range messages {
		target[key] = value
	}
}

// Languages returns the loaded language tags, sorted.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the raw template of key for locale without formatting.
func (c *Catalog) Lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, lang := range c.chain(locale) {
		if value, ok := c.messages[lang][key]; ok {
			return value, true
		}
	}
	return "", false
}

// Translate resolves key for locale, falling back to the base language and
// then the catalog fallback. Arguments replace {0}, {1}, ...
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	template, ok := c.Lookup(locale, key)
	if !ok {
		return "", fmt.Errorf("%w: %q (%s)", ErrMissingMessage, key, locale)
	}
	return Format(template, args...), nil
}

func (c *Catalog) chain(locale string) []string {
	tag := normaliseTag(locale)
	out := make([]string, 0, 3)
	if tag != "" {
		out = append(out, tag)
		if base, _, found := strings.Cut(tag, "-"); found {
			out = append(out, base)
		}
	}
	if c.fallback != "" {
		out = append(out, c.fallback)
	}
	return out
}

func normaliseTag(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return ""
	}
	if parsed, err := language.Parse(tag); err == nil {
		return parsed.String()
	}
	return tag
}

// Format substitutes {0}, {1}, ... placeholders with args.
func Format(template string, args ...any) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
