package appearance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

var (
	// ErrUnknownTheme is returned when no manifest is registered under a name.
	ErrUnknownTheme = errors.New("appearance: unknown theme")
	// ErrUnknownVariant is returned for a variant the manifest lacks.
	ErrUnknownVariant = errors.New("appearance: unknown variant")
)

// Selector picks a manifest and variant. It satisfies theme.ThemeSelector.
type Selector struct {
	mu             sync.RWMutex
	provider       theme.ThemeProvider
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests (DefaultManifest when none) and defaults
// to the first one with the light variant.
func NewSelector(manifests ...*theme.Manifest) (*Selector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	s := &Selector{
		provider:       registry,
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: string(ModeLight),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("appearance: register %q: %w", manifest.Name, err)
		}
		key := strings.ToLower(manifest.Name)
		s.manifests[key] = manifest
		if s.defaultTheme == "" {
			s.defaultTheme = key
		}
	}
	if s.defaultTheme == "" {
		return nil, fmt.Errorf("%w: no manifest registered", ErrUnknownTheme)
	}
	return s, nil
}

// Provider exposes the go-theme registry holding the manifests.
func (s *Selector) Provider() theme.ThemeProvider { return s.provider }

// WithDefaults changes the theme and variant used for empty selections.
func (s *Selector) WithDefaults(name, variant string) *Selector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
		s.defaultTheme = name
	}
	if variant = strings.TrimSpace(variant); variant != "" {
		s.defaultVariant = variant
	}
	return s
}

// Themes lists the registered theme names.
func (s *Selector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves name and variant. Empty values use the defaults. A
// "system" variant resolves to light, since the request is not known here.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = s.defaultTheme
	}
	manifest, ok := s.manifests[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if Mode(variant) == ModeSystem {
		variant = string(ModeLight)
	}
	if _, ok := manifest.Variants[variant]; !ok && len(manifest.Variants) > 0 {
		return nil, fmt.Errorf("%w: %q on theme %q", ErrUnknownVariant, variant, manifest.Name)
	}

	return &theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}
