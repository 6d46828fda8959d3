package components

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-kctheme/pkg/profile"
	rendertemplate "github.com/goliatone/go-kctheme/pkg/render/template"
)

// ErrNotRegistered is returned when no component serves a control.
var ErrNotRegistered = errors.New("components: component not registered")

// Renderer writes the control markup of one profile attribute into buf. The
// surrounding label, helper texts and attribute-level errors are written by
// the caller.
type Renderer func(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error

// ComponentData carries helpers and configuration for component renderers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ThemePartials maps partial keys (see appearance.Partial*) to template
	// names that replace the built-in markup.
	ThemePartials map[string]string
	Messages      profile.Messages
	// Revealed reports whether the password input with the given id is shown
	// in clear text.
	Revealed func(inputID string) bool
}

func (d ComponentData) messages() profile.Messages {
	if d.Messages == nil {
		return nopMessages{}
	}
	return d.Messages
}

func (d ComponentData) revealed(id string) bool {
	return d.Revealed != nil && d.Revealed(id)
}

type nopMessages struct{}

func (nopMessages) MsgStr(key string, _ ...string) string { return key }
func (nopMessages) AdvancedMsgStr(key string) string      { return key }

// Script is a JavaScript dependency emitted once per page.
type Script struct {
	Src    string
	Type   string
	Inline string
	Async  bool
	Defer  bool
	Module bool
	Attrs  map[string]string
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// Descriptor is a registered component with the assets it needs.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

func (d Descriptor) clone() Descriptor {
	d.Stylesheets = slices.Clone(d.Stylesheets)
	scripts := make([]Script, len(d.Scripts))
	for i, script := range d.Scripts {
		script.Attrs = maps.Clone(script.Attrs)
		scripts[i] = script
	}
	d.Scripts = scripts
	return d
}

// Registry maps component names to descriptors. The defaults are named after
// the profile controls, so a field resolves to the component of its control
// unless an override names another one.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = descriptor.clone()
	}
	return cloned
}

// Register adds or replaces the component called name.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return errors.New("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	descriptor.Name = name
	r.mu.Lock()
	r.components[name] = descriptor.clone()
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for static setup; it panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the component called name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return descriptor.clone(), true
}

// Resolve picks the component for field: the override registered for the
// attribute name first, then the component named after the field's control.
func (r *Registry) Resolve(field profile.FieldState, overrides map[string]string) (Descriptor, error) {
	name := overrides[field.Attribute.Name]
	if strings.TrimSpace(name) == "" {
		name = string(field.Control)
	}
	descriptor, ok := r.Descriptor(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q for attribute %q", ErrNotRegistered, name, field.Attribute.Name)
	}
	return descriptor, nil
}

// Names lists the registered components in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.components))
}

// Assets collects the stylesheets and scripts of the named components,
// first occurrence wins.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href != "" && !seen["css:"+href] {
				seen["css:"+href] = true
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range descriptor.Scripts {
			if key := script.key(); !seen[key] {
				seen[key] = true
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
