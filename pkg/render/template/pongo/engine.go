// Package pongo implements template.TemplateRenderer on a pongo2 template
// set. Sources are layered: a template found in an earlier source shadows the
// same path in later ones, which is how on-disk theme overrides sit on top of
// the embedded bundle.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-kctheme/pkg/render/template"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	dirs      []string
	layers    []fs.FS
	extension string
	globals   map[string]any
	name      string
	reload    bool
}

// WithDir adds a directory on disk as a template source.
func WithDir(dir string) Option {
	return func(cfg *config) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return
		}
		cfg.dirs = append(cfg.dirs, dir)
		cfg.layers = append(cfg.layers, os.DirFS(dir))
	}
}

// WithFS adds fsys as a template source.
func WithFS(fsys fs.FS) Option {
	return func(cfg *config) {
		if fsys == nil {
			return
		}
		cfg.layers = append(cfg.layers, fsys)
	}
}

// WithExtension sets the suffix appended to template names. Defaults to
// ".html".
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithGlobals seeds values visible to every template. Function values are
// callable from templates.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(globals))
		}
		for key, value := range globals {
			cfg.globals[key] = value
		}
	}
}

// WithName names the template set in parse errors.
func WithName(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.name = name
		}
	}
}

// WithReload parses templates on every render instead of caching them, so
// edits on disk show up without a restart.
func WithReload(enabled bool) Option {
	return func(cfg *config) {
		cfg.reload = enabled
	}
}

// Engine renders pongo2 templates.
type Engine struct {
	mu sync.RWMutex

	set    *pongo2.TemplateSet
	cache  map[string]*pongo2.Template
	ext    string
	reload bool
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine. At least one source is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".html", name: "kctheme"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if len(cfg.layers) == 0 {
		return nil, errors.New("pongo: no template source configured")
	}
	for _, dir := range cfg.dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: template dir %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("pongo: template dir %s: not a directory", dir)
		}
	}

	registerFilters()
	e := &Engine{
		set:    pongo2.NewSet(cfg.name, &layeredLoader{layers: cfg.layers}),
		cache:  make(map[string]*pongo2.Template),
		ext:    cfg.extension,
		reload: cfg.reload,
	}
	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, err
	}
	return e, nil
}

// Render renders the template stored under name, or name itself when it
// holds template markup.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a template by path. The extension is optional.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

// RenderString parses and renders source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return e.execute(tmpl, "inline template", data, out)
}

// RegisterFilter registers fn as a pongo2 filter. pongo2 filters are global
// to the process; a name can be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals of every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("pongo: engine is nil")
	}
	if data == nil {
		return nil
	}
	globals, err := toContext(data)
	if err != nil {
		return fmt.Errorf("pongo: globals: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(globals)
	return nil
}

// Reset drops every parsed template.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cache = make(map[string]*pongo2.Template)
	e.mu.Unlock()
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	if !e.reload {
		e.mu.RLock()
		tmpl, ok := e.cache[path]
		e.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok && !e.reload {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %q: %w", path, err)
	}
	if !e.reload {
		e.cache[path] = tmpl
	}
	return tmpl, nil
}

func (e *Engine) execute(tmpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s: data: %w", label, err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", label, err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// toContext turns view data into plain maps, slices and scalars through its
// JSON form, so templates see the json field names. Top-level functions are
// kept as they are.
func toContext(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		var decoded map[string]any
		if err := roundTrip(v, &decoded); err != nil {
			return nil, err
		}
		return pongo2.Context(decoded), nil
	}

	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if value == nil || reflect.TypeOf(value).Kind() == reflect.Func {
			out[key] = value
			continue
		}
		var decoded any
		if err := roundTrip(value, &decoded); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}

func roundTrip(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("kcsanitize") {
			_ = pongo2.RegisterFilter("kcsanitize", filterKcSanitize)
		}
		if !pongo2.FilterExists("plaintext") {
			_ = pongo2.RegisterFilter("plaintext", filterPlainText)
		}
	})
}

// filterKcSanitize cleans server-provided markup and marks it safe.
func filterKcSanitize(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() == 0 {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(sanitize.KcSanitize(in.String())), nil
}

// filterPlainText strips markup, for attributes such as title and
// aria-label.
func filterPlainText(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() == 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(sanitize.Text(in.String())), nil
}
