// Package mock serves kcContext payloads for local development. Each page
// has an embedded YAML document layered over a shared base; callers can
// deep-merge overrides on top, the way a story overrides a Keycloakify mock.
package mock

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

//go:embed pages/*.yaml
var embedded embed.FS

const commonFile = "common"

// ErrUnknownPage is returned for a page without a mock document.
var ErrUnknownPage = errors.New("mock: no mock for page")

const (
	defaultOrigin = "http://localhost:8080"
	defaultRealm  = "myrealm"
)

// Option configures a Store.
type Option func(*Store)

// WithOverrideDir layers YAML documents from dir over the embedded ones. A
// file named after the page (login.yaml) patches that page and common.yaml
// patches every page.
func WithOverrideDir(dir string) Option {
	return func(s *Store) {
		s.overrideDir = strings.TrimSpace(dir)
	}
}

// WithOrigin sets the Keycloak origin used in action URLs.
func WithOrigin(origin string) Option {
	return func(s *Store) {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			s.origin = origin
		}
	}
}

// WithRealm sets the realm name used in action URLs.
func WithRealm(realm string) Option {
	return func(s *Store) {
		if realm = strings.TrimSpace(realm); realm != "" {
			s.realm = realm
		}
	}
}

// WithIDGenerator replaces the execution and tab id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store loads mock kcContexts.
type Store struct {
	fsys        fs.FS
	overrideDir string
	origin      string
	realm       string
	newID       func() string
}

// New builds a Store over the embedded mocks.
func New(options ...Option) *Store {
	sub, _ := fs.Sub(embedded, "pages")
	s := &Store{
		fsys:   sub,
		origin: defaultOrigin,
		realm:  defaultRealm,
		newID:  uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OverrideDir reports the directory layered over the embedded mocks.
func (s *Store) OverrideDir() string {
	return s.overrideDir
}

// Pages lists the pages that have a mock, in Keycloak's file name order.
func (s *Store) Pages() []kccontext.PageID {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil
	}
	pages := make([]kccontext.PageID, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if entry.IsDir() || name == commonFile || name == entry.Name() {
			continue
		}
		pages = append(pages, kccontext.PageID(name+".ftl"))
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages
}

// Has reports whether page has a mock.
func (s *Store) Has(page kccontext.PageID) bool {
	_, err := fs.Stat(s.fsys, fileName(page))
	return err == nil
}

// Document returns the merged mock for page as a generic document, with
// overrides applied last.
func (s *Store) Document(page kccontext.PageID, overrides map[string]any) (map[string]any, error) {
	if !s.Has(page) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	doc := map[string]any{}
	layers := []func() (map[string]any, error){
		func() (map[string]any, error) { return readYAML(s.fsys, commonFile+".yaml") },
		func() (map[string]any, error) { return readYAML(s.fsys, fileName(page)) },
		func() (map[string]any, error) { return s.readOverride(commonFile + ".yaml") },
		func() (map[string]any, error) { return s.readOverride(fileName(page)) },
	}
	for _, layer := range layers {
		patch, err := layer()
		if err != nil {
			return nil, err
		}
		doc = DeepMerge(doc, patch)
	}
	doc = DeepMerge(doc, overrides)
	doc["pageId"] = string(page)

	execution, tabID := s.newID(), s.newID()
	replacer := strings.NewReplacer(
		"{origin}", s.origin,
		"{realm}", s.realm,
		"{execution}", execution,
		"{tabId}", tabID,
	)
	return expand(doc, replacer).(map[string]any), nil
}

// Get returns the typed kcContext for page.
func (s *Store) Get(page kccontext.PageID, overrides map[string]any) (kccontext.KcContext, error) {
	raw, err := s.JSON(page, overrides)
	if err != nil {
		return nil, err
	}
	kc, err := kccontext.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("mock: %s: %w", page, err)
	}
	return kc, nil
}

// JSON returns the merged mock for page encoded as JSON.
func (s *Store) JSON(page kccontext.PageID, overrides map[string]any) ([]byte, error) {
	doc, err := s.Document(page, overrides)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("mock: encode %s: %w", page, err)
	}
	return raw, nil
}

func (s *Store) readOverride(name string) (map[string]any, error) {
	if s.overrideDir == "" {
		return nil, nil
	}
	path := filepath.Join(s.overrideDir, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return readYAML(os.DirFS(s.overrideDir), name)
}

func readYAML(fsys fs.FS, name string) (map[string]any, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("mock: read %s: %w", name, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mock: parse %s: %w", name, err)
	}
	return doc, nil
}

func fileName(page kccontext.PageID) string {
	return strings.TrimSuffix(string(page), ".ftl") + ".yaml"
}

// DeepMerge merges src into dst. Nested mappings merge key by key; any other
// value in src, lists included, replaces the one in dst. A nil value in src
// deletes the key.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		if value == nil {
			delete(dst, key)
			continue
		}
		incoming, isMap := value.(map[string]any)
		existing, hasMap := dst[key].(map[string]any)
		if isMap && hasMap {
			dst[key] = DeepMerge(existing, incoming)
			continue
		}
		if isMap {
			dst[key] = DeepMerge(nil, incoming)
			continue
		}
		dst[key] = value
	}
	return dst
}

func expand(value any, replacer *strings.Replacer) any {
	switch typed := value.(type) {
	case string:
		return replacer.Replace(typed)
	case map[string]any:
		for key, item := range typed {
			typed[key] = expand(item, replacer)
		}
		return typed
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = expand(item, replacer)
		}
		return out
	default:
		return value
	}
}
