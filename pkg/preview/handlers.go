package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kctheme/internal/mock"
	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
)

var previewVariants = []string{string(appearance.ModeLight), string(appearance.ModeDark)}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	pages := make([]map[string]any, 0)
	for _, page := range s.mocks.Pages() {
		name := strings.TrimSuffix(string(page), ".ftl")
		links := make([]map[string]any, 0, len(previewVariants))
		for _, variant := range previewVariants {
			links = append(links, map[string]any{
				"label": variant,
				"href":  "/pages/" + name + "?variant=" + variant,
			})
		}
		pages = append(pages, map[string]any{
			"id":    string(page),
			"href":  "/pages/" + name,
			"links": links,
		})
	}

	html, err := s.index.RenderTemplate("index", map[string]any{
		"pages":      pages,
		"renderers":  s.orch.Renderers(),
		"mode":       appearance.FromRequest(r).String(),
		"liveReload": s.liveReload,
	})
	if err != nil {
		s.logger.Error("render index", zap.Error(err))
		http.Error(w, "render index failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Debug("write index", zap.Error(err))
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := pageID(r.PathValue("page"))
	query := r.URL.Query()

	locale := strings.TrimSpace(query.Get("locale"))
	if locale == "" {
		locale = s.defaultLocale
	}
	var overrides map[string]any
	if locale != "" {
		overrides = map[string]any{"locale": map[string]any{"currentLanguageTag": locale}}
	}

	payload, err := s.mocks.JSON(page, overrides)
	if err != nil {
		if errors.Is(err, mock.ErrUnknownPage) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("load mock", zap.String("page", string(page)), zap.Error(err))
		http.Error(w, "load mock failed", http.StatusInternalServerError)
		return
	}

	renderer, err := s.orch.Renderer(strings.TrimSpace(query.Get("renderer")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	opts := render.RenderOptions{
		Locale:     locale,
		Appearance: appearance.FromRequest(r),
	}
	if s.liveReload {
		opts.LiveReloadURL = liveReloadURL(r)
	}

	start := time.Now()
	output, err := s.orch.Generate(r.Context(), orchestrator.Request{
		Context:       payload,
		Renderer:      renderer.Name(),
		ThemeName:     strings.TrimSpace(query.Get("theme")),
		ThemeVariant:  strings.TrimSpace(query.Get("variant")),
		RenderOptions: opts,
	})
	elapsed := time.Since(start)
	s.metrics.observeRender(string(page), renderer.Name(), err, elapsed)
	if err != nil {
		s.logger.Error("render page",
			zap.String("page", string(page)),
			zap.String("renderer", renderer.Name()),
			zap.Error(err),
		)
		http.Error(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debug("rendered page",
		zap.String("page", string(page)),
		zap.String("renderer", renderer.Name()),
		zap.Duration("elapsed", elapsed),
	)
	w.Header().Set("Content-Type", renderer.ContentType())
	if _, err := w.Write(output); err != nil {
		s.logger.Debug("write page", zap.Error(err))
	}
}

// Echo is the response to a form post: what Keycloak would have received.
type Echo struct {
	Method string              `json:"method"`
	Path   string              `json:"path"`
	Query  map[string][]string `json:"query,omitempty"`
	Fields map[string][]string `json:"fields"`
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	echo := Echo{
		Method: r.Method,
		Path:   r.URL.Path,
		Fields: map[string][]string(r.PostForm),
	}
	if len(r.URL.Query()) > 0 {
		echo.Query = map[string][]string(r.URL.Query())
	}
	if echo.Fields == nil {
		echo.Fields = map[string][]string{}
	}

	s.metrics.posts.WithLabelValues(postLabel(r)).Inc()
	s.logger.Info("form posted", zap.String("path", r.URL.Path), zap.Strings("fields", fieldNames(r.PostForm)))

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(echo); err != nil {
		s.logger.Debug("write echo", zap.Error(err))
	}
}

func (s *Server) handleAppearance(w http.ResponseWriter, r *http.Request) {
	mode := appearance.ParseMode(r.FormValue("mode"))
	http.SetCookie(w, appearance.Cookie(mode, s.secureCookies))

	if target := r.FormValue("redirect"); isLocalPath(target) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageID accepts both "login" and "login.ftl".
func pageID(raw string) kccontext.PageID {
	raw = strings.TrimSpace(raw)
	if !strings.HasSuffix(raw, ".ftl") {
		raw += ".ftl"
	}
	return kccontext.PageID(raw)
}

func liveReloadURL(r *http.Request) string {
	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: livereloadPath}).String()
}

func isLocalPath(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\")
}

// postLabel keeps the metric cardinality bounded: Keycloak action paths
// collapse to the action name.
func postLabel(r *http.Request) string {
	if page := r.PathValue("page"); page != "" {
		return "/pages/" + string(pageID(page))
	}
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	return "/login-actions/" + segments[len(segments)-1]
}

func fieldNames(values url.Values) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
