package preview

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-kctheme/internal/mock"
	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render/template/pongo"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	readHeaderTimeout = 10 * time.Second
	livereloadPath    = "/livereload"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrchestrator sets the orchestrator pages render through.
func WithOrchestrator(orch *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		s.orch = orch
	}
}

// WithMocks sets the mock store pages are loaded from.
func WithMocks(store *mock.Store) Option {
	return func(s *Server) {
		s.mocks = store
	}
}

// WithAssets replaces the files served under /assets/.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// WithMetricsRegistry registers the preview metrics on reg instead of a
// private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithLiveReload toggles the reload socket and the page hook that joins it.
func WithLiveReload(enabled bool) Option {
	return func(s *Server) {
		s.liveReload = enabled
	}
}

// WithDefaultLocale sets the locale used when a request names none.
func WithDefaultLocale(locale string) Option {
	return func(s *Server) {
		s.defaultLocale = locale
	}
}

// WithSecureCookies marks the appearance cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// Server is the development preview.
type Server struct {
	logger        *zap.Logger
	orch          *orchestrator.Orchestrator
	mocks         *mock.Store
	assets        fs.FS
	index         *pongo.Engine
	registry      *prometheus.Registry
	metrics       *metrics
	hub           *reloadHub
	liveReload    bool
	defaultLocale string
	secureCookies bool

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	watchStop chan struct{}
	watchDone chan struct{}
	closed    bool
}

// New builds a Server. Missing collaborators default to the bundled
// orchestrator, mock store and vanilla assets.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:     zap.NewNop(),
		liveReload: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.orch == nil {
		s.orch = orchestrator.New()
	}
	if s.mocks == nil {
		s.mocks = mock.New()
	}
	if s.assets == nil {
		s.assets = vanilla.AssetsFS()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m, err := newMetrics(s.registry)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	s.hub = newReloadHub(s.logger, m)

	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("preview: templates: %w", err)
	}
	engine, err := pongo.New(pongo.WithFS(sub), pongo.WithName("preview"))
	if err != nil {
		return nil, fmt.Errorf("preview: templates: %w", err)
	}
	s.index = engine

	return s, nil
}

// Handler returns the preview routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /pages/{page}", s.handlePage)
	mux.HandleFunc("POST /pages/{page}", s.handlePost)
	mux.HandleFunc("POST /realms/{realm}/", s.handlePost)
	mux.HandleFunc("POST /appearance", s.handleAppearance)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	if s.liveReload {
		mux.HandleFunc("GET "+livereloadPath, s.hub.serveHTTP)
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Reload tells connected browsers to reload and returns how many were
// notified.
func (s *Server) Reload(reason string) int {
	s.metrics.reloads.Inc()
	sent := s.hub.broadcast(Event{Type: EventReload, Reason: reason})
	s.logger.Info("reload", zap.String("reason", reason), zap.Int("clients", sent))
	return sent
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// grace and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	s.logger.Info("preview listening", zap.String("addr", addr), zap.Bool("livereload", s.liveReload))

	select {
	case err := <-errChan:
		if err != nil {
			_ = s.Close()
			return fmt.Errorf("preview: listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	// Hijacked reload sockets are not tracked by Shutdown.
	s.hub.close()
	err := httpServer.Shutdown(shutdownCtx)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("preview: shutdown: %w", err)
	}
	s.logger.Info("preview stopped")
	return nil
}

// Close stops the watcher and disconnects reload clients.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stopWatcher()
	s.hub.close()
	return nil
}
