package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-kctheme/internal/config"
	"github.com/goliatone/go-kctheme/internal/mock"
	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/tui"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla"
)

// app carries the state shared by every command.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	envFile    string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	// promptDriver replaces the terminal driver of the fill command.
	promptDriver tui.PromptDriver
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, cfg: config.Default(), logger: zap.NewNop()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kctheme",
		Short: "Keycloak login theme renderer",
		Long: `kctheme renders Keycloak login pages from a kcContext.

It can render a page to HTML, serve every page from mock contexts with live
reload, or walk through a page's form in the terminal and print the POST body
Keycloak would receive.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetVersionTemplate(`{{printf "kctheme version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with KCTHEME_* overrides")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRenderCmd(a),
		newServeCmd(a),
		newFillCmd(a),
		newPagesCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel))); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(level)
	logCfg.Encoding = "console"
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// orchestrator wires the configured theme manifests, presets and renderers.
func (a *app) orchestrator(extra ...render.Renderer) (*orchestrator.Orchestrator, error) {
	vanillaOpts := []vanilla.Option{}
	if a.cfg.Templates != "" {
		vanillaOpts = append(vanillaOpts,
			vanilla.WithTemplatesDir(a.cfg.Templates),
			vanilla.WithTemplateReload(true),
		)
	}
	html, err := vanilla.New(vanillaOpts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	for _, renderer := range extra {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}

	options := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(a.cfg.Renderer),
	}

	if len(a.cfg.Theme.Manifests) > 0 {
		manifests := []*theme.Manifest{appearance.DefaultManifest()}
		for _, path := range a.cfg.Theme.Manifests {
			manifest, err := appearance.LoadManifestFile(path)
			if err != nil {
				return nil, err
			}
			manifests = append(manifests, manifest)
		}
		options = append(options, orchestrator.WithThemeManifests(manifests...))
	}
	if a.cfg.Theme.Name != "" || a.cfg.Theme.Variant != "" {
		options = append(options, orchestrator.WithThemeDefaults(a.cfg.Theme.Name, a.cfg.Theme.Variant))
	}

	for _, path := range a.cfg.Presets {
		transformer, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformers(transformer))
	}

	a.logger.Debug("orchestrator configured",
		zap.Strings("renderers", registry.List()),
		zap.Strings("manifests", a.cfg.Theme.Manifests),
		zap.Strings("presets", a.cfg.Presets),
	)
	return orchestrator.New(options...), nil
}

func (a *app) mocks() *mock.Store {
	return mock.New(
		mock.WithOverrideDir(a.cfg.MocksDir),
		mock.WithOrigin(a.cfg.Origin),
		mock.WithRealm(a.cfg.Realm),
	)
}

// contextSource resolves the kcContext a command works on: a file when
// --context is given, otherwise the mock for --page.
type contextSource struct {
	file   string
	page   string
	locale string
}

func (s *contextSource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "context", "", "kcContext file (JSON or YAML)")
	cmd.Flags().StringVarP(&s.page, "page", "p", "login", "mock page to use when --context is not set")
	cmd.Flags().StringVarP(&s.locale, "locale", "l", "", "locale override")
}

func (s *contextSource) load(a *app) ([]byte, error) {
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read context: %w", err)
		}
		return data, nil
	}
	var overrides map[string]any
	if locale := s.effectiveLocale(a); locale != "" {
		overrides = map[string]any{"locale": map[string]any{"currentLanguageTag": locale}}
	}
	page := strings.TrimSpace(s.page)
	if !strings.HasSuffix(page, ".ftl") {
		page += ".ftl"
	}
	return a.mocks().JSON(kccontext.PageID(page), overrides)
}

func (s *contextSource) effectiveLocale(a *app) string {
	if s.locale != "" {
		return s.locale
	}
	return a.cfg.Locale
}
