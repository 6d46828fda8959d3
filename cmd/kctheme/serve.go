package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-kctheme/pkg/preview"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		mocksDir string
		watch    []string
		noReload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every page from mock contexts with live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.cfg.Addr = addr
			}
			if flags.Changed("mocks") {
				a.cfg.MocksDir = mocksDir
			}
			if flags.Changed("watch") {
				a.cfg.Watch = watch
			}
			if noReload {
				a.cfg.LiveReload = false
			}

			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			srv, err := preview.New(
				preview.WithLogger(a.logger.Named("preview")),
				preview.WithOrchestrator(orch),
				preview.WithMocks(a.mocks()),
				preview.WithLiveReload(a.cfg.LiveReload),
				preview.WithDefaultLocale(a.cfg.Locale),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.LiveReload {
				if err := srv.Watch(ctx, a.watchDirs()...); err != nil {
					return err
				}
			}
			return srv.ListenAndServe(ctx, a.cfg.Addr, a.cfg.ShutdownGrace)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", a.cfg.Addr, "HTTP listen address")
	flags.StringVar(&mocksDir, "mocks", "", "directory with mock overrides (<page>.yaml, common.yaml)")
	flags.StringSliceVar(&watch, "watch", nil, "extra directories to watch for changes")
	flags.BoolVar(&noReload, "no-livereload", false, "disable the reload socket and file watching")
	return cmd
}

// watchDirs lists what the preview reloads on: mock overrides, templates,
// manifests, presets and anything configured explicitly.
func (a *app) watchDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		if dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	add(a.cfg.MocksDir)
	add(a.cfg.Templates)
	for _, path := range a.cfg.Theme.Manifests {
		add(path)
	}
	for _, path := range a.cfg.Presets {
		add(path)
	}
	for _, dir := range a.cfg.Watch {
		add(dir)
	}
	return dirs
}
