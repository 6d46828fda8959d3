package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		source    contextSource
		renderer  string
		themeName string
		variant   string
		mode      string
		output    string
		noConfirm bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a login page to HTML",
		Example: `  kctheme render --page register --variant dark
  kctheme render --context kc.json --output login.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := source.load(a)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			opts := render.RenderOptions{
				Locale:     source.effectiveLocale(a),
				Appearance: appearance.ParseMode(mode),
			}
			if noConfirm {
				opts.DoMakeUserConfirmPassword = render.Bool(false)
			}

			out, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Context:       payload,
				Renderer:      renderer,
				ThemeName:     themeName,
				ThemeVariant:  variant,
				RenderOptions: opts,
			})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			a.logger.Info("page written", zap.String("path", output), zap.Int("bytes", len(out)))
			return nil
		},
	}

	source.bind(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&renderer, "renderer", "r", "", "renderer name (defaults to the configured renderer)")
	flags.StringVar(&themeName, "theme", "", "theme manifest name")
	flags.StringVar(&variant, "variant", "", "theme variant (light, dark)")
	flags.StringVar(&mode, "appearance", "system", "appearance mode (light, dark, system)")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&noConfirm, "no-password-confirm", false, "do not ask for the password twice")
	return cmd
}
