package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-kctheme/pkg/orchestrator"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		source    contextSource
		format    string
		output    string
		noConfirm bool
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Answer a page's form in the terminal and print the POST body",
		Example: `  kctheme fill --page register
  kctheme fill --context kc.json --format form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, ok := tui.ParseOutputFormat(strings.ToLower(format))
			if !ok {
				return fmt.Errorf("unknown format %q (json, form, pretty)", format)
			}
			payload, err := source.load(a)
			if err != nil {
				return err
			}

			terminal, err := tui.New(
				tui.WithOutputFormat(outputFormat),
				tui.WithInfoOutput(cmd.ErrOrStderr()),
				tui.WithPromptDriver(a.promptDriver),
			)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator(terminal)
			if err != nil {
				return err
			}

			opts := render.RenderOptions{Locale: source.effectiveLocale(a)}
			if noConfirm {
				opts.DoMakeUserConfirmPassword = render.Bool(false)
			}
			out, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Context:       payload,
				Renderer:      tui.Name,
				RenderOptions: opts,
			})
			if err != nil {
				return err
			}
			if !strings.HasSuffix(string(out), "\n") {
				out = append(out, '\n')
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o600); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	source.bind(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&noConfirm, "no-password-confirm", false, "do not ask for the password twice")
	return cmd
}
