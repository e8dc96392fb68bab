package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/klothoplatform/warmup/pkg/invoke"
	"github.com/klothoplatform/warmup/pkg/warmup"
	"github.com/spf13/cobra"
)

type localConfig struct {
	warmer  string
	tracing bool
}

func newLocalCmd(svcFlags *serviceFlags) *cobra.Command {
	var cfg localConfig
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run one warm-up round from this machine",
		Long: "Run one warm-up round from this machine against the deployed functions, " +
			"with the same concurrency and payload rules as the generated handler.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := svcFlags.plugin()
			if err != nil {
				return err
			}
			w, ok := p.Warmer(cfg.warmer)
			if !ok {
				return fmt.Errorf("warmer %s is not configured", cfg.warmer)
			}
			client, err := invoke.NewClient(cmd.Context(), invoke.ClientOptions{
				Region:  p.Service.Provider.Region,
				Tracing: cfg.tracing,
			})
			if err != nil {
				return err
			}

			runner := &warmup.Runner{
				Client:    client,
				Functions: w.Config.Functions,
				Verbose:   w.Config.Verbose,
			}
			result := runner.WarmUp(cmd.Context())

			summary := fmt.Sprintf("Warm Up Finished with %d invoke errors", result.Failures)
			if result.Failures > 0 {
				summary = color.RedString(summary)
			} else {
				summary = color.GreenString(summary)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), summary)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfg.warmer, "warmer", "w", "default", "Warmer to run")
	flags.BoolVar(&cfg.tracing, "trace", false, "Instrument the Lambda client with X-Ray")
	return cmd
}
