package cli

import (
	"github.com/klothoplatform/warmup/pkg/invoke"
	"github.com/spf13/cobra"
)

func newPrewarmCmd(svcFlags *serviceFlags) *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "prewarm",
		Short: "Invoke deployed warmers once",
		Long:  "Invoke deployed warmers once. Without --warmer, the warmers configured with prewarm: true are invoked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := svcFlags.plugin()
			if err != nil {
				return err
			}
			client, err := invoke.NewClient(cmd.Context(), invoke.ClientOptions{Region: p.Service.Provider.Region})
			if err != nil {
				return err
			}
			p.Invoker = client
			return p.Prewarm(cmd.Context(), names...)
		},
	}
	cmd.Flags().StringSliceVarP(&names, "warmer", "w", nil, "Warmers to invoke")
	return cmd
}
