package cli

import (
	"github.com/spf13/cobra"
)

func newCleanupCmd(svcFlags *serviceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove generated warmer handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := svcFlags.plugin()
			if err != nil {
				return err
			}
			return p.Cleanup(cmd.Context())
		},
	}
}
