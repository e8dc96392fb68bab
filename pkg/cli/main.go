package cli

import (
	"context"
	"os"

	clicommon "github.com/klothoplatform/warmup/pkg/cli_common"
	"github.com/spf13/cobra"
)

type WarmupMain struct {
	Version string
}

var commonCfg clicommon.CommonConfig

func (wm WarmupMain) Main() {
	root := wm.NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		ErrorHandler{Verbose: commonCfg.Verbose.AtLeast(clicommon.VerboseDebug)}.PrintErr(err)
		os.Exit(1)
	}
}

func (wm WarmupMain) NewRootCmd() *cobra.Command {
	var root = &cobra.Command{
		Use:           "warmup",
		Short:         "Generate and run Lambda warmers for a serverless service",
		Version:       wm.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	clicommon.SetupRoot(root, &commonCfg)

	var svcFlags serviceFlags
	svcFlags.register(root)

	root.AddCommand(newGenerateCmd(&svcFlags))
	root.AddCommand(newPrewarmCmd(&svcFlags))
	root.AddCommand(newCleanupCmd(&svcFlags))
	root.AddCommand(newLocalCmd(&svcFlags))
	return root
}
