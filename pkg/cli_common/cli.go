package clicommon

import (
	"github.com/klothoplatform/warmup/pkg/closenicely"
	"github.com/klothoplatform/warmup/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	Verbose LevelledFlag
	JsonLog bool
	Color   string
	LogsDir string
}

// LogOpts maps the common flags to logging options. A single -v enables debug logs; npm output
// stays at warn unless -v is given twice.
func (c *CommonConfig) LogOpts() logging.LogOpts {
	opts := logging.LogOpts{
		Verbose:         c.Verbose.AtLeast(VerboseDebug),
		Color:           c.Color,
		CategoryLogsDir: c.LogsDir,
		DefaultLevels: map[string]zapcore.Level{
			"npm": zap.WarnLevel,
		},
	}
	if c.Verbose.AtLeast(VerboseAll) {
		opts.DefaultLevels = nil
	}
	if c.JsonLog {
		opts.Encoding = "json"
	}
	return opts
}

func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.VarP(&commonCfg.Verbose, "verbose", "v", "Enable verbose logging (repeat for more)")
	flags.Lookup("verbose").NoOptDefVal = "true"
	flags.BoolVar(&commonCfg.JsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.Color, "color", "auto", "Colorize log output: auto, always or never")
	flags.StringVar(&commonCfg.LogsDir, "logs-dir", "", "Also write full logs to one file per category in this directory")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger := commonCfg.LogOpts().NewLogger()
		zap.ReplaceGlobals(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		closenicely.FuncOrDebug(zap.L().Sync)
	}
}
