package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/klothoplatform/warmup/pkg/warmer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type generateConfig struct {
	output string
	format string
}

func newGenerateCmd(svcFlags *serviceFlags) *cobra.Command {
	var cfg generateConfig
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Add the configured warmers to the service and write the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd, svcFlags, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfg.output, "output", "o", "-", "Where to write the service, - for stdout")
	flags.StringVarP(&cfg.format, "format", "f", "yaml", "Output format: yaml or json")
	return cmd
}

func generate(cmd *cobra.Command, svcFlags *serviceFlags, cfg generateConfig) error {
	if err := service.ValidFormat(cfg.format); err != nil {
		return err
	}
	p, err := svcFlags.plugin()
	if err != nil {
		return err
	}
	if err := p.AddWarmers(cmd.Context()); err != nil {
		return err
	}

	write := func(w io.Writer) error {
		return p.Service.Write(w, cfg.format)
	}
	if cfg.output == "-" {
		err = write(cmd.OutOrStdout())
	} else {
		err = writeFile(cfg.output, write)
	}
	if err != nil {
		return errors.Wrap(err, "could not write service")
	}

	printWarmers(cmd.ErrOrStderr(), p)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	return writeAndClose(f, write)
}

// writeAndClose returns the first of the write and Close errors.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	err := write(wc)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

func printWarmers(w io.Writer, p *warmer.Plugin) {
	for _, wr := range p.Warmers {
		if len(wr.Config.Functions) == 0 {
			fmt.Fprintf(w, "%s %s: no functions to warm\n", color.YellowString("-"), wr.Key)
			continue
		}
		fmt.Fprintf(w, "%s %s: %d function(s) -> %s\n",
			color.GreenString("✓"), wr.Key, len(wr.Config.Functions), wr.Config.Name)
	}
}
