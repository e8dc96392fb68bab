package warmer

import (
	"context"
	"strings"

	"github.com/klothoplatform/warmup/pkg/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TracingDependency is the package the generated handler imports when tracing is enabled.
const TracingDependency = "aws-xray-sdk-core"

type DependencyInstaller interface {
	// InitManifest creates a package manifest in dir.
	InitManifest(ctx context.Context, dir string) error
	// Install adds pkgs to the manifest in dir and installs them.
	Install(ctx context.Context, dir string, pkgs ...string) error
}

// NpmInstaller runs npm in the handler folder. Its output is logged under the "npm" logger.
type NpmInstaller struct {
	// Npm is the npm executable, "npm" when empty.
	Npm string
}

func (n NpmInstaller) InitManifest(ctx context.Context, dir string) error {
	return n.run(ctx, dir, "init", "-y")
}

func (n NpmInstaller) Install(ctx context.Context, dir string, pkgs ...string) error {
	return n.run(ctx, dir, append([]string{"install", "--save"}, pkgs...)...)
}

func (n NpmInstaller) run(ctx context.Context, dir string, args ...string) error {
	npm := n.Npm
	if npm == "" {
		npm = "npm"
	}
	log := logging.GetLogger(ctx).Named("npm")

	log.Debug("Executing npm", zap.Strings("args", args), logging.PathField(dir))
	err := logging.RunCommand(ctx, logging.CommandLogger{
		RootLogger:  log,
		StdoutLevel: zap.DebugLevel,
		StderrLevel: zap.WarnLevel,
		Dir:         dir,
	}, npm, args...)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed in %s", npm, strings.Join(args, " "), dir)
	}
	return nil
}
