package warmer

import (
	"bytes"
	"context"
	"embed"

	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/io"
	"github.com/klothoplatform/warmup/pkg/logging"
	"github.com/klothoplatform/warmup/pkg/templateutils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// HandlerFile is the name of the generated handler within the warmer's folder.
const HandlerFile = "index.mjs"

//go:embed templates/index.mjs.tmpl
var files embed.FS

var handlerTemplate = templateutils.MustTemplate(files, "templates/index.mjs.tmpl")

type (
	ArtifactOptions struct {
		Tracing bool
		Verbose bool
		Region  string
	}

	ArtifactSynthesizer struct {
		Installer DependencyInstaller
	}

	handlerData struct {
		Functions []config.FunctionTarget
		Tracing   bool
		Verbose   bool
		Region    string
	}
)

// RenderArtifact renders the warm-up handler. The output depends only on its inputs.
func RenderArtifact(functions []config.FunctionTarget, opts ArtifactOptions) ([]byte, error) {
	if functions == nil {
		functions = []config.FunctionTarget{}
	}
	buf := new(bytes.Buffer)
	err := handlerTemplate.Execute(buf, handlerData{
		Functions: functions,
		Tracing:   opts.Tracing,
		Verbose:   opts.Verbose,
		Region:    opts.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not render warmer handler")
	}
	return buf.Bytes(), nil
}

// CreateArtifact writes the handler to handlerFolder, replacing any previous one, and provisions
// the tracing dependency next to it when tracing is enabled. Steps run in order and the first
// failure is returned; nothing written before it is removed.
func (s ArtifactSynthesizer) CreateArtifact(
	ctx context.Context,
	functions []config.FunctionTarget,
	opts ArtifactOptions,
	handlerFolder string,
) error {
	log := logging.GetLogger(ctx)

	content, err := RenderArtifact(functions, opts)
	if err != nil {
		return err
	}
	err = io.OutputTo([]io.File{&io.RawFile{FPath: HandlerFile, Content: content}}, handlerFolder)
	if err != nil {
		return err
	}
	log.Debug("Wrote warmer handler", logging.PathField(handlerFolder), zap.Int("functions", len(functions)))

	if !opts.Tracing {
		return nil
	}
	if s.Installer == nil {
		return errors.New("tracing is enabled but no dependency installer is configured")
	}
	if err := s.Installer.InitManifest(ctx, handlerFolder); err != nil {
		return err
	}
	return s.Installer.Install(ctx, handlerFolder, TracingDependency)
}
