package warmer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alitto/pond"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/invoke"
	"github.com/klothoplatform/warmup/pkg/logging"
	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/klothoplatform/warmup/pkg/warmup"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultPrewarmQualifier is invoked when SERVERLESS_ALIAS is not set.
const DefaultPrewarmQualifier = "$LATEST"

// Plugin adds the configured warmers to a service and operates on them once deployed.
type Plugin struct {
	Service   *service.Service
	Warmers   []config.Warmer
	Artifacts ArtifactSynthesizer
	// Invoker is only needed by Prewarm.
	Invoker invoke.InvokeAPI
	// Getenv reads SERVERLESS_ALIAS, os.Getenv when nil.
	Getenv func(string) string
}

// NewPlugin resolves the warmers configured in svc. Handlers needing tracing dependencies are
// provisioned with npm.
func NewPlugin(svc *service.Service) (*Plugin, error) {
	warmers, err := config.Resolve(svc)
	if err != nil {
		return nil, err
	}
	return &Plugin{
		Service:   svc,
		Warmers:   warmers,
		Artifacts: ArtifactSynthesizer{Installer: NpmInstaller{}},
	}, nil
}

// AddWarmers generates every warmer that has functions to warm: its role (unless one is
// configured), its handler and its function definition.
func (p *Plugin) AddWarmers(ctx context.Context) error {
	for _, w := range p.Warmers {
		// npm output is logged under its own category, so only the field is carried down
		wctx := logging.WithLogger(ctx, logging.GetLogger(ctx).With(logging.WarmerField(w.Key)))
		log := logging.GetLogger(ctx).Named("warmer").With(logging.WarmerField(w.Key))
		cfg := w.Config

		if len(cfg.Functions) == 0 {
			log.Info("Skipping warmer: no functions to warm up")
			continue
		}

		if cfg.Role == "" {
			AddRole(p.Service, p.Service.Provider.Stage, w.Key, cfg)
		}

		err := p.Artifacts.CreateArtifact(
			wctx,
			cfg.Functions,
			ArtifactOptions{
				Tracing: cfg.TracingEnabled(),
				Verbose: cfg.Verbose,
				Region:  p.Service.Provider.Region,
			},
			p.folder(cfg),
		)
		if err != nil {
			return errors.Wrapf(err, "could not create handler for warmer %s", w.Key)
		}

		AddFunction(p.Service, w.Key, cfg)
		log.Info("Added warmer", zap.Int("functions", len(cfg.Functions)), zap.String("role", cfg.Role))
	}
	return nil
}

// Cleanup removes the generated handler folders of warmers with cleanFolder set, and the
// .warmup root once it is empty.
func (p *Plugin) Cleanup(ctx context.Context) error {
	log := logging.GetLogger(ctx).Named("warmer")

	var merr error
	for _, w := range p.Warmers {
		if !w.Config.CleanFolder {
			continue
		}
		folder := p.folder(w.Config)
		if err := os.RemoveAll(folder); err != nil {
			merr = multierr.Append(merr, errors.Wrapf(err, "could not remove %s", folder))
			continue
		}
		log.Debug("Removed warmer folder", logging.WarmerField(w.Key), logging.PathField(folder))
	}

	root := filepath.Join(p.Service.Dir, config.FolderRoot)
	entries, err := os.ReadDir(root)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		merr = multierr.Append(merr, err)
	case len(entries) == 0:
		merr = multierr.Append(merr, os.Remove(root))
	}
	return merr
}

// Prewarm invokes the named warmers once, or those with prewarm enabled when no names are given.
// Invocation failures are logged and don't fail the call.
func (p *Plugin) Prewarm(ctx context.Context, names ...string) error {
	log := logging.GetLogger(ctx).Named("prewarm")

	selected, err := p.selectWarmers(names)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		log.Info("No warmers to prewarm")
		return nil
	}
	if p.Invoker == nil {
		return errors.New("no lambda client configured for prewarm")
	}

	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	qualifier := getenv(warmup.AliasEnv)
	if qualifier == "" {
		qualifier = DefaultPrewarmQualifier
	}

	pool := pond.New(len(selected), 1000, pond.Strategy(pond.Lazy()))
	for _, w := range selected {
		w := w
		pool.Submit(func() {
			wlog := log.With(logging.WarmerField(w.Key), logging.FunctionField(w.Config.Name))
			out, err := p.Invoker.Invoke(ctx, &lambda.InvokeInput{
				FunctionName:   aws.String(w.Config.Name),
				InvocationType: types.InvocationTypeRequestResponse,
				LogType:        types.LogTypeNone,
				Qualifier:      aws.String(qualifier),
				Payload:        []byte(config.DefaultPayload),
			})
			switch {
			case err != nil:
				wlog.Error("Prewarm failed", zap.Error(err))
			case out.FunctionError != nil:
				wlog.Error("Prewarm failed", zap.String("function_error", aws.ToString(out.FunctionError)))
			default:
				wlog.Info("Prewarmed warmer")
			}
		})
	}
	pool.StopAndWait()
	return nil
}

func (p *Plugin) selectWarmers(names []string) ([]config.Warmer, error) {
	var selected []config.Warmer
	if len(names) == 0 {
		for _, w := range p.Warmers {
			if w.Config.Prewarm && len(w.Config.Functions) > 0 {
				selected = append(selected, w)
			}
		}
		return selected, nil
	}

	var merr error
	for _, name := range names {
		w, ok := p.Warmer(name)
		if !ok {
			merr = multierr.Append(merr, fmt.Errorf("warmer %s is not configured", name))
			continue
		}
		selected = append(selected, w)
	}
	return selected, merr
}

// Warmer returns the warmer configured under name.
func (p *Plugin) Warmer(name string) (config.Warmer, bool) {
	for _, w := range p.Warmers {
		if w.Key == name {
			return w, true
		}
	}
	return config.Warmer{}, false
}

func (p *Plugin) folder(cfg *config.WarmerConfig) string {
	return filepath.Join(p.Service.Dir, filepath.FromSlash(cfg.FolderName))
}
