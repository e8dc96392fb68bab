package config

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/klothoplatform/warmup/pkg/provider/aws/resources"
	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	warmerOptions struct {
		FolderName         *string           `mapstructure:"folderName"`
		CleanFolder        *bool             `mapstructure:"cleanFolder"`
		Name               *string           `mapstructure:"name"`
		Role               *string           `mapstructure:"role"`
		RoleName           *string           `mapstructure:"roleName"`
		Tags               map[string]string `mapstructure:"tags"`
		VPC                any               `mapstructure:"vpc"`
		Events             []map[string]any  `mapstructure:"events"`
		Architecture       *string           `mapstructure:"architecture"`
		Package            *packageOptions   `mapstructure:"package"`
		MemorySize         *int              `mapstructure:"memorySize"`
		Timeout            *int              `mapstructure:"timeout"`
		Environment        map[string]string `mapstructure:"environment"`
		Tracing            *bool             `mapstructure:"tracing"`
		Verbose            *bool             `mapstructure:"verbose"`
		LogRetentionInDays *int              `mapstructure:"logRetentionInDays"`
		Prewarm            *bool             `mapstructure:"prewarm"`

		functionOptions `mapstructure:",squash"`
	}

	packageOptions struct {
		Individually *bool    `mapstructure:"individually"`
		Patterns     []string `mapstructure:"patterns"`
	}

	// functionOptions are set per function under `functions.<fn>.warmup.<warmer>`, or as defaults
	// for all of a warmer's functions directly in the warmer config.
	functionOptions struct {
		Enabled       any     `mapstructure:"enabled"`
		Alias         *string `mapstructure:"alias"`
		ClientContext any     `mapstructure:"clientContext"`
		Payload       any     `mapstructure:"payload"`
		PayloadRaw    *bool   `mapstructure:"payloadRaw"`
		Concurrency   *int    `mapstructure:"concurrency"`
	}
)

// Resolve builds the config of every warmer declared under custom.warmup, sorted by warmer name.
// Problems across all warmers and functions are reported together.
func Resolve(svc *service.Service) ([]Warmer, error) {
	raw, err := warmupSection(svc)
	if err != nil {
		return nil, err
	}
	if err := Validate(svc); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var merr error
	warmers := make([]Warmer, 0, len(keys))
	for _, key := range keys {
		var opts warmerOptions
		if err := decode(raw[key], &opts); err != nil {
			merr = multierr.Append(merr, errors.Wrapf(err, "invalid config for warmer %s", key))
			continue
		}
		cfg := warmerConfig(svc, key, opts)
		fns, err := warmerFunctions(svc, key, opts.functionOptions)
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		cfg.Functions = fns
		warmers = append(warmers, Warmer{Key: key, Config: cfg})
	}
	merr = multierr.Append(merr, checkFunctionWarmers(svc, raw))
	if merr != nil {
		return nil, merr
	}
	return warmers, nil
}

func warmupSection(svc *service.Service) (map[string]any, error) {
	v, ok := svc.Custom["warmup"]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("custom.warmup must be a mapping of warmer names to warmer configs")
	}
	return raw, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func warmerConfig(svc *service.Service, key string, opts warmerOptions) *WarmerConfig {
	stage := svc.Provider.Stage
	folderName := path.Join(FolderRoot, key)
	if opts.FolderName != nil {
		folderName = *opts.FolderName
	}

	cfg := &WarmerConfig{
		Name:               fmt.Sprintf("%s-%s-warmup-plugin-%s", svc.Name, stage, key),
		FolderName:         folderName,
		CleanFolder:        boolOr(opts.CleanFolder, true),
		Role:               stringOr(opts.Role, ""),
		RoleName:           stringOr(opts.RoleName, ""),
		Tags:               opts.Tags,
		VPC:                vpcConfig(opts.VPC),
		Events:             opts.Events,
		Architecture:       stringOr(opts.Architecture, ""),
		MemorySize:         intOr(opts.MemorySize, DefaultMemorySize),
		Timeout:            intOr(opts.Timeout, DefaultTimeout),
		Environment:        opts.Environment,
		Tracing:            opts.Tracing,
		Verbose:            boolOr(opts.Verbose, true),
		LogRetentionInDays: opts.LogRetentionInDays,
		Prewarm:            boolOr(opts.Prewarm, false),
		PathHandler:        path.Join(folderName, "index.warmUp"),
	}
	if opts.Name != nil {
		cfg.Name = *opts.Name
	}
	if cfg.Events == nil {
		cfg.Events = []map[string]any{{"schedule": DefaultSchedule}}
	}
	if cfg.Environment == nil {
		cfg.Environment = map[string]string{}
	}
	if cfg.Tracing == nil {
		cfg.Tracing = svc.Provider.Tracing
	}

	cfg.Package = &resources.Package{
		Individually: true,
		Patterns:     []string{"!**", path.Join(folderName, "**")},
	}
	if opts.Package != nil {
		cfg.Package.Individually = boolOr(opts.Package.Individually, true)
		cfg.Package.Patterns = append(cfg.Package.Patterns, opts.Package.Patterns...)
	}
	return cfg
}

// vpcConfig maps `vpc: false` to an explicitly empty VPC config, which detaches the function.
func vpcConfig(v any) *resources.LambdaVpcConfig {
	switch vpc := v.(type) {
	case nil:
		return nil
	case bool:
		if vpc {
			return nil
		}
		return &resources.LambdaVpcConfig{SecurityGroupIds: []any{}, SubnetIds: []any{}}
	}
	var cfg resources.LambdaVpcConfig
	if err := decode(v, &cfg); err != nil {
		return nil
	}
	return &cfg
}

func warmerFunctions(svc *service.Service, warmerKey string, defaults functionOptions) ([]FunctionTarget, error) {
	var merr error
	targets := []FunctionTarget{}
	for _, fnKey := range svc.Functions.Keys() {
		raw, _ := svc.Functions.Get(fnKey)
		fn, ok := raw.(map[string]any)
		if !ok {
			// generated functions (eg other warmers) are never targets
			continue
		}

		opts := defaults
		if section, ok := functionSection(fn, warmerKey); ok {
			var override functionOptions
			if err := decode(section, &override); err != nil {
				merr = multierr.Append(merr, errors.Wrapf(err, "invalid warmup config for function %s (warmer %s)", fnKey, warmerKey))
				continue
			}
			opts = mergeFunctionOptions(defaults, override)
		}
		if !isEnabled(opts.Enabled, svc.Provider.Stage) {
			continue
		}

		cfg, err := functionConfig(opts)
		if err != nil {
			merr = multierr.Append(merr, errors.Wrapf(err, "invalid warmup config for function %s (warmer %s)", fnKey, warmerKey))
			continue
		}
		targets = append(targets, FunctionTarget{
			Name:   FunctionName(svc, fnKey, fn),
			Config: cfg,
		})
	}
	return targets, merr
}

// FunctionName is the deployed name of the function declared under key.
func FunctionName(svc *service.Service, key string, fn map[string]any) string {
	if name, ok := fn["name"].(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("%s-%s-%s", svc.Name, svc.Provider.Stage, key)
}

func functionSection(fn map[string]any, warmerKey string) (any, bool) {
	warmup, ok := fn["warmup"].(map[string]any)
	if !ok {
		return nil, false
	}
	section, ok := warmup[warmerKey]
	return section, ok
}

func mergeFunctionOptions(base, override functionOptions) functionOptions {
	merged := base
	if override.Enabled != nil {
		merged.Enabled = override.Enabled
	}
	if override.Alias != nil {
		merged.Alias = override.Alias
	}
	if override.ClientContext != nil {
		merged.ClientContext = override.ClientContext
	}
	if override.Payload != nil {
		merged.Payload = override.Payload
	}
	if override.PayloadRaw != nil {
		merged.PayloadRaw = override.PayloadRaw
	}
	if override.Concurrency != nil {
		merged.Concurrency = override.Concurrency
	}
	return merged
}

// isEnabled accepts a bool, a single stage name, or a list of stage names.
func isEnabled(enabled any, stage string) bool {
	switch e := enabled.(type) {
	case bool:
		return e
	case string:
		return e == stage
	case []string:
		for _, s := range e {
			if s == stage {
				return true
			}
		}
	case []any:
		for _, s := range e {
			if s == stage {
				return true
			}
		}
	}
	return false
}

func functionConfig(opts functionOptions) (FunctionConfig, error) {
	cfg := FunctionConfig{
		Concurrency: intOr(opts.Concurrency, DefaultConcurrency),
		Alias:       opts.Alias,
	}

	switch cc := opts.ClientContext.(type) {
	case nil:
	case bool:
		if cc {
			return cfg, fmt.Errorf("clientContext must be an object, a string or false")
		}
		// false disables the client context even when a payload is set
		disabled := ""
		cfg.ClientContext = &disabled
	default:
		s, err := toJSON(cc)
		if err != nil {
			return cfg, errors.Wrap(err, "could not encode clientContext")
		}
		cfg.ClientContext = &s
	}

	payload := DefaultPayload
	if opts.Payload != nil {
		if s, ok := opts.Payload.(string); ok && boolOr(opts.PayloadRaw, false) {
			payload = s
		} else {
			s, err := toJSON(opts.Payload)
			if err != nil {
				return cfg, errors.Wrap(err, "could not encode payload")
			}
			payload = s
		}
	}
	cfg.Payload = &payload
	return cfg, nil
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// checkFunctionWarmers reports function-level sections that name a warmer which isn't declared.
func checkFunctionWarmers(svc *service.Service, warmers map[string]any) error {
	var merr error
	for _, fnKey := range svc.Functions.Keys() {
		raw, _ := svc.Functions.Get(fnKey)
		fn, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		warmup, ok := fn["warmup"].(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(warmup))
		for name := range warmup {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := warmers[name]; !ok {
				merr = multierr.Append(merr, fmt.Errorf("function %s references undeclared warmer %s", fnKey, name))
			}
		}
	}
	return merr
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
