package warmer

import (
	"fmt"
	"path/filepath"

	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/provider/aws/resources"
	"github.com/klothoplatform/warmup/pkg/service"
)

// AddFunction adds the warmer's function definition to the service functions.
func AddFunction(svc *service.Service, warmerName string, cfg *config.WarmerConfig) {
	fn := &resources.LambdaFunction{
		Description:        fmt.Sprintf(`Serverless WarmUp Plugin (warmer "%s")`, warmerName),
		Events:             cfg.Events,
		Handler:            filepath.ToSlash(cfg.PathHandler),
		MemorySize:         cfg.MemorySize,
		Name:               cfg.Name,
		Runtime:            resources.LAMBDA_RUNTIME,
		Package:            cfg.Package,
		Timeout:            cfg.Timeout,
		Tracing:            cfg.Tracing,
		LogRetentionInDays: cfg.LogRetentionInDays,
		RoleName:           cfg.RoleName,
		Role:               cfg.Role,
		Tags:               cfg.Tags,
		VpcConfig:          cfg.VPC,
		Architecture:       cfg.Architecture,
		Layers:             []string{},
	}
	if len(cfg.Environment) > 0 {
		fn.Environment = cfg.Environment
	}
	svc.Functions.Set(FunctionKey(warmerName), fn)
}
