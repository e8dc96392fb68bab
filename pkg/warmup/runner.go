package warmup

import (
	"context"
	"encoding/base64"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/invoke"
	"github.com/klothoplatform/warmup/pkg/logging"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// Runner performs one warm-up round in process, with the same behaviour as the generated
	// handler.
	Runner struct {
		Client    invoke.InvokeAPI
		Functions []config.FunctionTarget
		// Verbose logs progress at info level instead of debug.
		Verbose bool
		// Getenv reads override variables, os.Getenv when nil.
		Getenv func(string) string
	}

	Result struct {
		// Warmed holds, for each function in order, whether all of its invocations succeeded.
		Warmed   []bool
		Failures int
	}
)

// WarmUp invokes every function concurrently and waits for all of them. A function failing
// never affects the others and is only reported through the result and the logs.
func (r *Runner) WarmUp(ctx context.Context) Result {
	log := logging.GetLogger(ctx).Named("warmup")
	r.logVerbose(log, "Warm Up Start")

	result := Result{Warmed: make([]bool, len(r.Functions))}
	failures := atomic.NewInt32(0)

	var wg sync.WaitGroup
	for i, fn := range r.Functions {
		wg.Add(1)
		go func(i int, fn config.FunctionTarget) {
			defer wg.Done()
			result.Warmed[i] = r.warmFunction(ctx, log.With(logging.FunctionField(fn.Name)), fn)
			if !result.Warmed[i] {
				failures.Inc()
			}
		}(i, fn)
	}
	wg.Wait()

	result.Failures = int(failures.Load())
	r.logVerbose(log, "Warm Up Finished", zap.Int("invoke_errors", result.Failures))
	return result
}

func (r *Runner) warmFunction(ctx context.Context, log *zap.Logger, fn config.FunctionTarget) bool {
	getenv := r.getenv()
	concurrency, source := Concurrency(fn, getenv)
	r.logVerbose(log, "Warming up function", zap.Int("concurrency", concurrency), zap.String("source", string(source)))

	input := InvokeInput(fn, getenv)
	var g errgroup.Group
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			_, err := r.Client.Invoke(ctx, input)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Warm Up Invoke Error", zap.Error(err))
		return false
	}
	r.logVerbose(log, "Warm Up Invoke Success")
	return true
}

// InvokeInput builds the request sent to fn. The client context defaults to the payload and is
// wrapped as {"custom": ...}; the qualifier falls back to SERVERLESS_ALIAS.
func InvokeInput(fn config.FunctionTarget, getenv func(string) string) *lambda.InvokeInput {
	input := &lambda.InvokeInput{
		FunctionName:   aws.String(fn.Name),
		InvocationType: types.InvocationTypeRequestResponse,
		LogType:        types.LogTypeNone,
	}

	clientContext := fn.Config.Payload
	if fn.Config.ClientContext != nil {
		clientContext = fn.Config.ClientContext
	}
	if clientContext != nil && *clientContext != "" {
		envelope := `{"custom":` + *clientContext + `}`
		input.ClientContext = aws.String(base64.StdEncoding.EncodeToString([]byte(envelope)))
	}

	qualifier := ""
	if fn.Config.Alias != nil {
		qualifier = *fn.Config.Alias
	}
	if qualifier == "" {
		qualifier = getenv(AliasEnv)
	}
	if qualifier != "" {
		input.Qualifier = aws.String(qualifier)
	}

	if fn.Config.Payload != nil {
		input.Payload = []byte(*fn.Config.Payload)
	}
	return input
}

func (r *Runner) getenv() func(string) string {
	if r.Getenv != nil {
		return r.Getenv
	}
	return os.Getenv
}

func (r *Runner) logVerbose(log *zap.Logger, msg string, fields ...zap.Field) {
	if r.Verbose {
		log.Info(msg, fields...)
	} else {
		log.Debug(msg, fields...)
	}
}
