package invoke

//go:generate mockgen -source=./client.go --destination=./client_mock.go --package=invoke

import (
	"context"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/pkg/errors"
)

// ConnectTimeout bounds connection establishment to the Lambda endpoint. It is the only
// timeout applied to warm-up invocations besides the function's own.
const ConnectTimeout = time.Second

type (
	// InvokeAPI is the subset of the Lambda client used to warm functions.
	InvokeAPI interface {
		Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
	}

	ClientOptions struct {
		// Region overrides the region from the default credential chain when set.
		Region string
		// Tracing instruments the client with X-Ray.
		Tracing bool
	}
)

// NewClient builds a Lambda client from the default AWS configuration.
func NewClient(ctx context.Context, opts ClientOptions) (*lambda.Client, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return lambda.NewFromConfig(cfg), nil
}

func LoadConfig(ctx context.Context, opts ClientOptions) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(httpClient()),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "could not load AWS configuration")
	}
	if opts.Tracing {
		awsv2.AWSV2Instrumentor(&cfg.APIOptions)
	}
	return cfg, nil
}

func httpClient() *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().WithDialerOptions(func(d *net.Dialer) {
		d.Timeout = ConnectTimeout
	})
}
