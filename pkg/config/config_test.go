package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/klothoplatform/warmup/pkg/provider/aws/resources"
	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readService(t *testing.T, doc string) *service.Service {
	t.Helper()
	svc, err := service.Read(strings.NewReader(dedent.Dedent(doc)))
	require.NoError(t, err)
	return svc
}

func ptr[T any](v T) *T {
	return &v
}

func Test_ResolveDefaults(t *testing.T) {
	assert := assert.New(t)
	svc := readService(t, `
		service: my-service
		provider:
		  name: aws
		  stage: prod
		  region: eu-west-1
		custom:
		  warmup:
		    default:
		      enabled: true
		functions:
		  hello:
		    handler: hello.handler
		  world:
		    name: custom-world
		    handler: world.handler
		`)

	warmers, err := Resolve(svc)
	require.NoError(t, err)
	require.Len(t, warmers, 1)

	w := warmers[0]
	assert.Equal("default", w.Key)
	assert.Equal(&WarmerConfig{
		Name:        "my-service-prod-warmup-plugin-default",
		FolderName:  ".warmup/default",
		CleanFolder: true,
		Events:      []map[string]any{{"schedule": "rate(5 minutes)"}},
		Package: &resources.Package{
			Individually: true,
			Patterns:     []string{"!**", ".warmup/default/**"},
		},
		MemorySize:  128,
		Timeout:     10,
		Environment: map[string]string{},
		Verbose:     true,
		PathHandler: ".warmup/default/index.warmUp",
		Functions: []FunctionTarget{
			{Name: "my-service-prod-hello", Config: FunctionConfig{Concurrency: 1, Payload: ptr(DefaultPayload)}},
			{Name: "custom-world", Config: FunctionConfig{Concurrency: 1, Payload: ptr(DefaultPayload)}},
		},
	}, w.Config)
}

func Test_ResolveWarmerOptions(t *testing.T) {
	assert := assert.New(t)
	svc := readService(t, `
		service:
		  name: svc
		provider:
		  name: aws
		  tracing:
		    lambda: Active
		custom:
		  warmup:
		    secondary:
		      enabled: true
		      folderName: build/warmers/secondary
		      cleanFolder: false
		      name: my-warmer
		      roleName: my-role-name
		      tags:
		        team: platform
		      vpc: false
		      events:
		        - schedule: cron(0/5 8-17 ? * MON-FRI *)
		      architecture: arm64
		      package:
		        individually: false
		        patterns:
		          - extra/**
		      memorySize: 256
		      timeout: 20
		      environment:
		        FOO: bar
		        NUM: 3
		      verbose: false
		      logRetentionInDays: 14
		      prewarm: true
		functions:
		  a:
		    handler: a.handler
		`)

	warmers, err := Resolve(svc)
	require.NoError(t, err)
	require.Len(t, warmers, 1)
	cfg := warmers[0].Config

	assert.Equal("my-warmer", cfg.Name)
	assert.Equal("build/warmers/secondary", cfg.FolderName)
	assert.False(cfg.CleanFolder)
	assert.Equal("my-role-name", cfg.RoleName)
	assert.Empty(cfg.Role)
	assert.Equal(map[string]string{"team": "platform"}, cfg.Tags)
	assert.Equal(&resources.LambdaVpcConfig{SecurityGroupIds: []any{}, SubnetIds: []any{}}, cfg.VPC)
	assert.Equal([]map[string]any{{"schedule": "cron(0/5 8-17 ? * MON-FRI *)"}}, cfg.Events)
	assert.Equal("arm64", cfg.Architecture)
	assert.Equal(&resources.Package{
		Individually: false,
		Patterns:     []string{"!**", "build/warmers/secondary/**", "extra/**"},
	}, cfg.Package)
	assert.Equal(256, cfg.MemorySize)
	assert.Equal(20, cfg.Timeout)
	assert.Equal(map[string]string{"FOO": "bar", "NUM": "3"}, cfg.Environment)
	assert.True(cfg.TracingEnabled(), "tracing falls back to provider.tracing.lambda")
	assert.False(cfg.Verbose)
	assert.Equal(ptr(14), cfg.LogRetentionInDays)
	assert.True(cfg.Prewarm)
	assert.Equal("build/warmers/secondary/index.warmUp", cfg.PathHandler)
	assert.Equal([]FunctionTarget{
		{Name: "svc-dev-a", Config: FunctionConfig{Concurrency: 1, Payload: ptr(DefaultPayload)}},
	}, cfg.Functions)
}

func Test_ResolveFunctionOptions(t *testing.T) {
	svc := readService(t, `
		service: svc
		provider:
		  name: aws
		  stage: staging
		custom:
		  warmup:
		    default:
		      enabled: false
		      concurrency: 2
		      alias: live
		functions:
		  disabled:
		    handler: x.handler
		  bool:
		    handler: x.handler
		    warmup:
		      default:
		        enabled: true
		  stage:
		    handler: x.handler
		    warmup:
		      default:
		        enabled: staging
		        concurrency: 5
		  otherstage:
		    handler: x.handler
		    warmup:
		      default:
		        enabled: prod
		  stagelist:
		    handler: x.handler
		    warmup:
		      default:
		        enabled: [dev, staging]
		        clientContext:
		          source: ctx
		        payload:
		          hello: world
		  raw:
		    handler: x.handler
		    warmup:
		      default:
		        enabled: true
		        payload: "not json"
		        payloadRaw: true
		        clientContext: false
		`)

	warmers, err := Resolve(svc)
	require.NoError(t, err)
	require.Len(t, warmers, 1)

	assert.Equal(t, []FunctionTarget{
		{Name: "svc-staging-bool", Config: FunctionConfig{Concurrency: 2, Alias: ptr("live"), Payload: ptr(DefaultPayload)}},
		{Name: "svc-staging-stage", Config: FunctionConfig{Concurrency: 5, Alias: ptr("live"), Payload: ptr(DefaultPayload)}},
		{Name: "svc-staging-stagelist", Config: FunctionConfig{
			Concurrency:   2,
			Alias:         ptr("live"),
			ClientContext: ptr(`{"source":"ctx"}`),
			Payload:       ptr(`{"hello":"world"}`),
		}},
		{Name: "svc-staging-raw", Config: FunctionConfig{
			Concurrency:   2,
			Alias:         ptr("live"),
			ClientContext: ptr(""),
			Payload:       ptr("not json"),
		}},
	}, warmers[0].Config.Functions)
}

func Test_ResolveMultipleWarmersSorted(t *testing.T) {
	svc := readService(t, `
		service: svc
		custom:
		  warmup:
		    zeta:
		      enabled: true
		    alpha:
		      enabled: false
		functions:
		  a:
		    handler: a.handler
		    warmup:
		      alpha:
		        enabled: true
		`)

	warmers, err := Resolve(svc)
	require.NoError(t, err)
	require.Len(t, warmers, 2)
	assert.Equal(t, "alpha", warmers[0].Key)
	assert.Equal(t, "zeta", warmers[1].Key)
	assert.Len(t, warmers[0].Config.Functions, 1)
	assert.Len(t, warmers[1].Config.Functions, 1)
}

func Test_ResolveNoWarmers(t *testing.T) {
	svc := readService(t, `
		service: svc
		functions:
		  a:
		    handler: a.handler
		`)
	warmers, err := Resolve(svc)
	assert.NoError(t, err)
	assert.Empty(t, warmers)
}

func Test_ResolveNoEnabledFunctions(t *testing.T) {
	svc := readService(t, `
		service: svc
		custom:
		  warmup:
		    default: {}
		functions:
		  a:
		    handler: a.handler
		`)
	warmers, err := Resolve(svc)
	require.NoError(t, err)
	require.Len(t, warmers, 1)
	assert.NotNil(t, warmers[0].Config.Functions)
	assert.Empty(t, warmers[0].Config.Functions)
}

func Test_ResolveErrors(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		wantContains []string
	}{
		{
			name: "unknown warmer option",
			doc: `
				service: svc
				custom:
				  warmup:
				    default:
				      colour: blue
				`,
			wantContains: []string{"invalid warmup configuration"},
		},
		{
			name: "bad enabled type",
			doc: `
				service: svc
				custom:
				  warmup:
				    default:
				      enabled: 3
				`,
			wantContains: []string{"invalid warmup configuration"},
		},
		{
			name: "fractional concurrency",
			doc: `
				service: svc
				custom:
				  warmup:
				    default:
				      enabled: true
				      concurrency: 1.5
				`,
			wantContains: []string{"invalid warmup configuration"},
		},
		{
			name: "undeclared warmers",
			doc: `
				service: svc
				custom:
				  warmup:
				    default:
				      enabled: true
				functions:
				  a:
				    handler: a.handler
				    warmup:
				      missing:
				        enabled: true
				  b:
				    handler: b.handler
				    warmup:
				      other:
				        enabled: true
				`,
			wantContains: []string{
				"function a references undeclared warmer missing",
				"function b references undeclared warmer other",
			},
		},
		{
			name: "warmup not a mapping",
			doc: `
				service: svc
				custom:
				  warmup: true
				`,
			wantContains: []string{"custom.warmup must be a mapping"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := readService(t, tt.doc)
			_, err := Resolve(svc)
			if assert.Error(t, err) {
				for _, want := range tt.wantContains {
					assert.Contains(t, err.Error(), want)
				}
			}
		})
	}
}

func Test_isEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled any
		want    bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"matching stage", "dev", true},
		{"other stage", "prod", false},
		{"list with stage", []any{"prod", "dev"}, true},
		{"list without stage", []any{"prod"}, false},
		{"string list", []string{"dev"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEnabled(tt.enabled, "dev"))
		})
	}
}

func Test_jsonDocument(t *testing.T) {
	got, err := jsonDocument(map[string]any{
		"memorySize": 256,
		"timeout":    2.5,
		"tags":       map[string]any{"team": "platform"},
		"events":     []map[string]any{{"schedule": "rate(5 minutes)"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"memorySize": json.Number("256"),
		"timeout":    json.Number("2.5"),
		"tags":       map[string]any{"team": "platform"},
		"events":     []any{map[string]any{"schedule": "rate(5 minutes)"}},
	}, got)
}

func Test_ValidateAcceptsIntegers(t *testing.T) {
	svc := readService(t, `
		service: svc
		custom:
		  warmup:
		    default:
		      enabled: true
		      memorySize: 256
		      timeout: 20
		      concurrency: 3
		functions:
		  a:
		    handler: a.handler
		    warmup:
		      default:
		        concurrency: 5
		`)
	assert.NoError(t, Validate(svc))
}
