package warmer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInstaller struct {
	calls  []string
	failOn string
}

func (r *recordingInstaller) InitManifest(ctx context.Context, dir string) error {
	return r.record("init", dir)
}

func (r *recordingInstaller) Install(ctx context.Context, dir string, pkgs ...string) error {
	return r.record("install "+strings.Join(pkgs, " "), dir)
}

func (r *recordingInstaller) record(call, dir string) error {
	r.calls = append(r.calls, call+" @ "+filepath.Base(dir))
	if strings.HasPrefix(call, r.failOn) && r.failOn != "" {
		return errors.New(call + " failed")
	}
	return nil
}

func Test_RenderArtifact(t *testing.T) {
	tests := []struct {
		name        string
		functions   []config.FunctionTarget
		opts        ArtifactOptions
		contains    []string
		notContains []string
	}{
		{
			name:      "plain verbose",
			functions: targets("foo"),
			opts:      ArtifactOptions{Verbose: true, Region: "us-east-1"},
			contains: []string{
				"import { LambdaClient, InvokeCommand } from '@aws-sdk/client-lambda';\n" +
					"import { NodeHttpHandler } from '@smithy/node-http-handler';\n\n",
				`  region: "us-east-1",`,
				"requestHandler: new NodeHttpHandler({ connectionTimeout: 1000 }),",
				"const lambdaClient = uninstrumentedLambdaClient;\n",
				"const functions = [\n" +
					"  {\n" +
					"    \"name\": \"foo\",\n" +
					"    \"config\": {\n" +
					"      \"concurrency\": 1,\n" +
					"      \"payload\": \"{\\\"source\\\":\\\"serverless-plugin-warmup\\\"}\"\n" +
					"    }\n" +
					"  }\n" +
					"];\n",
				"function logVerbose(str) {\n  console.log(str);\n}\n",
				"envVars[`WARMUP_CONCURRENCY_${func.name.toUpperCase().replace(/-/g, '_')}`]",
				"envVars.WARMUP_CONCURRENCY",
				"parseInt(func.config.concurrency)",
				"func.config.clientContext !== undefined",
				"Buffer.from(`{\"custom\":${clientContext}}`).toString('base64')",
				"InvocationType: 'RequestResponse',",
				"LogType: 'None',",
				"Qualifier: func.config.alias || process.env.SERVERLESS_ALIAS,",
				"Payload: func.config.payload,",
				"Array.from({ length: concurrency }, () => lambdaClient.send(new InvokeCommand(params)))",
				"console.error(`Warm Up Invoke Error: ${func.name}`, e);",
				"Warm Up Finished with ${invokes.filter((r) => !r).length} invoke errors",
				"export const warmUp = async (event, context) => {",
			},
			notContains: []string{"AWSXRay", "<no value>"},
		},
		{
			name:      "tracing quiet",
			functions: targets("foo"),
			opts:      ArtifactOptions{Tracing: true, Region: "eu-west-1"},
			contains: []string{
				"import { NodeHttpHandler } from '@smithy/node-http-handler';\nimport AWSXRay from 'aws-xray-sdk-core';\n\n",
				"});\nconst lambdaClient = AWSXRay.captureAWSv3Client(uninstrumentedLambdaClient);\n\n",
				`  region: "eu-west-1",`,
				"function logVerbose(str) {\n}\n",
			},
			notContains: []string{"console.log", "const lambdaClient = uninstrumentedLambdaClient"},
		},
		{
			name:     "no functions",
			opts:     ArtifactOptions{Region: "us-east-1"},
			contains: []string{"const functions = [];\n"},
		},
		{
			name: "optional config",
			functions: []config.FunctionTarget{{
				Name: "svc-dev-a",
				Config: config.FunctionConfig{
					Concurrency:   3,
					ClientContext: ptr(""),
					Payload:       ptr("raw <payload>"),
					Alias:         ptr("live"),
				},
			}},
			opts: ArtifactOptions{Region: "us-east-1"},
			contains: []string{
				`"concurrency": 3,`,
				`"clientContext": "",`,
				`"payload": "raw <payload>",`,
				`"alias": "live"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderArtifact(tt.functions, tt.opts)
			require.NoError(t, err)
			text := string(got)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, text, unwanted)
			}

			again, err := RenderArtifact(tt.functions, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, got, again, "rendering must be deterministic")
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func Test_CreateArtifact(t *testing.T) {
	tests := []struct {
		name      string
		tracing   bool
		failOn    string
		blockDir  bool
		wantErr   string
		wantCalls []string
		wantFile  bool
	}{
		{
			name:     "without tracing",
			wantFile: true,
		},
		{
			name:      "with tracing",
			tracing:   true,
			wantFile:  true,
			wantCalls: []string{"init @ default", "install aws-xray-sdk-core @ default"},
		},
		{
			name:      "init failure stops install",
			tracing:   true,
			failOn:    "init",
			wantErr:   "init failed",
			wantFile:  true,
			wantCalls: []string{"init @ default"},
		},
		{
			name:      "install failure",
			tracing:   true,
			failOn:    "install",
			wantErr:   "install aws-xray-sdk-core failed",
			wantFile:  true,
			wantCalls: []string{"init @ default", "install aws-xray-sdk-core @ default"},
		},
		{
			name:     "write failure",
			tracing:  true,
			blockDir: true,
			wantErr:  "could not create directory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			folder := filepath.Join(root, ".warmup", "default")
			if tt.blockDir {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".warmup"), []byte("x"), 0644))
			}

			installer := &recordingInstaller{failOn: tt.failOn}
			s := ArtifactSynthesizer{Installer: installer}
			err := s.CreateArtifact(context.Background(), targets("foo"), ArtifactOptions{Tracing: tt.tracing, Region: "us-east-1"}, folder)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, installer.calls)

			content, readErr := os.ReadFile(filepath.Join(folder, HandlerFile))
			if !tt.wantFile {
				assert.Error(t, readErr)
				return
			}
			require.NoError(t, readErr)
			want, err := RenderArtifact(targets("foo"), ArtifactOptions{Tracing: tt.tracing, Region: "us-east-1"})
			require.NoError(t, err)
			assert.Equal(t, string(want), string(content))
		})
	}
}

func Test_CreateArtifactOverwrites(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, HandlerFile), []byte(strings.Repeat("stale ", 10000)), 0644))

	s := ArtifactSynthesizer{}
	require.NoError(t, s.CreateArtifact(context.Background(), nil, ArtifactOptions{Region: "us-east-1"}, folder))

	content, err := os.ReadFile(filepath.Join(folder, HandlerFile))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale")
	assert.Contains(t, string(content), "const functions = [];")
}

func Test_CreateArtifactTracingWithoutInstaller(t *testing.T) {
	s := ArtifactSynthesizer{}
	err := s.CreateArtifact(context.Background(), nil, ArtifactOptions{Tracing: true}, t.TempDir())
	assert.Error(t, err)
}
