package config

import (
	"github.com/klothoplatform/warmup/pkg/provider/aws/resources"
)

const (
	// DefaultPayload is sent to targets when no payload is configured.
	DefaultPayload     = `{"source":"serverless-plugin-warmup"}`
	DefaultConcurrency = 1
	DefaultMemorySize  = 128
	DefaultTimeout     = 10
	DefaultSchedule    = "rate(5 minutes)"
	// FolderRoot is where warmer handler folders are generated, relative to the service.
	FolderRoot = ".warmup"
)

type (
	// Warmer pairs a warmer group's name (its key under custom.warmup) with its resolved config.
	Warmer struct {
		Key    string
		Config *WarmerConfig
	}

	WarmerConfig struct {
		// Name is the physical name of the generated warmer function.
		Name        string
		FolderName  string
		CleanFolder bool
		// Role is a role logical id or ARN. When empty, a role is synthesized and its id stored here.
		Role               string
		RoleName           string
		Tags               map[string]string
		VPC                *resources.LambdaVpcConfig
		Events             []map[string]any
		Architecture       string
		Package            *resources.Package
		MemorySize         int
		Timeout            int
		Environment        map[string]string
		Tracing            *bool
		Verbose            bool
		LogRetentionInDays *int
		Prewarm            bool
		// PathHandler is the handler in host path form, eg `.warmup/default/index.warmUp`.
		PathHandler string
		Functions   []FunctionTarget
	}

	// FunctionTarget is a function to warm, as embedded in the generated handler.
	FunctionTarget struct {
		Name   string         `json:"name"`
		Config FunctionConfig `json:"config"`
	}

	// FunctionConfig holds per-target invocation settings. Nil pointers are left out of the
	// generated handler so they read as undefined there.
	FunctionConfig struct {
		Concurrency   int     `json:"concurrency"`
		ClientContext *string `json:"clientContext,omitempty"`
		Payload       *string `json:"payload,omitempty"`
		Alias         *string `json:"alias,omitempty"`
	}
)

// TracingEnabled reports whether the warmer should instrument its client.
func (c *WarmerConfig) TracingEnabled() bool {
	return c.Tracing != nil && *c.Tracing
}
