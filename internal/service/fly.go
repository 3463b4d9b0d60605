package service

import "context"

// PipelineOptions describes a single fly set-pipeline invocation.
type PipelineOptions struct {
	// Target is the fly target name for the Concourse foundation.
	Target string
	// Pipeline is the pipeline name to create or update.
	Pipeline string
	// ConfigPath is the pipeline config file.
	ConfigPath string
	// VarsFiles are passed with -l, in order.
	VarsFiles []string
	// Vars are passed with -v as key=value pairs.
	Vars map[string]string
	// NonInteractive skips the fly confirmation prompt.
	NonInteractive bool
}

// FlyService drives the Concourse fly CLI.
type FlyService interface {
	// SetReleasePipeline applies the pipeline config in a single
	// set-pipeline call.
	SetReleasePipeline(ctx context.Context, opts PipelineOptions) error
}
