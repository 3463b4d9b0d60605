package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"
)

// flyService is the implementation of the FlyService interface.
type flyService struct {
	// timeout for command execution
	timeout time.Duration
}

// NewFlyService creates a new FlyService.
func NewFlyService() FlyService {
	return &flyService{
		timeout: DefaultFlyTimeout,
	}
}

var validName = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)

// sanitizeName validates fly target and pipeline names to prevent command
// injection.
func (s *flyService) sanitizeName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid %s: %s", kind, name)
	}
	if len(name) > 255 {
		return fmt.Errorf("%s too long: maximum 255 characters", kind)
	}
	return nil
}

// sanitizePath rejects paths that could smuggle extra fly flags.
func (s *flyService) sanitizePath(kind, path string) error {
	if path == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if strings.HasPrefix(path, "-") {
		return fmt.Errorf("invalid %s: %s", kind, path)
	}
	return nil
}

// buildSetPipelineArgs assembles the fly argument list. Vars are emitted in
// sorted key order so invocations are reproducible.
func (s *flyService) buildSetPipelineArgs(opts PipelineOptions) ([]string, error) {
	if err := s.sanitizeName("target", opts.Target); err != nil {
		return nil, err
	}
	if err := s.sanitizeName("pipeline", opts.Pipeline); err != nil {
		return nil, err
	}
	if err := s.sanitizePath("pipeline config", opts.ConfigPath); err != nil {
		return nil, err
	}
	args := []string{"-t", opts.Target, "set-pipeline", "-p", opts.Pipeline, "-c", opts.ConfigPath}
	for _, varsFile := range opts.VarsFiles {
		if err := s.sanitizePath("vars file", varsFile); err != nil {
			return nil, err
		}
		args = append(args, "-l", varsFile)
	}
	keys := make([]string, 0, len(opts.Vars))
	for k := range opts.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.sanitizeName("var name", k); err != nil {
			return nil, err
		}
		args = append(args, "-v", fmt.Sprintf("%s=%s", k, opts.Vars[k]))
	}
	if opts.NonInteractive {
		args = append(args, "-n")
	}
	return args, nil
}

// executeCommand runs a command with timeout and proper resource cleanup.
func (s *flyService) executeCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %v", s.timeout)
		}
		errMsg := stderr.String()
		if errMsg != "" {
			return nil, fmt.Errorf("command failed: %w (stderr: %s)", err, errMsg)
		}
		return nil, fmt.Errorf("command failed: %w", err)
	}

	return stdout.Bytes(), nil
}

// SetReleasePipeline applies the pipeline config on the target foundation.
func (s *flyService) SetReleasePipeline(ctx context.Context, opts PipelineOptions) error {
	args, err := s.buildSetPipelineArgs(opts)
	if err != nil {
		return err
	}
	if _, err := s.executeCommand(ctx, "fly", args...); err != nil {
		return fmt.Errorf("failed to execute fly set-pipeline: %w", err)
	}
	return nil
}
