package terraform

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"coverage-auditor/internal/core/ports"
)

// Runner executes the terraform binary inside the audited workspace.
// Kept as an interface so the state source can be exercised without a
// terraform installation.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout string, stderr string, err error)
}

type execRunner struct {
	binary     string
	workingDir string
	logger     ports.Logger
}

func NewRunner(binary, workingDir string, logger ports.Logger) Runner {
	if binary == "" {
		binary = "terraform"
	}
	if workingDir == "" {
		workingDir = "."
	}
	return &execRunner{
		binary:     binary,
		workingDir: workingDir,
		logger:     logger.WithFields(map[string]any{"component": "terraform_runner", "working_dir": workingDir}),
	}
}

func (r *execRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debugf(ctx, "Executing %s %s", r.binary, strings.Join(args, " "))
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		// Prefer the cancellation cause over the kill-induced exit error.
		err = ctx.Err()
	}
	return stdout.String(), stderr.String(), err
}
