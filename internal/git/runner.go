package git

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes external commands, allowing tests to inject stubs.
type Runner interface {
	Run(ctx context.Context, dir, bin string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, bin string, args ...string) ([]byte, []byte, error) {
	//nolint:gosec // G204: wrapper intentionally shells out to git
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
