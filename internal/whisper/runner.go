package whisper

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// RunResult captures one finished subprocess invocation.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns short-lived child processes. It exists so the probe and the
// transcriber can be exercised in tests without executing anything.
type Runner interface {
	// Run executes name with args and waits for it to finish. A non-zero
	// exit is not an error; it is reported through RunResult.ExitCode.
	// The returned error covers spawn failures and context cancellation.
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	// The process never started (not found, not executable, ...).
	return result, err
}
