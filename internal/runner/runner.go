// Package runner executes sctool, or a stand-in that fabricates its output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/verte-zerg/scdash/internal/command"
)

// Output is what a run produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes sctool with the given arguments.
type Runner interface {
	Run(ctx context.Context, args []string) (Output, error)
}

// ExitError reports a non-zero exit of the external tool.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("sctool exited with status %d", e.Code)
	}
	return fmt.Sprintf("sctool exited with status %d: %s", e.Code, msg)
}

// Exec runs the real sctool binary.
type Exec struct {
	Binary string
	Logger *slog.Logger
}

// Run implements Runner. Quoted path and player tokens are unquoted because
// no shell sits between us and the process.
func (e Exec) Run(ctx context.Context, args []string) (Output, error) {
	binary := e.Binary
	if binary == "" {
		binary = command.Binary
	}
	argv := make([]string, len(args))
	for i, a := range args {
		argv[i] = command.Unquote(a)
	}
	if e.Logger != nil {
		e.Logger.Debug("executing sctool", "cmd", command.String(binary, args))
	}

	cmd := exec.CommandContext(ctx, binary, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, &ExitError{Code: out.ExitCode, Stderr: out.Stderr}
		}
		return out, fmt.Errorf("failed to run %s: %w", binary, err)
	}
	return out, nil
}
