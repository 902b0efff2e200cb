// Package toolchain locates and runs the external sampling tools. The tools
// own all substantive behavior; this package only dispatches them and maps
// their outcomes onto typed errors the CLI can act on.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExitError reports a tool that ran and exited non-zero. The code is
// propagated unchanged to the gnnpipe process exit status.
type ExitError struct {
	Tool string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

// ExitCode extracts the tool exit code when err wraps an ExitError.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// Runner dispatches toolchain binaries.
type Runner struct {
	// Prefix is the toolchain installation prefix; binaries are expected
	// under its bin/ directory. Empty means resolve on PATH.
	Prefix string
	// Stdout and Stderr receive the tool's output streams.
	Stdout io.Writer
	Stderr io.Writer

	logger *slog.Logger
}

// New creates a runner writing tool output to the given streams.
func New(prefix string, stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		Prefix: prefix,
		Stdout: stdout,
		Stderr: stderr,
		logger: logger,
	}
}

// Resolve returns the absolute path of a tool binary. With a prefix set, the
// binary must live under <prefix>/bin; otherwise PATH decides.
func (r *Runner) Resolve(tool string) (string, error) {
	if r.Prefix != "" {
		candidate := filepath.Join(r.Prefix, "bin", tool)
		info, err := os.Stat(candidate)
		if err != nil {
			return "", fmt.Errorf("tool %s not found under %s: %w", tool, filepath.Join(r.Prefix, "bin"), err)
		}
		if info.IsDir() || info.Mode()&0111 == 0 {
			return "", fmt.Errorf("tool %s is not executable: %s", tool, candidate)
		}
		return candidate, nil
	}

	path, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("tool %s not found on PATH: %w", tool, err)
	}
	return path, nil
}

// Run resolves and executes a tool to completion, streaming its output.
// A non-zero exit surfaces as *ExitError; every other failure (binary
// missing, context cancelled) keeps its own error type.
func (r *Runner) Run(ctx context.Context, tool string, args []string) error {
	path, err := r.Resolve(tool)
	if err != nil {
		return err
	}

	r.logger.Debug("dispatching tool",
		slog.String("tool", tool),
		slog.String("path", path),
		slog.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s interrupted: %w", tool, ctxErr)
			}
			r.logger.Debug("tool failed",
				slog.String("tool", tool),
				slog.Int("code", exitErr.ExitCode()),
				slog.Duration("elapsed", elapsed))
			return &ExitError{Tool: tool, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}

	r.logger.Debug("tool completed",
		slog.String("tool", tool),
		slog.Duration("elapsed", elapsed))
	return nil
}

// CommandLine renders the full invocation for plan and dry-run output.
func CommandLine(tool string, args []string) string {
	return tool + " " + strings.Join(args, " ")
}
