package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"optsweep/internal/logging"
)

// Result is the observed outcome of one solver invocation. The exit
// status is recorded, never acted on: a failed job is the caller's
// bookkeeping problem, not a reason to stop.
type Result struct {
	ExitCode int
	Duration time.Duration
	Err      error // spawn failure, context cancellation, or non-zero exit
}

// Failed reports whether the invocation ended abnormally.
func (r Result) Failed() bool { return r.Err != nil || r.ExitCode != 0 }

// Invoker launches one solver process per Request and waits for it.
type Invoker interface {
	Invoke(ctx context.Context, req Request) Result
}

// ExecInvoker runs the real solver binary, redirecting its stdout
// wholesale into the request's output file.
type ExecInvoker struct {
	Bin string // solver binary path
	Log *slog.Logger
}

// NewExecInvoker returns an invoker for the given solver binary.
func NewExecInvoker(bin string) *ExecInvoker {
	return &ExecInvoker{Bin: bin, Log: logging.New("solver")}
}

// Invoke runs the solver synchronously. Stderr passes through so the
// operator sees solver diagnostics that bypass its log file.
func (e *ExecInvoker) Invoke(ctx context.Context, req Request) Result {
	args, err := req.Args()
	if err != nil {
		return Result{ExitCode: -1, Err: err}
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("create output file: %w", err)}
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, e.Bin, args...)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	if e.Log != nil {
		e.Log.Debug("invoking solver", "bin", e.Bin, "instance", req.Instance, "selector", req.Selector)
	}

	start := time.Now()
	err = cmd.Run()
	res := Result{Duration: time.Since(start)}

	switch {
	case err == nil:
		res.ExitCode = 0
	case ctx.Err() != nil:
		res.ExitCode = -1
		res.Err = fmt.Errorf("solver interrupted: %w", ctx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			res.Err = fmt.Errorf("solver exited with status %d", res.ExitCode)
		} else {
			res.ExitCode = -1
			res.Err = fmt.Errorf("start solver: %w", err)
		}
	}
	return res
}
