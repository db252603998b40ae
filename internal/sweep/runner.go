package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"optsweep/internal/config"
	"optsweep/internal/logging"
	"optsweep/internal/runid"
	"optsweep/internal/solver"
	"optsweep/internal/store"
)

// JobResult is the recorded outcome of one (instance, selector) job.
type JobResult struct {
	Instance   string        `json:"instance"`
	Name       string        `json:"name"`
	Selector   string        `json:"selector"`
	Family     solver.Family `json:"family"`
	ExitCode   int           `json:"exit_code"`
	DurationMS int64         `json:"duration_ms"`
	OutputPath string        `json:"output"`
	LogPath    string        `json:"log"`
	Error      string        `json:"error,omitempty"`
}

// Failed reports whether the job ended abnormally.
func (j JobResult) Failed() bool { return j.ExitCode != 0 || j.Error != "" }

// Summary aggregates one sweep invocation.
type Summary struct {
	RunID      string      `json:"run_id"`
	Dir        string      `json:"dir"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Jobs       []JobResult `json:"jobs"`
}

// Failed counts jobs that ended abnormally.
func (s *Summary) Failed() int {
	n := 0
	for _, j := range s.Jobs {
		if j.Failed() {
			n++
		}
	}
	return n
}

// SummaryFilename is the summary's name inside the run directory.
const SummaryFilename = "sweep.json"

// Runner executes a sweep plan. The zero value is not usable; fill
// Config and Invoker, History is optional.
type Runner struct {
	Config  *config.Sweep
	Invoker solver.Invoker
	History store.Store // nil = no run-history recording
	Log     *slog.Logger

	// ConfigPath is recorded in the history for provenance; may be empty.
	ConfigPath string
}

// Run reserves a run directory and executes every matrix item. A
// failing job is recorded and never stops the sweep; only environment
// errors (run-dir or job-dir creation) abort. Results arrive in plan
// order regardless of worker count.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := r.Log
	if log == nil {
		log = logging.New("sweep")
	}

	id, err := runid.DirAllocator{Root: r.Config.OutputRoot}.Reserve()
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(r.Config)
	log.Info("sweep starting", "run", id.String(), "jobs", len(plan), "workers", r.Config.Workers)

	sum := &Summary{
		RunID:     id.String(),
		Dir:       id.Dir,
		StartedAt: time.Now().UTC(),
		Jobs:      make([]JobResult, len(plan)),
	}

	var histID int64
	if r.History != nil {
		histID, err = r.History.CreateRun(&store.Run{
			RunID: id.String(), Dir: id.Dir, ConfigPath: r.ConfigPath,
		})
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	// Job directories are created up front, before any process starts,
	// so a crashed solver still leaves the expected layout behind.
	for _, item := range plan {
		if err := os.MkdirAll(filepath.Join(id.Dir, item.Name), 0755); err != nil {
			return nil, fmt.Errorf("create job dir: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Workers)
	for i, item := range plan {
		i, item := i, item
		g.Go(func() error {
			sum.Jobs[i] = r.runJob(gctx, id.Dir, item, log)
			return nil
		})
	}
	_ = g.Wait() // job failures live in the results, not in errors

	sum.FinishedAt = time.Now().UTC()

	if err := writeSummary(id.Dir, sum); err != nil {
		return nil, err
	}
	if r.History != nil {
		for i := range sum.Jobs {
			j := &sum.Jobs[i]
			status := "ok"
			if j.Failed() {
				status = "failed"
			}
			_, err := r.History.CreateJob(&store.Job{
				RunID: histID, Instance: j.Instance, Name: j.Name,
				Selector: j.Selector, Family: string(j.Family),
				ExitCode: j.ExitCode, DurationMS: j.DurationMS,
				OutputPath: j.OutputPath, LogPath: j.LogPath,
				Status: status, Error: j.Error,
			})
			if err != nil {
				return nil, fmt.Errorf("record job: %w", err)
			}
		}
		if err := r.History.FinishRun(histID, "", len(sum.Jobs), sum.Failed()); err != nil {
			return nil, fmt.Errorf("finish run: %w", err)
		}
	}

	log.Info("sweep finished", "run", sum.RunID, "jobs", len(sum.Jobs), "failed", sum.Failed())
	return sum, nil
}

func (r *Runner) runJob(ctx context.Context, runDir string, item Item, log *slog.Logger) JobResult {
	jobDir := filepath.Join(runDir, item.Name)
	res := JobResult{
		Instance:   item.Instance,
		Name:       item.Name,
		Selector:   item.Selector,
		Family:     item.Family,
		OutputPath: filepath.Join(jobDir, "output_"+item.Selector+".txt"),
		LogPath:    filepath.Join(jobDir, "log_"+item.Selector+".txt"),
	}

	budget := r.Config.ConstructiveBudget
	if item.Family == solver.Local {
		budget = r.Config.LocalBudget
	}

	jobCtx := ctx
	cancel := func() {}
	if r.Config.Timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, r.Config.Timeout.Std())
	}
	defer cancel()

	inv := r.Invoker.Invoke(jobCtx, solver.Request{
		Instance:   item.Instance,
		Selector:   item.Selector,
		Family:     item.Family,
		Budget:     budget,
		LogLevel:   r.Config.LogLevel,
		OutputPath: res.OutputPath,
		LogPath:    res.LogPath,
	})

	res.ExitCode = inv.ExitCode
	res.DurationMS = inv.Duration.Milliseconds()
	if inv.Err != nil {
		res.Error = inv.Err.Error()
		log.Warn("job failed", "instance", item.Name, "selector", item.Selector,
			"exit", inv.ExitCode, "error", inv.Err)
	} else {
		log.Debug("job done", "instance", item.Name, "selector", item.Selector,
			"duration_ms", res.DurationMS)
	}
	return res
}
