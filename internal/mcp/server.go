// Package mcp exposes the sweep driver to MCP clients over stdio:
// agents can launch sweeps, browse run history, and sanity-check
// instance files without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"
	"os"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"optsweep/internal/config"
	"optsweep/internal/routing"
	"optsweep/internal/solver"
	"optsweep/internal/store"
	"optsweep/internal/sweep"
)

// Server wraps the MCP SDK server around the sweep driver.
type Server struct {
	MCPServer *sdkmcp.Server
	DBPath    string

	// runMu serializes run_sweep calls: sweeps share the output root
	// and the history database.
	runMu sync.Mutex
}

// NewServer creates an MCP server with sweep tools. dbPath locates the
// run-history database (empty = default).
func NewServer(dbPath string) *Server {
	if dbPath == "" {
		dbPath = store.DefaultDBPath
	}
	s := &Server{DBPath: dbPath}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "optsweep", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_sweep",
		Description: "Run a parameter sweep from a config file. Blocks until every solver job has finished and returns the run id with job totals.",
	}, s.handleRunSweep)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recorded sweep runs, most recent first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Get one run's per-job results by its 3-digit run id.",
	}, s.handleGetRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_instance",
		Description: "Parse a problem instance file and report its shape without running anything.",
	}, s.handleValidateInstance)
}

// --- Tool input/output types ---

type runSweepInput struct {
	ConfigPath string `json:"config_path" jsonschema:"path to the sweep config (YAML or JSON)"`
}

type runSweepOutput struct {
	RunID  string `json:"run_id"`
	Dir    string `json:"dir"`
	Jobs   int    `json:"jobs"`
	Failed int    `json:"failed"`
}

type listRunsInput struct{}

type runInfo struct {
	RunID      string `json:"run_id"`
	Dir        string `json:"dir"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Jobs       int    `json:"jobs"`
	Failed     int    `json:"failed"`
}

type listRunsOutput struct {
	Runs []runInfo `json:"runs"`
}

type getRunInput struct {
	RunID string `json:"run_id" jsonschema:"3-digit run id, e.g. 007"`
}

type jobInfo struct {
	Instance   string `json:"instance"`
	Selector   string `json:"selector"`
	Family     string `json:"family"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type getRunOutput struct {
	Run  runInfo   `json:"run"`
	Jobs []jobInfo `json:"jobs"`
}

type validateInstanceInput struct {
	Path string `json:"path" jsonschema:"path to a problem instance file"`
}

type validateInstanceOutput struct {
	Containers int    `json:"containers"`
	LowerBound int    `json:"lower_bound"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleRunSweep(ctx context.Context, _ *sdkmcp.CallToolRequest, input runSweepInput) (*sdkmcp.CallToolResult, runSweepOutput, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	cfg, err := config.LoadFromPath(input.ConfigPath)
	if err != nil {
		return nil, runSweepOutput{}, err
	}

	dbPath := s.DBPath
	if cfg.Store != "" {
		dbPath = cfg.Store
	}
	hist, err := store.Open(dbPath)
	if err != nil {
		return nil, runSweepOutput{}, err
	}
	defer hist.Close()

	runner := &sweep.Runner{
		Config:     cfg,
		Invoker:    solver.NewExecInvoker(cfg.Solver),
		History:    hist,
		ConfigPath: input.ConfigPath,
	}
	sum, err := runner.Run(ctx)
	if err != nil {
		return nil, runSweepOutput{}, fmt.Errorf("run sweep: %w", err)
	}
	return nil, runSweepOutput{
		RunID:  sum.RunID,
		Dir:    sum.Dir,
		Jobs:   len(sum.Jobs),
		Failed: sum.Failed(),
	}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, _ listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	hist, err := store.Open(s.DBPath)
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	defer hist.Close()

	runs, err := hist.ListRuns()
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	out := listRunsOutput{Runs: make([]runInfo, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, toRunInfo(r))
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	hist, err := store.Open(s.DBPath)
	if err != nil {
		return nil, getRunOutput{}, err
	}
	defer hist.Close()

	run, err := hist.GetRunByOrdinal(input.RunID)
	if err != nil {
		return nil, getRunOutput{}, err
	}
	if run == nil {
		return nil, getRunOutput{}, fmt.Errorf("no recorded run %q", input.RunID)
	}
	jobs, err := hist.ListJobsByRun(run.ID)
	if err != nil {
		return nil, getRunOutput{}, err
	}

	out := getRunOutput{Run: toRunInfo(run), Jobs: make([]jobInfo, 0, len(jobs))}
	for _, j := range jobs {
		out.Jobs = append(out.Jobs, jobInfo{
			Instance: j.Instance, Selector: j.Selector, Family: j.Family,
			ExitCode: j.ExitCode, DurationMS: j.DurationMS,
			Status: j.Status, Error: j.Error,
		})
	}
	return nil, out, nil
}

func (s *Server) handleValidateInstance(_ context.Context, _ *sdkmcp.CallToolRequest, input validateInstanceInput) (*sdkmcp.CallToolResult, validateInstanceOutput, error) {
	f, err := os.Open(input.Path)
	if err != nil {
		return nil, validateInstanceOutput{}, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	p, err := routing.ParseProblem(f)
	if err != nil {
		// A malformed instance is a result, not a tool failure.
		return nil, validateInstanceOutput{Valid: false, Error: err.Error()}, nil
	}
	lb, _ := p.EmptySolution().LowerBound()
	return nil, validateInstanceOutput{Containers: p.N, LowerBound: lb, Valid: true}, nil
}

func toRunInfo(r *store.Run) runInfo {
	return runInfo{
		RunID: r.RunID, Dir: r.Dir,
		StartedAt: r.StartedAt, FinishedAt: r.FinishedAt,
		Jobs: r.Jobs, Failed: r.Failed,
	}
}
