package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"optsweep/internal/config"
	"optsweep/internal/solver"
	"optsweep/internal/store"
)

// fakeInvoker stands in for the external solver: it records every
// request and writes the output/log files the way the real program
// would.
type fakeInvoker struct {
	mu       sync.Mutex
	requests []solver.Request
	failOn   string // selector that exits non-zero
	dirCheck *testing.T
}

func (f *fakeInvoker) Invoke(_ context.Context, req solver.Request) solver.Result {
	if f.dirCheck != nil {
		if fi, err := os.Stat(filepath.Dir(req.OutputPath)); err != nil || !fi.IsDir() {
			f.dirCheck.Errorf("job dir missing before launch for %s/%s: %v",
				req.Instance, req.Selector, err)
		}
	}
	_ = os.WriteFile(req.OutputPath, []byte("1 0\n"), 0644)
	_ = os.WriteFile(req.LogPath, []byte("INFO;Objective: 42\n"), 0644)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if req.Selector == f.failOn {
		return solver.Result{ExitCode: 1, Duration: time.Millisecond,
			Err: fmt.Errorf("solver exited with status 1")}
	}
	return solver.Result{ExitCode: 0, Duration: time.Millisecond}
}

func testConfig(t *testing.T, mutate func(*config.Sweep)) *config.Sweep {
	t.Helper()
	cfg := &config.Sweep{
		Solver:       "./solver",
		OutputRoot:   filepath.Join(t.TempDir(), "out"),
		Instances:    []string{"a/sample.txt"},
		Constructive: []string{"beam", "greedy"},
	}
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

func TestRun_ProducesRunLayout(t *testing.T) {
	cfg := testConfig(t, nil)
	inv := &fakeInvoker{dirCheck: t}
	sum, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.RunID != "000" {
		t.Errorf("run id = %q, want 000", sum.RunID)
	}

	// Exactly 000/sample with the four job files, plus the summary.
	var found []string
	err = filepath.Walk(cfg.OutputRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			rel, _ := filepath.Rel(cfg.OutputRoot, path)
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(found)
	want := []string{
		"000/sample/log_beam.txt",
		"000/sample/log_greedy.txt",
		"000/sample/output_beam.txt",
		"000/sample/output_greedy.txt",
		"000/sweep.json",
	}
	if diff := cmp.Diff(want, found); diff != "" {
		t.Errorf("output tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CrossProductOnceVerbatim(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Instances = []string{"a/sample.txt", "b/other.txt"}
		c.Constructive = []string{"beam", "mmas"}
		c.Local = []string{"sa"}
	})
	inv := &fakeInvoker{}
	sum, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	type pair struct {
		inst, sel string
		fam       solver.Family
	}
	counts := make(map[pair]int)
	for _, req := range inv.requests {
		counts[pair{req.Instance, req.Selector, req.Family}]++
	}
	want := map[pair]int{
		{"a/sample.txt", "beam", solver.Constructive}: 1,
		{"a/sample.txt", "mmas", solver.Constructive}: 1,
		{"a/sample.txt", "sa", solver.Local}:          1,
		{"b/other.txt", "beam", solver.Constructive}:  1,
		{"b/other.txt", "mmas", solver.Constructive}:  1,
		{"b/other.txt", "sa", solver.Local}:           1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("invocation counts mismatch (-want +got):\n%s", diff)
	}

	// Summary rows stay in plan order even though execution may not.
	if sum.Jobs[0].Selector != "beam" || sum.Jobs[0].Name != "sample" {
		t.Errorf("jobs[0] = %+v, want sample/beam", sum.Jobs[0])
	}
	if sum.Jobs[2].Family != solver.Local {
		t.Errorf("jobs[2] should be the local job, got %+v", sum.Jobs[2])
	}
	if sum.Jobs[3].Name != "other" {
		t.Errorf("jobs[3] should start the second instance, got %+v", sum.Jobs[3])
	}
}

func TestRun_EmptyLocalListInvokesNothingLocal(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Instances = []string{"a/sample.txt", "b/other.txt", "c/third.txt"}
	})
	inv := &fakeInvoker{}
	if _, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, req := range inv.requests {
		if req.Family == solver.Local {
			t.Errorf("unexpected local-search invocation: %+v", req)
		}
	}
	if len(inv.requests) != 6 {
		t.Errorf("got %d invocations, want 6", len(inv.requests))
	}
}

// hangingInvoker wedges until its context is cancelled, which is what
// a stuck solver looks like to the driver.
type hangingInvoker struct {
	mu    sync.Mutex
	count int
}

func (h *hangingInvoker) Invoke(ctx context.Context, _ solver.Request) solver.Result {
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
	select {
	case <-ctx.Done():
		return solver.Result{ExitCode: -1, Duration: time.Millisecond,
			Err: fmt.Errorf("solver interrupted: %w", ctx.Err())}
	case <-time.After(30 * time.Second):
		return solver.Result{}
	}
}

func TestRun_TimeoutKillsHungJobs(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Timeout = config.Duration(20 * time.Millisecond)
	})
	inv := &hangingInvoker{}
	sum, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inv.count != 2 {
		t.Errorf("got %d invocations, want both jobs attempted despite hangs", inv.count)
	}
	if sum.Failed() != 2 {
		t.Errorf("Failed() = %d, want 2", sum.Failed())
	}
	for _, job := range sum.Jobs {
		if job.ExitCode != -1 || !strings.Contains(job.Error, "solver interrupted") {
			t.Errorf("job %s/%s: %+v, want the interruption recorded",
				job.Name, job.Selector, job)
		}
	}
}

func TestRun_FailureNeverStopsTheSweep(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Constructive = []string{"beam", "greedy", "mmas"}
	})
	inv := &fakeInvoker{failOn: "beam"}
	sum, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run must not fail on job errors: %v", err)
	}
	if len(inv.requests) != 3 {
		t.Errorf("got %d invocations, want all 3 despite the beam failure", len(inv.requests))
	}
	if sum.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", sum.Failed())
	}
	if !sum.Jobs[0].Failed() || sum.Jobs[0].ExitCode != 1 {
		t.Errorf("beam job should be recorded as failed: %+v", sum.Jobs[0])
	}
	if sum.Jobs[1].Failed() || sum.Jobs[2].Failed() {
		t.Error("greedy/mmas jobs should have succeeded")
	}
}

func TestRun_SequentialRunsGetSuccessiveIDs(t *testing.T) {
	cfg := testConfig(t, nil)
	for i, want := range []string{"000", "001", "002"} {
		sum, err := (&Runner{Config: cfg, Invoker: &fakeInvoker{}}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if sum.RunID != want {
			t.Errorf("run %d id = %q, want %q", i, sum.RunID, want)
		}
	}
}

func TestRun_SummaryRoundTrip(t *testing.T) {
	cfg := testConfig(t, nil)
	sum, err := (&Runner{Config: cfg, Invoker: &fakeInvoker{}}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	loaded, err := LoadSummary(sum.Dir)
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if diff := cmp.Diff(sum, loaded); diff != "" {
		t.Errorf("summary round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Constructive = []string{"beam", "greedy"}
	})
	hist, err := store.Open(filepath.Join(t.TempDir(), "hist.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer hist.Close()

	inv := &fakeInvoker{failOn: "greedy"}
	sum, err := (&Runner{Config: cfg, Invoker: inv, History: hist, ConfigPath: "sweep.yaml"}).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := hist.GetRunByOrdinal(sum.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRunByOrdinal: %+v, %v", run, err)
	}
	if run.Jobs != 2 || run.Failed != 1 || run.FinishedAt == "" {
		t.Errorf("run row: %+v", run)
	}
	jobs, err := hist.ListJobsByRun(run.ID)
	if err != nil || len(jobs) != 2 {
		t.Fatalf("ListJobsByRun: %d, %v", len(jobs), err)
	}
	if jobs[1].Status != "failed" || jobs[1].Selector != "greedy" {
		t.Errorf("greedy job row: %+v", jobs[1])
	}
}

func TestRun_ParallelWorkersCoverThePlan(t *testing.T) {
	cfg := testConfig(t, func(c *config.Sweep) {
		c.Instances = []string{"a.txt", "b.txt", "c.txt", "d.txt"}
		c.Constructive = []string{"beam", "greedy", "heuristic"}
		c.Workers = 4
	})
	inv := &fakeInvoker{}
	sum, err := (&Runner{Config: cfg, Invoker: inv}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(inv.requests) != 12 || len(sum.Jobs) != 12 {
		t.Errorf("got %d invocations / %d results, want 12/12", len(inv.requests), len(sum.Jobs))
	}
	if sum.Failed() != 0 {
		t.Errorf("Failed() = %d, want 0", sum.Failed())
	}
}

func TestInstanceName(t *testing.T) {
	cases := map[string]string{
		"a/sample.txt":      "sample",
		"sample.txt":        "sample",
		"deep/path/w1.txt":  "w1",
		"noext":             "noext",
		"weird.dat":         "weird.dat",
		"dir.txt/inner.txt": "inner",
	}
	for in, want := range cases {
		if got := InstanceName(in); got != want {
			t.Errorf("InstanceName(%q) = %q, want %q", in, got, want)
		}
	}
}
