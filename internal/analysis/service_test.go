package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/verte-zerg/scdash/internal/catalog"
	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/pathcheck"
	"github.com/verte-zerg/scdash/internal/runner"
	"github.com/verte-zerg/scdash/internal/store"
)

type countingRunner struct {
	calls  atomic.Int32
	out    string
	err    error
	block  chan struct{}
	inside chan struct{}
}

func (r *countingRunner) Run(ctx context.Context, _ []string) (runner.Output, error) {
	r.calls.Add(1)
	if r.inside != nil {
		r.inside <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	return runner.Output{Stdout: r.out}, r.err
}

type fixedValidator struct {
	res pathcheck.Validation
}

func (v fixedValidator) Validate(context.Context, string, bool) pathcheck.Validation {
	return v.res
}

func newService(t *testing.T, r runner.Runner, v pathcheck.Validator, mem *store.Memory) *Service {
	t.Helper()
	svc, err := New(Options{
		Runner:    r,
		Validator: v,
		Results:   mem,
		Runs:      mem,
		Catalog:   catalog.Default(),
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRunEmptyPathSkipsRunner(t *testing.T) {
	r := &countingRunner{}
	svc := newService(t, r, fixedValidator{res: pathcheck.Validation{Valid: true}}, store.NewMemory())
	_, err := svc.Run(context.Background(), model.DefaultSettings())
	if !errors.Is(err, ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
	if r.calls.Load() != 0 {
		t.Fatalf("runner must not be invoked")
	}
}

func TestRunInvalidPathSkipsRunner(t *testing.T) {
	r := &countingRunner{}
	svc := newService(t, r, fixedValidator{res: pathcheck.Validation{Error: "Path does not exist"}}, store.NewMemory())
	s := model.DefaultSettings()
	s.ReplayPath = "/missing"
	_, err := svc.Run(context.Background(), s)
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if r.calls.Load() != 0 {
		t.Fatalf("runner must not be invoked")
	}
}

func TestRunUnknownAnalyzer(t *testing.T) {
	r := &countingRunner{}
	svc := newService(t, r, fixedValidator{res: pathcheck.Validation{Valid: true}}, store.NewMemory())
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	s.SelectedAnalyzers = append(s.SelectedAnalyzers, "build-order")
	if _, err := svc.Run(context.Background(), s); err == nil {
		t.Fatalf("expected unknown analyzer error")
	}
	if r.calls.Load() != 0 {
		t.Fatalf("runner must not be invoked")
	}
}

func TestRunStoresLatest(t *testing.T) {
	mem := store.NewMemory()
	stub := runner.NewStubWithSource(nil, 0, 0, rand.NewSource(3))
	svc := newService(t, stub, pathcheck.NewSimulatedWithSource(0, rand.NewSource(3)), mem)

	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	s.PlayerName = "Foo"
	res, err := svc.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success || res.Output == "" || res.FileCount < 10 {
		t.Fatalf("unexpected result: %+v", res)
	}

	latest, err := store.LoadLatest(context.Background(), mem)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if latest.Output != res.Output || latest.Settings.PlayerName != "Foo" {
		t.Fatalf("unexpected cached result: %+v", latest)
	}
	rows := svc.Rows(res, s.OutputFormat)
	if len(rows) < 10 || rows[0].PlayerRace == nil {
		t.Fatalf("unexpected parsed rows: %+v", rows)
	}

	runs, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(runs) != 1 || !runs[0].Success || runs[0].ID == "" {
		t.Fatalf("unexpected history: %+v", runs)
	}
}

func TestRunFailureKeepsPreviousResult(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	prev := model.DefaultSettings()
	prev.ReplayPath = "/old"
	if err := store.SaveLatest(ctx, mem, "date\n2024-09-01", prev); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := &countingRunner{err: &runner.ExitError{Code: 2, Stderr: "bad replay"}}
	svc := newService(t, r, fixedValidator{res: pathcheck.Validation{Valid: true, FileCount: 4}}, mem)
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"
	res, err := svc.Run(ctx, s)
	if err == nil || res.Success || res.Error == "" {
		t.Fatalf("expected failure, got %+v %v", res, err)
	}
	latest, err := store.LoadLatest(ctx, mem)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if latest.Settings.ReplayPath != "/old" {
		t.Fatalf("failed run must not overwrite the cache")
	}
	runs, _ := svc.History(ctx, 0)
	if len(runs) != 1 || runs[0].Success || runs[0].Error == "" {
		t.Fatalf("expected failed run to be recorded: %+v", runs)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	r := &countingRunner{out: "date\n2024-09-01", block: make(chan struct{}), inside: make(chan struct{}, 1)}
	svc := newService(t, r, fixedValidator{res: pathcheck.Validation{Valid: true}}, store.NewMemory())
	s := model.DefaultSettings()
	s.ReplayPath = "/reps"

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), s)
		done <- err
	}()
	<-r.inside
	if !svc.Running() {
		t.Fatalf("expected service to report a running analysis")
	}
	if _, err := svc.Run(context.Background(), s); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	close(r.block)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("first run did not finish")
	}
	if svc.Running() {
		t.Fatalf("expected running flag to clear")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without runner")
	}
	if _, err := New(Options{Runner: &countingRunner{}}); err == nil {
		t.Fatalf("expected error without validator")
	}
	if _, err := New(Options{Runner: &countingRunner{}, Validator: pathcheck.Dir{}}); err == nil {
		t.Fatalf("expected error without store")
	}
}
