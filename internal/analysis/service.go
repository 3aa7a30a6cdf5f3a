// Package analysis runs the configure, execute, store workflow.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/scdash/internal/catalog"
	"github.com/verte-zerg/scdash/internal/command"
	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
	"github.com/verte-zerg/scdash/internal/pathcheck"
	"github.com/verte-zerg/scdash/internal/runner"
	"github.com/verte-zerg/scdash/internal/store"
)

var (
	// ErrPathRequired is returned when no replay directory is set.
	ErrPathRequired = errors.New("please select a replay directory first")
	// ErrInvalidPath wraps a failed path validation.
	ErrInvalidPath = errors.New("replay path is invalid")
	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("an analysis is already running")
)

// Options configures a Service. Runner, Validator and Results are required.
type Options struct {
	Runner    runner.Runner
	Validator pathcheck.Validator
	Results   store.ResultStore
	Runs      store.RunLog
	Catalog   *catalog.Catalog
	Logger    *slog.Logger
	Binary    string
	Now       func() time.Time
}

// Service runs analyses and caches the latest result.
type Service struct {
	runner    runner.Runner
	validator pathcheck.Validator
	results   store.ResultStore
	runs      store.RunLog
	catalog   *catalog.Catalog
	logger    *slog.Logger
	binary    string
	now       func() time.Time

	running atomic.Bool
}

// New constructs a Service.
func New(opts Options) (*Service, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if opts.Validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if opts.Results == nil {
		return nil, fmt.Errorf("result store is required")
	}
	s := &Service{
		runner:    opts.Runner,
		validator: opts.Validator,
		results:   opts.Results,
		runs:      opts.Runs,
		catalog:   opts.Catalog,
		logger:    opts.Logger,
		binary:    opts.Binary,
		now:       opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.binary == "" {
		s.binary = command.Binary
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Running reports whether a run is in flight.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Validate checks the replay directory of settings.
func (s *Service) Validate(ctx context.Context, settings model.Settings) pathcheck.Validation {
	return s.validator.Validate(ctx, settings.ReplayPath, settings.RecursiveSearch)
}

// Run validates settings, executes sctool and stores the output as the
// latest result. The runner is not invoked when validation fails.
func (s *Service) Run(ctx context.Context, settings model.Settings) (model.AnalysisResult, error) {
	if settings.ReplayPath == "" {
		return model.AnalysisResult{}, ErrPathRequired
	}
	if s.catalog != nil {
		if err := s.catalog.Validate(settings.SelectedAnalyzers); err != nil {
			return model.AnalysisResult{}, err
		}
	}
	if !s.running.CompareAndSwap(false, true) {
		return model.AnalysisResult{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	v := s.Validate(ctx, settings)
	if !v.Valid {
		return model.AnalysisResult{}, fmt.Errorf("%w: %s", ErrInvalidPath, v.Error)
	}

	args := command.Build(settings)
	cmdline := command.String(s.binary, args)
	startedAt := s.now()
	out, runErr := s.runner.Run(ctx, args)
	elapsed := s.now().Sub(startedAt)

	result := model.AnalysisResult{ExecutionTime: elapsed, FileCount: v.FileCount}
	if runErr == nil {
		result.Success = true
		result.Output = out.Stdout
	} else {
		result.Error = runErr.Error()
	}

	s.record(ctx, model.RunRecord{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		DurationMs: elapsed.Milliseconds(),
		Success:    result.Success,
		Error:      result.Error,
		FileCount:  result.FileCount,
		Command:    cmdline,
	})

	if runErr != nil {
		s.logger.Error("analysis failed", "cmd", cmdline, "error", runErr)
		return result, fmt.Errorf("analysis failed: %w", runErr)
	}
	if err := store.SaveLatest(ctx, s.results, result.Output, settings); err != nil {
		return result, fmt.Errorf("failed to store analysis result: %w", err)
	}
	s.logger.Info("analysis completed", "files", result.FileCount, "elapsed", elapsed)
	return result, nil
}

// Rows parses the output of result in the format it was requested in.
func (s *Service) Rows(result model.AnalysisResult, format model.OutputFormat) []model.ReplayData {
	return parse.Rows(s.logger, format, result.Output)
}

// History lists recorded runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

func (s *Service) record(ctx context.Context, rec model.RunRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.RecordRun(ctx, rec); err != nil {
		s.logger.Warn("failed to record run", "error", err)
	}
}
