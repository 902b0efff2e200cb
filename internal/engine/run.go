package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yarri-oss/gnnpipe/internal/stage"
	"github.com/yarri-oss/gnnpipe/internal/state"
	"github.com/yarri-oss/gnnpipe/internal/toolchain"
)

// StageResult is the outcome of one stage dispatch within a run.
type StageResult struct {
	Stage    string
	Tool     string
	Status   state.StageStatus
	ExitCode int
	Started  time.Time
	Duration time.Duration
	Err      error
}

// RunResult summarizes a pipeline run.
type RunResult struct {
	RunID  string
	Status state.RunStatus
	Stages []StageResult
}

// RunOptions selects which stages a pipeline run executes.
type RunOptions struct {
	// From skips every stage upstream of the named one.
	From string
	// Only restricts the run to exactly the named stage.
	Only string
	// Progress, when set, is called as each stage starts and finishes.
	Progress func(stage string, status state.StageStatus)
}

// RunStage checks preconditions and dispatches a single stage, recording it
// as a one-stage run.
func (e *Engine) RunStage(ctx context.Context, name string) (*RunResult, error) {
	s, err := stage.Get(name)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, []*stage.Stage{s}, nil)
}

// Run executes the pipeline stages (convert, sample, stats) in dependency
// order, fail-fast. Independent stages of one level run concurrently.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Only != "" {
		if opts.From != "" {
			return nil, fmt.Errorf("--from and --only are mutually exclusive")
		}
		s, err := stage.Get(opts.Only)
		if err != nil {
			return nil, err
		}
		return e.execute(ctx, []*stage.Stage{s}, opts.Progress)
	}

	selected, err := e.selectStages(opts.From)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, selected, opts.Progress)
}

// selectStages returns the pipeline stages in topological order, dropping
// everything upstream of from when it is set.
func (e *Engine) selectStages(from string) ([]*stage.Stage, error) {
	order, err := e.graph.Sorted()
	if err != nil {
		return nil, err
	}

	include := func(string) bool { return true }
	if from != "" {
		if _, err := stage.Get(from); err != nil {
			return nil, err
		}
		wanted := make(map[string]bool)
		for _, name := range e.graph.Downstream(from) {
			wanted[name] = true
		}
		include = func(name string) bool { return wanted[name] }
	}

	var selected []*stage.Stage
	for _, name := range order {
		s, err := stage.Get(name)
		if err != nil {
			return nil, err
		}
		if s.Pipeline && include(name) {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no pipeline stages selected")
	}
	return selected, nil
}

// execute dispatches the given stages level by level. The first failure
// aborts the run; remaining stages are recorded as skipped.
func (e *Engine) execute(ctx context.Context, stages []*stage.Stage, progress func(string, state.StageStatus)) (*RunResult, error) {
	byName := make(map[string]*stage.Stage, len(stages))
	for _, s := range stages {
		byName[s.Name] = s
	}

	levels, err := e.graph.Levels()
	if err != nil {
		return nil, err
	}

	result := &RunResult{Status: state.RunStatusCompleted}
	if e.store != nil {
		run, err := e.store.CreateRun(e.layout.Dataset)
		if err != nil {
			return nil, err
		}
		result.RunID = run.ID
	}

	var firstErr error
	for _, level := range levels {
		var pending []*stage.Stage
		for _, name := range level {
			if s, ok := byName[name]; ok {
				pending = append(pending, s)
			}
		}
		if len(pending) == 0 {
			continue
		}

		if firstErr != nil {
			for _, s := range pending {
				sr := StageResult{Stage: s.Name, Tool: s.Tool, Status: state.StageStatusSkipped, Started: time.Now().UTC()}
				result.Stages = append(result.Stages, sr)
				e.record(result.RunID, sr)
				if progress != nil {
					progress(s.Name, state.StageStatusSkipped)
				}
			}
			continue
		}

		results := make([]StageResult, len(pending))
		g, gctx := errgroup.WithContext(ctx)
		for i, s := range pending {
			g.Go(func() error {
				results[i] = e.dispatch(gctx, s, progress)
				return results[i].Err
			})
		}
		levelErr := g.Wait()

		for _, sr := range results {
			result.Stages = append(result.Stages, sr)
			e.record(result.RunID, sr)
		}
		if levelErr != nil && firstErr == nil {
			firstErr = levelErr
		}
	}

	if firstErr != nil {
		result.Status = state.RunStatusFailed
	}
	if e.store != nil {
		msg := ""
		if firstErr != nil {
			msg = firstErr.Error()
		}
		if err := e.store.CompleteRun(result.RunID, result.Status, msg); err != nil {
			e.logger.Warn("failed to record run completion", slog.String("error", err.Error()))
		}
	}
	return result, firstErr
}

// dispatch checks one stage's preconditions and runs its tool.
func (e *Engine) dispatch(ctx context.Context, s *stage.Stage, progress func(string, state.StageStatus)) StageResult {
	sr := StageResult{Stage: s.Name, Tool: s.Tool, Started: time.Now().UTC()}

	if err := s.Check(e.layout); err != nil {
		sr.Status = state.StageStatusFailed
		sr.Err = err
		if progress != nil {
			progress(s.Name, sr.Status)
		}
		return sr
	}

	e.logger.Info("running stage",
		slog.String("stage", s.Name),
		slog.String("tool", s.Tool),
		slog.String("dataset", e.layout.Dataset))

	err := e.runner.Run(ctx, s.Tool, s.Args(e.layout, e.params))
	sr.Duration = time.Since(sr.Started)

	if err != nil {
		sr.Status = state.StageStatusFailed
		sr.Err = err
		var exitErr *toolchain.ExitError
		if errors.As(err, &exitErr) {
			sr.ExitCode = exitErr.Code
		}
	} else {
		sr.Status = state.StageStatusSuccess
	}

	if progress != nil {
		progress(s.Name, sr.Status)
	}
	return sr
}

// record persists one stage outcome when a store is configured.
func (e *Engine) record(runID string, sr StageResult) {
	if e.store == nil || runID == "" {
		return
	}
	errMsg := ""
	if sr.Err != nil {
		errMsg = sr.Err.Error()
	}
	err := e.store.RecordStageRun(&state.StageRun{
		RunID:      runID,
		Stage:      sr.Stage,
		Tool:       sr.Tool,
		Status:     sr.Status,
		ExitCode:   sr.ExitCode,
		DurationMS: sr.Duration.Milliseconds(),
		Error:      errMsg,
		StartedAt:  sr.Started,
	})
	if err != nil {
		e.logger.Warn("failed to record stage run", slog.String("error", err.Error()))
	}
}
