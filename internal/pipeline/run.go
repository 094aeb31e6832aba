package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentx-labs/extkit/internal/stage"
)

// StageError reports the stage that aborted a run.
type StageError struct {
	Stage stage.Name
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Report summarizes a run.
type Report struct {
	RunID     string
	Completed []stage.Name
	// Warnings holds the failures of best-effort stages.
	Warnings []*StageError
	Elapsed  time.Duration
}

// Run executes the plan's stages in order against env. Cancelling ctx
// stops the run before the next stage starts; a stage already running is
// allowed to finish.
func Run(ctx context.Context, env *stage.Env, plan Plan) (*Report, error) {
	report := &Report{RunID: newRunID()}
	start := time.Now()

	runEnv := *env
	if env.Logger != nil {
		runEnv.Logger = env.Logger.With("run", report.RunID)
	}
	logger := runEnv.Logger

	for _, s := range plan.Stages {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, &StageError{Stage: s.Name, Err: err}
		}

		if logger != nil {
			logger.Debug("stage started", "stage", s.Name)
		}
		err := s.Run(ctx, &runEnv)
		if err != nil {
			serr := &StageError{Stage: s.Name, Err: err}
			if !s.BestEffort {
				report.Elapsed = time.Since(start)
				return report, serr
			}
			if logger != nil {
				logger.Warn("best-effort stage failed, continuing", "stage", s.Name, "err", err)
			}
			report.Warnings = append(report.Warnings, serr)
			continue
		}
		report.Completed = append(report.Completed, s.Name)
	}

	report.Elapsed = time.Since(start)
	if logger != nil {
		logger.Info("Done.", "stages", len(report.Completed), "elapsed", report.Elapsed.Round(time.Millisecond))
	}
	return report, nil
}

// Execute resolves modes into a plan and runs it.
func Execute(ctx context.Context, env *stage.Env, modes ...Mode) (*Report, error) {
	plan, err := Resolve(modes...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, env, plan)
}

func newRunID() string {
	return uuid.NewString()[:8]
}
