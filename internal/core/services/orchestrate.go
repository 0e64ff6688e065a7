package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

// Outcome classifies how one user's run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// UserResult is one row of a run report.
type UserResult struct {
	Name    string
	RunID   string
	Outcome Outcome
	Reason  string // why the run skipped or failed
	Result  RunResult
}

// RunReport aggregates a whole multi-user run.
type RunReport struct {
	Week    domain.PeriodKey
	Results []UserResult
}

// AllFailed reports whether every configured user failed; a run with at
// least one success or skip is still a usable run.
func (r RunReport) AllFailed() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if res.Outcome != OutcomeFailed {
			return false
		}
	}
	return true
}

// EngineBuilder constructs the pipeline for one named user. The CLI binds
// per-user credentials and adapters in here, keeping the orchestrator free
// of configuration concerns.
type EngineBuilder func(ctx context.Context, user string) (*Engine, error)

// Orchestrator runs the pipeline for each configured user in turn. Users
// are fully isolated: one bad account, expired grant, or empty profile
// never stops the others.
type Orchestrator struct {
	build  EngineBuilder
	logger zerolog.Logger
}

// NewOrchestrator constructs an orchestrator.
func NewOrchestrator(build EngineBuilder, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{build: build, logger: logger}
}

// Run executes every user sequentially and never stops early. Each user
// gets a fresh run ID for log correlation and one report row.
func (o *Orchestrator) Run(ctx context.Context, users []string, target domain.PeriodKey) RunReport {
	report := RunReport{Week: target, Results: make([]UserResult, 0, len(users))}
	for _, name := range users {
		runID := uuid.NewString()
		logger := o.logger.With().Str("run_id", runID).Str("user", name).Logger()
		logger.Info().Str("week", target.String()).Msg("starting user run")

		res := UserResult{Name: name, RunID: runID}
		engine, err := o.build(ctx, name)
		if err != nil {
			logger.Error().Err(err).Msg("user setup failed")
			res.Outcome = OutcomeFailed
			res.Reason = err.Error()
			report.Results = append(report.Results, res)
			continue
		}

		result, err := engine.BuildAndPublish(ctx, target)
		switch {
		case errors.Is(err, ports.ErrInsufficientHistory):
			logger.Warn().Err(err).Msg("skipping user")
			res.Outcome = OutcomeSkipped
			res.Reason = err.Error()
		case err != nil:
			logger.Error().Err(err).Msg("user run failed")
			res.Outcome = OutcomeFailed
			res.Reason = err.Error()
		default:
			res.Outcome = OutcomeSuccess
			res.Result = result
		}
		report.Results = append(report.Results, res)
	}
	return report
}
