package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/internal/config"
	"github.com/jakechorley/lab-matching/pkg/core/matching"
	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// ProblemLoader reads a problem from a path
type ProblemLoader interface {
	LoadProblem(path string) (*model.Problem, error)
}

// SolveStore defines the file operations needed for solving a problem
type SolveStore interface {
	ProblemLoader
	SaveAssignment(dir, method, inputPath string, assignment model.Assignment) (string, error)
}

// SolveResult contains the outcome of one solver run
type SolveResult struct {
	RunID      string
	Method     matching.Method
	Problem    *model.Problem
	Assignment model.Assignment
	Score      float64
	Success    bool
	Violations []matching.Violation
	OutputPath string // empty for dry runs
}

// SolveProblem loads the problem at inputPath, solves it with method and writes the
// assignment into outputDir. If dryRun is true nothing is written.
func SolveProblem(
	ctx context.Context,
	store SolveStore,
	cfg *config.Config,
	logger *zap.Logger,
	inputPath string,
	outputDir string,
	method matching.Method,
	dryRun bool,
) (*SolveResult, error) {
	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	logger.Debug("Starting solve",
		zap.String("input", inputPath),
		zap.String("method", string(method)),
		zap.Bool("dry_run", dryRun))

	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown method '%s'", matching.ErrConfiguration, method)
	}

	p, err := loadValidProblem(store, logger, inputPath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("solve cancelled: %w", err)
	}

	logger.Debug("Running solver")
	result, err := matching.Solve(p, method, cfg.MatchingOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to solve with %s: %w", method, err)
	}

	violations := matching.ValidateAssignment(p, result.Assignment)
	if len(violations) > 0 {
		logger.Warn("Assignment has violations", zap.Int("count", len(violations)))
	}

	out := &SolveResult{
		RunID:      runID,
		Method:     method,
		Problem:    p,
		Assignment: result.Assignment,
		Score:      result.Score,
		Success:    len(violations) == 0,
		Violations: violations,
	}

	logger.Info("Solved",
		zap.String("method", string(method)),
		zap.Float64("score", result.Score),
		zap.Int("unassigned", len(result.Assignment.Unassigned())))

	if dryRun {
		logger.Info("Dry run, assignment not saved")
		return out, nil
	}

	out.OutputPath, err = store.SaveAssignment(outputDir, string(method), inputPath, result.Assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}
	logger.Info("Assignment saved", zap.String("path", out.OutputPath))

	return out, nil
}

// loadValidProblem loads the problem and runs boundary validation
func loadValidProblem(store ProblemLoader, logger *zap.Logger, inputPath string) (*model.Problem, error) {
	logger.Debug("Loading problem", zap.String("path", inputPath))
	p, err := store.LoadProblem(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load problem: %w", err)
	}
	logger.Debug("Loaded problem",
		zap.Int("students", len(p.Students)),
		zap.Int("teachers", len(p.Teachers)),
		zap.Int("seats", p.TotalCapacity()))

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem %s: %w", inputPath, err)
	}
	return p, nil
}
