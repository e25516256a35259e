package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/internal/config"
	"github.com/jakechorley/lab-matching/pkg/core/matching"
)

// MethodOutcome is one row of a comparison. Err is set when the method cannot
// handle the problem, e.g. HNG on a problem whose seats do not match the students.
type MethodOutcome struct {
	Method     matching.Method
	Score      float64
	Placed     int
	Unassigned int
	Violations int
	Optima     int // distinct optimal assignments, HNG only
	Err        error
}

// CompareResult contains every method's outcome on the same problem
type CompareResult struct {
	RunID    string
	Outcomes []MethodOutcome
}

// Best returns the successful outcome with the lowest score
func (r *CompareResult) Best() (MethodOutcome, bool) {
	var best MethodOutcome
	found := false
	for _, o := range r.Outcomes {
		if o.Err != nil {
			continue
		}
		if !found || o.Score < best.Score {
			best, found = o, true
		}
	}
	return best, found
}

// CompareMethods runs every solver on the problem at inputPath.
// A solver error is recorded in its outcome; only loading, validation and
// cancellation fail the whole comparison.
func CompareMethods(
	ctx context.Context,
	store ProblemLoader,
	cfg *config.Config,
	logger *zap.Logger,
	inputPath string,
) (*CompareResult, error) {
	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))
	logger.Debug("Starting compare", zap.String("input", inputPath))

	p, err := loadValidProblem(store, logger, inputPath)
	if err != nil {
		return nil, err
	}

	opts := cfg.MatchingOptions()
	result := &CompareResult{RunID: runID}

	for _, method := range matching.Methods {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compare cancelled: %w", err)
		}

		outcome := MethodOutcome{Method: method}
		solved, err := matching.Solve(p, method, opts)
		if err != nil {
			logger.Info("Method failed", zap.String("method", string(method)), zap.Error(err))
			outcome.Err = err
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		outcome.Score = solved.Score
		outcome.Unassigned = len(solved.Assignment.Unassigned())
		outcome.Placed = len(p.Students) - outcome.Unassigned
		outcome.Violations = len(matching.ValidateAssignment(p, solved.Assignment))
		outcome.Optima = solved.Optima

		logger.Info("Method finished",
			zap.String("method", string(method)),
			zap.Float64("score", outcome.Score),
			zap.Int("unassigned", outcome.Unassigned))
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}
