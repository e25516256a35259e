package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/pkg/core/matching"
	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// ProblemSummary describes a problem that passed validation
type ProblemSummary struct {
	Students      int
	Teachers      int
	TotalCapacity int
	// ChoiceLimit is the shared choice list length, or -1 when students rank different numbers of teachers
	ChoiceLimit int
	// Methods lists the solvers that accept the problem
	Methods []matching.Method
}

// ValidateProblem checks the problem at inputPath and reports which solvers can run on it
func ValidateProblem(ctx context.Context, store ProblemLoader, logger *zap.Logger, inputPath string) (*ProblemSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := loadValidProblem(store, logger, inputPath)
	if err != nil {
		return nil, err
	}

	summary := Summarize(p)
	logger.Info("Problem is valid",
		zap.Int("students", summary.Students),
		zap.Int("teachers", summary.Teachers),
		zap.Int("seats", summary.TotalCapacity),
		zap.Int("choice_limit", summary.ChoiceLimit))

	return summary, nil
}

// Summarize reports the problem's size and the solvers whose preconditions it meets.
// DA runs on any valid problem, MNK needs a uniform choice limit and HNG also needs
// exactly one seat per student.
func Summarize(p *model.Problem) *ProblemSummary {
	summary := &ProblemSummary{
		Students:      len(p.Students),
		Teachers:      len(p.Teachers),
		TotalCapacity: p.TotalCapacity(),
		ChoiceLimit:   -1,
		Methods:       []matching.Method{matching.MethodDeferredAcceptance},
	}

	limit, err := p.ChoiceLimit()
	if err != nil {
		return summary
	}
	summary.ChoiceLimit = limit
	summary.Methods = append(summary.Methods, matching.MethodOptimalAssignment)
	if summary.TotalCapacity == summary.Students {
		summary.Methods = append(summary.Methods, matching.MethodHungarian)
	}
	return summary
}

func (s *ProblemSummary) String() string {
	return fmt.Sprintf("%d students, %d teachers, %d seats, choice limit %d", s.Students, s.Teachers, s.TotalCapacity, s.ChoiceLimit)
}
