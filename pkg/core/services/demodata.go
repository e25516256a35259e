package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/pkg/core/demodata"
	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// ProblemSaver writes a problem file
type ProblemSaver interface {
	SaveProblem(dir, name string, p *model.Problem) (string, error)
}

// DemoDataResult contains the generated problem and where it was written
type DemoDataResult struct {
	Problem    *model.Problem
	OutputPath string
}

// GenerateDemoData generates a synthetic problem and writes it to
// outputDir/demodata_<mode>.json, adding a numeric suffix if that name is taken
func GenerateDemoData(
	ctx context.Context,
	store ProblemSaver,
	logger *zap.Logger,
	opts demodata.Options,
	outputDir string,
) (*DemoDataResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Generating demo data",
		zap.Int("students", opts.Students),
		zap.Int("teachers", opts.Teachers),
		zap.Int("limit", opts.Limit),
		zap.String("mode", string(opts.Mode)),
		zap.Uint64("seed", opts.Seed))

	p, err := demodata.Generate(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate demo data: %w", err)
	}

	if dropped := opts.Teachers - len(p.Teachers); dropped > 0 {
		logger.Info("Teachers without seats left out", zap.Int("count", dropped))
	}

	path, err := store.SaveProblem(outputDir, fmt.Sprintf("demodata_%s.json", opts.Mode), p)
	if err != nil {
		return nil, fmt.Errorf("failed to save demo data: %w", err)
	}
	logger.Info("Demo data saved", zap.String("path", path))

	return &DemoDataResult{Problem: p, OutputPath: path}, nil
}
