package matching

import (
	"errors"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

var (
	// ErrConfiguration indicates a bad range or parameter passed to the normalizer
	ErrConfiguration = errors.New("configuration error")

	// ErrInconsistentInput indicates ranking data that violates a solver precondition
	ErrInconsistentInput = model.ErrInconsistentInput

	// ErrDimension indicates a cost matrix that is not square after seat expansion
	ErrDimension = errors.New("dimension error")

	// ErrCapacityOverflow indicates a solver produced more students than seats for a teacher
	ErrCapacityOverflow = errors.New("capacity overflow")
)
