package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// ErrInconsistentInput indicates ranking data that violates a precondition of the solvers
var ErrInconsistentInput = errors.New("inconsistent input")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the problem once at the boundary.
//
// Checks performed:
//   - struct tags (non-empty IDs, positive capacity)
//   - unique student and teacher IDs, and no teacher using UnassignedKey
//   - every choice references a known teacher and ranks form 1..k per student
//   - every teacher ranks every student exactly once with ranks 1..n
//
// A uniform choice limit is not required here; see ChoiceLimit.
func (p *Problem) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: problem validation failed: %w", ErrInconsistentInput, err)
	}

	studentIDs := make(map[string]bool, len(p.Students))
	for _, s := range p.Students {
		if studentIDs[s.ID] {
			return fmt.Errorf("%w: duplicate student '%s'", ErrInconsistentInput, s.ID)
		}
		studentIDs[s.ID] = true
	}

	teacherIDs := make(map[string]bool, len(p.Teachers))
	for _, t := range p.Teachers {
		if t.ID == UnassignedKey {
			return fmt.Errorf("%w: teacher ID '%s' is reserved", ErrInconsistentInput, UnassignedKey)
		}
		if teacherIDs[t.ID] {
			return fmt.Errorf("%w: duplicate teacher '%s'", ErrInconsistentInput, t.ID)
		}
		teacherIDs[t.ID] = true
	}

	for _, s := range p.Students {
		for teacherID := range s.Choice {
			if !teacherIDs[teacherID] {
				return fmt.Errorf("%w: student '%s' chose unknown teacher '%s'", ErrInconsistentInput, s.ID, teacherID)
			}
		}
		if err := checkPermutation(s.Choice, len(s.Choice)); err != nil {
			return fmt.Errorf("%w: choice ranks of student '%s': %w", ErrInconsistentInput, s.ID, err)
		}
	}

	for _, t := range p.Teachers {
		if len(t.Preference) != len(p.Students) {
			return fmt.Errorf("%w: teacher '%s' ranks %d students, expected %d",
				ErrInconsistentInput, t.ID, len(t.Preference), len(p.Students))
		}
		for studentID := range t.Preference {
			if !studentIDs[studentID] {
				return fmt.Errorf("%w: teacher '%s' ranks unknown student '%s'", ErrInconsistentInput, t.ID, studentID)
			}
		}
		if err := checkPermutation(t.Preference, len(p.Students)); err != nil {
			return fmt.Errorf("%w: preference ranks of teacher '%s': %w", ErrInconsistentInput, t.ID, err)
		}
	}

	return nil
}

// ChoiceLimit returns the number of teachers every student ranks.
// Fails if students rank different numbers of teachers.
func (p *Problem) ChoiceLimit() (int, error) {
	if len(p.Students) == 0 {
		return 0, nil
	}
	limit := len(p.Students[0].Choice)
	for _, s := range p.Students[1:] {
		if len(s.Choice) != limit {
			return 0, fmt.Errorf("%w: student '%s' ranks %d teachers but '%s' ranks %d",
				ErrInconsistentInput, s.ID, len(s.Choice), p.Students[0].ID, limit)
		}
	}
	return limit, nil
}

// MaxChoiceLength returns the longest choice list of any student
func (p *Problem) MaxChoiceLength() int {
	longest := 0
	for _, s := range p.Students {
		longest = max(longest, len(s.Choice))
	}
	return longest
}

// checkPermutation verifies that the ranks are exactly 1..n with no ties
func checkPermutation(ranks map[string]int, n int) error {
	if len(ranks) != n {
		return fmt.Errorf("expected %d ranks, got %d", n, len(ranks))
	}
	values := make([]int, 0, len(ranks))
	for _, r := range ranks {
		values = append(values, r)
	}
	sort.Ints(values)
	for i, r := range values {
		if r != i+1 {
			return fmt.Errorf("ranks must be a permutation of 1..%d (found %v)", n, values)
		}
	}
	return nil
}
