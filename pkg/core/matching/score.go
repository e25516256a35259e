package matching

import (
	"fmt"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// Score returns the sum of squared dissatisfaction over every assigned pair.
// Students in the unassigned bucket contribute nothing.
func Score(assignment model.Assignment, p *model.Problem, opts NormalizeOptions) (float64, error) {
	W, A, err := Normalize(p, p.StudentIDs(), p.TeacherIDs(), opts)
	if err != nil {
		return 0, err
	}

	studentIndex := make(map[string]int, len(p.Students))
	for i, s := range p.Students {
		studentIndex[s.ID] = i
	}

	total := 0.
	for t, teacher := range p.Teachers {
		for _, studentID := range assignment[teacher.ID] {
			s, ok := studentIndex[studentID]
			if !ok {
				return 0, fmt.Errorf("%w: assignment contains unknown student '%s'", ErrInconsistentInput, studentID)
			}
			total += Dissatisfaction(W.At(s, t), A.At(s, t))
		}
	}
	return total, nil
}
