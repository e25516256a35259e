package matching

import (
	"sort"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// SolveDeferredAcceptance runs student-proposing deferred acceptance over the raw rankings.
//
// Round i (1..L, L = longest choice list):
//  1. every unassigned student proposes to the teacher they ranked i
//  2. each teacher adds the proposals to the students it already holds
//  3. an over-capacity teacher keeps its most preferred students and releases the rest
//
// A student with no rank-i choice does not propose in round i and stays eligible
// for later rounds. Students still unassigned after round L end up in the unassigned bucket.
func SolveDeferredAcceptance(p *model.Problem) (model.Assignment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// choiceAt[s][i-1] is the teacher student s ranked i
	choiceAt := make(map[string][]string, len(p.Students))
	for _, s := range p.Students {
		byRank := make([]string, len(s.Choice))
		for teacherID, rank := range s.Choice {
			byRank[rank-1] = teacherID
		}
		choiceAt[s.ID] = byRank
	}

	assignment := model.NewAssignment(p)
	unassigned := p.StudentIDs()
	limit := p.MaxChoiceLength()

	for round := 1; round <= limit; round++ {
		var waiting []string
		for _, studentID := range unassigned {
			choices := choiceAt[studentID]
			if round > len(choices) {
				waiting = append(waiting, studentID)
				continue
			}
			teacherID := choices[round-1]
			assignment[teacherID] = append(assignment[teacherID], studentID)
		}

		for _, t := range p.Teachers {
			held := assignment[t.ID]
			if len(held) <= t.Capacity {
				continue
			}
			sort.SliceStable(held, func(i, j int) bool {
				return t.Preference[held[i]] < t.Preference[held[j]]
			})
			assignment[t.ID] = held[:t.Capacity:t.Capacity]
			waiting = append(waiting, held[t.Capacity:]...)
		}

		unassigned = waiting
	}

	assignment.AddUnassigned(unassigned...)

	return assignment, nil
}
