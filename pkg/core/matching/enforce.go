package matching

import "github.com/jakechorley/lab-matching/pkg/core/model"

// EnforceCapacity moves the whole student list of every over-capacity teacher into
// the unassigned bucket. It returns the new assignment and the evicted teacher IDs.
// The input is not modified and running it again on the output changes nothing.
func EnforceCapacity(p *model.Problem, assignment model.Assignment) (model.Assignment, []string) {
	out := assignment.Clone()
	var evicted []string
	for _, t := range p.Teachers {
		students := out[t.ID]
		if len(students) <= t.Capacity {
			continue
		}
		out.AddUnassigned(students...)
		out[t.ID] = []string{}
		evicted = append(evicted, t.ID)
	}
	return out, evicted
}
