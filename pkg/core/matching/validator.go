package matching

import (
	"fmt"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// Violation rule names
const (
	RuleCapacity       = "Capacity"
	RuleDuplicate      = "Duplicate"
	RuleMissingStudent = "MissingStudent"
	RuleUnknownBucket  = "UnknownBucket"
	RuleUnknownStudent = "UnknownStudent"
)

// Violation describes one way an assignment breaks the capacity or coverage invariants
type Violation struct {
	TeacherID   string
	Rule        string
	Description string
}

// ValidateAssignment checks that every teacher is within capacity and that every
// student appears in exactly one bucket. An empty result means the assignment is valid.
func ValidateAssignment(p *model.Problem, assignment model.Assignment) []Violation {
	var violations []Violation

	known := make(map[string]bool, len(p.Students))
	for _, s := range p.Students {
		known[s.ID] = true
	}
	seen := make(map[string]string, len(p.Students))

	record := func(bucket string, students []string) {
		for _, studentID := range students {
			if !known[studentID] {
				violations = append(violations, Violation{
					TeacherID:   bucket,
					Rule:        RuleUnknownStudent,
					Description: fmt.Sprintf("student '%s' is not part of the problem", studentID),
				})
				continue
			}
			if previous, dup := seen[studentID]; dup {
				violations = append(violations, Violation{
					TeacherID:   bucket,
					Rule:        RuleDuplicate,
					Description: fmt.Sprintf("student '%s' also appears in '%s'", studentID, previous),
				})
				continue
			}
			seen[studentID] = bucket
		}
	}

	buckets := make(map[string]bool, len(p.Teachers)+1)
	for _, t := range p.Teachers {
		buckets[t.ID] = true
		students := assignment[t.ID]
		if len(students) > t.Capacity {
			violations = append(violations, Violation{
				TeacherID:   t.ID,
				Rule:        RuleCapacity,
				Description: fmt.Sprintf("%d students assigned, capacity is %d", len(students), t.Capacity),
			})
		}
		record(t.ID, students)
	}
	buckets[model.UnassignedKey] = true
	record(model.UnassignedKey, assignment.Unassigned())

	for _, key := range sortedKeys(assignment) {
		if !buckets[key] {
			violations = append(violations, Violation{
				TeacherID:   key,
				Rule:        RuleUnknownBucket,
				Description: fmt.Sprintf("bucket '%s' is not a teacher", key),
			})
		}
	}

	for _, s := range p.Students {
		if _, ok := seen[s.ID]; !ok {
			violations = append(violations, Violation{
				Rule:        RuleMissingStudent,
				Description: fmt.Sprintf("student '%s' is not in any bucket", s.ID),
			})
		}
	}

	return violations
}
