package model

import (
	"slices"
	"sort"
)

// UnassignedKey is the reserved Assignment bucket for students left without a teacher
const UnassignedKey = "unassigned"

// Student represents a student and their ranked choices of teachers
type Student struct {
	ID string `json:"id" yaml:"id" validate:"required"`
	// Choice maps teacher ID to rank (1 = most wanted). Teachers missing from the map are unranked.
	Choice map[string]int `json:"choice" yaml:"choice"`
}

// Teacher represents a teacher (laboratory) with a number of seats and a ranking of students
type Teacher struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Capacity int    `json:"capacity" yaml:"capacity" validate:"min=1"`
	// Preference maps student ID to rank (1 = most wanted). Must cover every student.
	Preference map[string]int `json:"preference" yaml:"preference"`
}

// Problem is the read-only input to every solver
type Problem struct {
	Students []Student `validate:"dive"`
	Teachers []Teacher `validate:"dive"`
}

// StudentIDs returns the student identifiers in problem order
func (p *Problem) StudentIDs() []string {
	ids := make([]string, len(p.Students))
	for i, s := range p.Students {
		ids[i] = s.ID
	}
	return ids
}

// TeacherIDs returns the teacher identifiers in problem order
func (p *Problem) TeacherIDs() []string {
	ids := make([]string, len(p.Teachers))
	for i, t := range p.Teachers {
		ids[i] = t.ID
	}
	return ids
}

// Student looks up a student by ID
func (p *Problem) Student(id string) (*Student, bool) {
	for i := range p.Students {
		if p.Students[i].ID == id {
			return &p.Students[i], true
		}
	}
	return nil, false
}

// TotalCapacity returns the sum of all teacher capacities
func (p *Problem) TotalCapacity() int {
	total := 0
	for _, t := range p.Teachers {
		total += t.Capacity
	}
	return total
}

// SortByID orders students and teachers by identifier.
// Loaders call this so that map-shaped input files always produce the same problem.
func (p *Problem) SortByID() {
	sort.SliceStable(p.Students, func(i, j int) bool { return p.Students[i].ID < p.Students[j].ID })
	sort.SliceStable(p.Teachers, func(i, j int) bool { return p.Teachers[i].ID < p.Teachers[j].ID })
}

// Clone returns a deep copy of the problem
func (p *Problem) Clone() *Problem {
	out := &Problem{
		Students: make([]Student, len(p.Students)),
		Teachers: make([]Teacher, len(p.Teachers)),
	}
	for i, s := range p.Students {
		out.Students[i] = Student{ID: s.ID, Choice: cloneRanks(s.Choice)}
	}
	for i, t := range p.Teachers {
		out.Teachers[i] = Teacher{ID: t.ID, Capacity: t.Capacity, Preference: cloneRanks(t.Preference)}
	}
	return out
}

func cloneRanks(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Assignment maps teacher ID (or UnassignedKey) to the students placed there
type Assignment map[string][]string

// NewAssignment creates an assignment with an empty bucket for every teacher
func NewAssignment(p *Problem) Assignment {
	a := make(Assignment, len(p.Teachers)+1)
	for _, t := range p.Teachers {
		a[t.ID] = []string{}
	}
	return a
}

// Unassigned returns the students in the unassigned bucket
func (a Assignment) Unassigned() []string {
	return a[UnassignedKey]
}

// AddUnassigned appends students to the unassigned bucket
func (a Assignment) AddUnassigned(students ...string) {
	if len(students) == 0 {
		return
	}
	a[UnassignedKey] = append(a[UnassignedKey], students...)
}

// Clone returns a deep copy of the assignment
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = slices.Clone(v)
	}
	return out
}

// Equal reports whether both assignments place the same students in each bucket, ignoring order
func (a Assignment) Equal(b Assignment) bool {
	keys := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	for k := range keys {
		x := slices.Clone(a[k])
		y := slices.Clone(b[k])
		slices.Sort(x)
		slices.Sort(y)
		if !slices.Equal(x, y) {
			return false
		}
	}
	return true
}
