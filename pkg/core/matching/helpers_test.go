package matching

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// reciprocalProblem: s1 and t1 rank each other first, as do s2 and t2
func reciprocalProblem() *model.Problem {
	return &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1, "t2": 2}},
			{ID: "s2", Choice: map[string]int{"t2": 1, "t1": 2}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s1": 1, "s2": 2}},
			{ID: "t2", Capacity: 1, Preference: map[string]int{"s2": 1, "s1": 2}},
		},
	}
}

// oversubscribedProblem: three students all want the single two-seat teacher
func oversubscribedProblem() *model.Problem {
	return &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1}},
			{ID: "s2", Choice: map[string]int{"t1": 1}},
			{ID: "s3", Choice: map[string]int{"t1": 1}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 2, Preference: map[string]int{"s3": 3, "s1": 1, "s2": 2}},
		},
	}
}

func trivialProblem() *model.Problem {
	return &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s1": 1}},
		},
	}
}

// tiedProblem has no choices at all and both teachers rank s1 first,
// so swapping the students between teachers costs the same
func tiedProblem() *model.Problem {
	return &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{}},
			{ID: "s2", Choice: map[string]int{}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s1": 1, "s2": 2}},
			{ID: "t2", Capacity: 1, Preference: map[string]int{"s1": 1, "s2": 2}},
		},
	}
}

func denseFrom(rows [][]float64) *mat.Dense {
	var data []float64
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), len(rows[0]), data)
}

// singleLabProblem has n students who all want the one teacher with n seats
func singleLabProblem(n int) *model.Problem {
	return labsProblem(1, n)
}

// labsProblem has labs teachers with seats places each and one student per seat.
// Every student ranks all teachers, starting from their home lab.
func labsProblem(labs, seats int) *model.Problem {
	p := &model.Problem{}
	for t := 0; t < labs; t++ {
		p.Teachers = append(p.Teachers, model.Teacher{
			ID:         fmt.Sprintf("t%02d", t),
			Capacity:   seats,
			Preference: map[string]int{},
		})
	}
	for s := 0; s < labs*seats; s++ {
		id := fmt.Sprintf("s%02d", s)
		home := s / seats
		choice := make(map[string]int, labs)
		for k := 0; k < labs; k++ {
			choice[p.Teachers[(home+k)%labs].ID] = k + 1
		}
		p.Students = append(p.Students, model.Student{ID: id, Choice: choice})
		for t := range p.Teachers {
			p.Teachers[t].Preference[id] = s + 1
		}
	}
	return p
}

// firstViolation returns the first capacity or coverage violation, if any
func firstViolation(p *model.Problem, a model.Assignment) *Violation {
	violations := ValidateAssignment(p, a)
	if len(violations) == 0 {
		return nil
	}
	return &violations[0]
}
