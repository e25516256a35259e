// Package demodata generates synthetic matching problems for trying out the solvers.
package demodata

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// Mode selects how student choices are drawn
type Mode string

const (
	// ModeRandom gives every student a random ranking of Limit teachers
	ModeRandom Mode = "random"
	// ModeSeparate draws first choices in proportion to remaining capacity so that
	// everyone could get their first choice; later choices are random
	ModeSeparate Mode = "separate"
)

// Options configures Generate
type Options struct {
	Students int    `validate:"min=1"`
	Teachers int    `validate:"min=1"`
	Limit    int    `validate:"min=1"`
	Mode     Mode   `validate:"oneof=random separate"`
	Seed     uint64 `validate:"-"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Generate builds a problem with Students students and up to Teachers teachers.
// Each student adds one seat to a random teacher, so total capacity equals the number
// of students. Teachers that end up with no seats are left out. The same options
// always produce the same problem.
func Generate(opts Options) (*model.Problem, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid demo data options: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x2545f4914f6cdd1d))

	capacity := make([]int, opts.Teachers)
	for i := 0; i < opts.Students; i++ {
		capacity[rng.IntN(opts.Teachers)]++
	}

	p := &model.Problem{}
	for i := 0; i < opts.Students; i++ {
		p.Students = append(p.Students, model.Student{
			ID:     fmt.Sprintf("Student_%d", i),
			Choice: map[string]int{},
		})
	}
	for i, c := range capacity {
		if c == 0 {
			continue
		}
		p.Teachers = append(p.Teachers, model.Teacher{
			ID:       fmt.Sprintf("Teacher_%d", i),
			Capacity: c,
		})
	}

	for t := range p.Teachers {
		order := rng.Perm(len(p.Students))
		pref := make(map[string]int, len(p.Students))
		for rank, s := range order {
			pref[p.Students[s].ID] = rank + 1
		}
		p.Teachers[t].Preference = pref
	}

	limit := min(opts.Limit, len(p.Teachers))
	switch opts.Mode {
	case ModeSeparate:
		separateChoices(rng, p, limit)
	default:
		randomChoices(rng, p, limit)
	}

	return p, nil
}

func randomChoices(rng *rand.Rand, p *model.Problem, limit int) {
	for s := range p.Students {
		order := rng.Perm(len(p.Teachers))
		for rank, t := range order[:limit] {
			p.Students[s].Choice[p.Teachers[t].ID] = rank + 1
		}
	}
}

func separateChoices(rng *rand.Rand, p *model.Problem, limit int) {
	remaining := make([]int, len(p.Teachers))
	total := 0
	for t, teacher := range p.Teachers {
		remaining[t] = teacher.Capacity
		total += teacher.Capacity
	}

	first := make([]int, len(p.Students))
	for s := range p.Students {
		pick := rng.IntN(total)
		t := 0
		for pick >= remaining[t] {
			pick -= remaining[t]
			t++
		}
		first[s] = t
		remaining[t]--
		total--
		p.Students[s].Choice[p.Teachers[t].ID] = 1
	}

	for s := range p.Students {
		others := make([]int, 0, len(p.Teachers)-1)
		for t := range p.Teachers {
			if t != first[s] {
				others = append(others, t)
			}
		}
		rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
		for i, t := range others[:limit-1] {
			p.Students[s].Choice[p.Teachers[t].ID] = i + 2
		}
	}
}
