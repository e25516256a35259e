package matching

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

const (
	// DefaultUnrankedSentinel is the rank substituted for teachers a student did not choose
	DefaultUnrankedSentinel = 20

	// PerfectFit is the combined desirability of an ideal student/teacher pair
	PerfectFit = 100.
)

var (
	// DefaultWishRange is the output range [min, max] of the wishness map
	DefaultWishRange = []float64{50, 100}

	// DefaultAcceptabilityRange is the output range [min, max] of the acceptability map
	DefaultAcceptabilityRange = []float64{0, 1}
)

// NormalizeOptions configures the rank-to-desirability maps.
// Nil ranges and a zero sentinel fall back to the defaults.
type NormalizeOptions struct {
	WishRange          []float64
	AcceptabilityRange []float64
	UnrankedSentinel   int
}

func (o NormalizeOptions) resolve() (wish, acceptability [2]float64, sentinel int, err error) {
	wish, err = resolveRange("wish", o.WishRange, DefaultWishRange)
	if err != nil {
		return
	}
	acceptability, err = resolveRange("acceptability", o.AcceptabilityRange, DefaultAcceptabilityRange)
	if err != nil {
		return
	}
	sentinel = o.UnrankedSentinel
	if sentinel == 0 {
		sentinel = DefaultUnrankedSentinel
	}
	return
}

func resolveRange(name string, override, fallback []float64) ([2]float64, error) {
	if override == nil {
		return [2]float64{fallback[0], fallback[1]}, nil
	}
	if len(override) != 2 {
		return [2]float64{}, fmt.Errorf("%w: %s range must have exactly 2 values, got %d", ErrConfiguration, name, len(override))
	}
	return [2]float64{override[0], override[1]}, nil
}

// linearMap maps [inLo, inHi] onto [outHi, outLo], so inLo yields outHi.
// A degenerate input range yields outHi everywhere.
type linearMap struct {
	inLo, slope, outHi float64
}

func newDecreasingMap(inLo, inHi float64, out [2]float64) linearMap {
	m := linearMap{inLo: inLo, outHi: out[1]}
	if inHi != inLo {
		m.slope = (out[1] - out[0]) / (inLo - inHi)
	}
	return m
}

func (m linearMap) apply(x float64) float64 {
	return m.outHi + m.slope*(x-m.inLo)
}

// Normalize builds the wishness matrix W and acceptability matrix A for the given
// students (rows) and targets (columns). Targets are teacher IDs and may repeat,
// as they do for a seat-expanded target list. Both matrices are empty when there
// are no students or no targets.
func Normalize(p *model.Problem, students, targets []string, opts NormalizeOptions) (*mat.Dense, *mat.Dense, error) {
	wishRange, acceptabilityRange, sentinel, err := opts.resolve()
	if err != nil {
		return nil, nil, err
	}

	minRank, maxRank := observedRankBounds(p)
	if sentinel <= maxRank {
		return nil, nil, fmt.Errorf("%w: unranked sentinel %d must exceed the largest choice rank %d",
			ErrInconsistentInput, sentinel, maxRank)
	}

	wishness := newDecreasingMap(float64(minRank), float64(sentinel), wishRange)
	acceptability := newDecreasingMap(1, float64(len(p.Students)), acceptabilityRange)

	teachers := make(map[string]*model.Teacher, len(p.Teachers))
	for i := range p.Teachers {
		teachers[p.Teachers[i].ID] = &p.Teachers[i]
	}
	studentsByID := make(map[string]*model.Student, len(p.Students))
	for i := range p.Students {
		studentsByID[p.Students[i].ID] = &p.Students[i]
	}

	W := newMatrix(len(students), len(targets))
	A := newMatrix(len(students), len(targets))
	for s, studentID := range students {
		student, ok := studentsByID[studentID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown student '%s'", ErrInconsistentInput, studentID)
		}
		for t, teacherID := range targets {
			teacher, ok := teachers[teacherID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: unknown teacher '%s'", ErrInconsistentInput, teacherID)
			}

			rank, ranked := student.Choice[teacherID]
			if !ranked {
				rank = sentinel
			}
			W.Set(s, t, wishness.apply(float64(rank)))

			preference, ok := teacher.Preference[studentID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: teacher '%s' has no preference for student '%s'",
					ErrInconsistentInput, teacherID, studentID)
			}
			A.Set(s, t, acceptability.apply(float64(preference)))
		}
	}

	return W, A, nil
}

// observedRankBounds returns the smallest and largest choice rank in the problem.
// Both are 1 when no student ranks any teacher.
func observedRankBounds(p *model.Problem) (lo, hi int) {
	for _, s := range p.Students {
		for _, r := range s.Choice {
			if lo == 0 || r < lo {
				lo = r
			}
			hi = max(hi, r)
		}
	}
	if lo == 0 {
		lo, hi = 1, 1
	}
	return lo, hi
}

// Dissatisfaction is the cost of one matched pair: (100 - w*a)^2
func Dissatisfaction(w, a float64) float64 {
	d := PerfectFit - w*a
	return d * d
}

// CostMatrix combines W and A into the assignment cost M = (100 - W∘A)^2
func CostMatrix(W, A mat.Matrix) (*mat.Dense, error) {
	r, c := W.Dims()
	if ar, ac := A.Dims(); r != ar || c != ac {
		return nil, fmt.Errorf("%w: W is %dx%d but A is %dx%d", ErrDimension, r, c, ar, ac)
	}
	M := newMatrix(r, c)
	if r == 0 || c == 0 {
		return M, nil
	}
	M.Apply(func(i, j int, w float64) float64 {
		return Dissatisfaction(w, A.At(i, j))
	}, W)
	return M, nil
}

// newMatrix returns an r×c zero matrix. mat.NewDense rejects zero dimensions,
// so empty problems get the empty matrix instead.
func newMatrix(r, c int) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, nil)
}

// cloneMatrix returns a deep copy of m
func cloneMatrix(m mat.Matrix) *mat.Dense {
	if r, c := m.Dims(); r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}
