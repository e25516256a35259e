package matching

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// countingTieBreaker records how often Cover had to break a tie
type countingTieBreaker struct {
	calls int
	rows  bool
}

func (c *countingTieBreaker) PreferRow() bool {
	c.calls++
	return c.rows
}

func collectMatchings(h *hungarian) [][]int {
	var out [][]int
	for m := range h.perfectMatchings() {
		out = append(out, m)
	}
	return out
}

func TestHungarian_ReduceCoverAdjust(t *testing.T) {
	cost := denseFrom([][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	})

	for _, tie := range []TieBreaker{FixedTieBreaker{}, FixedTieBreaker{Columns: true}, NewRandomTieBreaker(7)} {
		h, err := newHungarian(cost, tie)
		require.NoError(t, err)

		h.solve()

		assert.Equal(t, [][]int{{1, 0, 2}}, collectMatchings(h))
	}
}

func TestHungarian_ReduceOnly(t *testing.T) {
	h, err := newHungarian(denseFrom([][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}), FixedTieBreaker{})
	require.NoError(t, err)

	h.reduce()

	want := [][]float64{
		{2, 0, 2},
		{1, 0, 5},
		{0, 0, 0},
	}
	for i, row := range want {
		assert.Equal(t, row, h.m.RawRowView(i))
	}
}

func TestHungarian_CoverTieUsesTieBreaker(t *testing.T) {
	h, err := newHungarian(denseFrom([][]float64{
		{2, 0, 2},
		{1, 0, 5},
		{0, 0, 0},
	}), nil)
	require.NoError(t, err)

	tie := &countingTieBreaker{rows: true}
	h.tie = tie
	matchCol, size := h.maxZeroMatching()
	require.Equal(t, 2, size)

	rows, cols := h.cover(matchCol)

	// row 2 and column 1 both hold three zeros, so the first choice is a tie
	assert.GreaterOrEqual(t, tie.calls, 1)
	assert.Equal(t, []bool{false, false, true}, rows)
	assert.Equal(t, []bool{false, true, false}, cols)
}

func TestHungarian_MinimumCover(t *testing.T) {
	h, err := newHungarian(denseFrom([][]float64{
		{2, 0, 2},
		{1, 0, 5},
		{0, 0, 0},
	}), FixedTieBreaker{})
	require.NoError(t, err)

	matchCol, size := h.maxZeroMatching()
	require.Equal(t, 2, size)

	rows, cols := h.minimumCover(matchCol)

	lines := 0
	for i := range rows {
		if rows[i] {
			lines++
		}
		if cols[i] {
			lines++
		}
	}
	assert.Equal(t, size, lines)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if h.isZero(i, j) {
				assert.True(t, rows[i] || cols[j], "zero at (%d,%d) left uncovered", i, j)
			}
		}
	}
}

func TestHungarian_PerfectMatchingsAllZeros(t *testing.T) {
	h, err := newHungarian(mat.NewDense(3, 3, nil), FixedTieBreaker{})
	require.NoError(t, err)

	matchings := collectMatchings(h)

	assert.Len(t, matchings, 6)
	assert.Equal(t, []int{0, 1, 2}, matchings[0])
	assert.Equal(t, []int{2, 1, 0}, matchings[5])
}

func TestHungarian_PerfectMatchingsOnePerBlock(t *testing.T) {
	h, err := newHungarian(mat.NewDense(3, 3, nil), FixedTieBreaker{})
	require.NoError(t, err)
	h.blocks = []int{0, 0, 1}

	matchings := collectMatchings(h)

	// row 0 or 1 or 2 takes the single-column block, the others fill block 0 in order
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 2, 1}, {2, 0, 1}}, matchings)
}

func TestHungarian_EmptyMatrix(t *testing.T) {
	h, err := newHungarian(&mat.Dense{}, FixedTieBreaker{})
	require.NoError(t, err)

	h.solve()

	matchings := collectMatchings(h)
	require.Len(t, matchings, 1)
	assert.Empty(t, matchings[0])
}

func TestHungarian_PerfectMatchingsStopEarly(t *testing.T) {
	h, err := newHungarian(mat.NewDense(4, 4, nil), FixedTieBreaker{})
	require.NoError(t, err)

	count := 0
	for range h.perfectMatchings() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestHungarian_NotSquare(t *testing.T) {
	_, err := newHungarian(mat.NewDense(2, 3, nil), FixedTieBreaker{})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestSolveHungarian_Trivial(t *testing.T) {
	p := trivialProblem()

	result, err := SolveHungarian(p, Options{})
	require.NoError(t, err)

	W, A, err := Normalize(p, p.StudentIDs(), p.TeacherIDs(), NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.Assignment{"t1": {"s1"}}, result.Assignment)
	assert.InDelta(t, Dissatisfaction(W.At(0, 0), A.At(0, 0)), result.Score, 1e-9)
}

func TestSolveHungarian_Reciprocal(t *testing.T) {
	result, err := SolveHungarian(reciprocalProblem(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, result.Assignment["t1"])
	assert.Equal(t, []string{"s2"}, result.Assignment["t2"])
	assert.Equal(t, 1, result.Optima)
}

func TestSolveHungarian_DimensionError(t *testing.T) {
	_, err := SolveHungarian(oversubscribedProblem(), Options{})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestEnumerateHungarian_SeatPermutationsDeduplicated(t *testing.T) {
	p := &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1}},
			{ID: "s2", Choice: map[string]int{"t1": 1}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 2, Preference: map[string]int{"s1": 1, "s2": 2}},
		},
	}

	assignments, err := EnumerateHungarian(p, Options{})
	require.NoError(t, err)

	require.Len(t, assignments, 1)
	assert.Equal(t, []string{"s1", "s2"}, assignments[0]["t1"])
}

func TestEnumerateHungarian_LargeLabFinishesQuickly(t *testing.T) {
	p := singleLabProblem(12)

	start := time.Now()
	assignments, err := EnumerateHungarian(p, Options{})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, assignments, 1)
	assert.Len(t, assignments[0]["t00"], 12)
}

func TestEnumerateHungarian_SeveralLabsMatchOptimalScore(t *testing.T) {
	p := labsProblem(4, 5)

	start := time.Now()
	hng, err := SolveHungarian(p, Options{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	mnk, err := SolveOptimalAssignment(p, Options{})
	require.NoError(t, err)

	assert.InDelta(t, mnk.Score, hng.Score, 1e-6)
	assert.Equal(t, 1, hng.Optima)
	assert.Nil(t, firstViolation(p, hng.Assignment))
}

func TestPlaceFromSeats_OverflowIsReported(t *testing.T) {
	p := trivialProblem()
	p.Students = append(p.Students, model.Student{ID: "s2", Choice: map[string]int{"t1": 1}})
	p.Teachers[0].Preference["s2"] = 2
	seats := []Seat{{TeacherID: "t1", Index: 0}, {TeacherID: "t1", Index: 1}}

	_, err := placeFromSeats(p, seats, []int{0, 1})
	assert.ErrorIs(t, err, ErrCapacityOverflow)

	assignment, err := placeFromSeats(p, seats, []int{0, -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, assignment.Unassigned())
}

func TestSeatBlocks(t *testing.T) {
	seats := ExpandSeats(&model.Problem{Teachers: []model.Teacher{
		{ID: "t1", Capacity: 2},
		{ID: "t2", Capacity: 1},
		{ID: "t3", Capacity: 3},
	}})

	assert.Equal(t, []int{0, 0, 1, 2, 2, 2}, seatBlocks(seats))
}

func TestEnumerateHungarian_AllOptimalSolutions(t *testing.T) {
	p := tiedProblem()

	assignments, err := EnumerateHungarian(p, Options{})
	require.NoError(t, err)

	require.Len(t, assignments, 2)
	assert.Equal(t, model.Assignment{"t1": {"s1"}, "t2": {"s2"}}, assignments[0])
	assert.Equal(t, model.Assignment{"t1": {"s2"}, "t2": {"s1"}}, assignments[1])

	for _, a := range assignments {
		score, err := Score(a, p, NormalizeOptions{})
		require.NoError(t, err)
		// nobody ranked anyone, so both wishes sit at 50: (100-50)^2 + (100-0)^2
		assert.InDelta(t, 12500.0, score, 1e-9)
	}
}

func TestEnumerateHungarian_MaxMatchings(t *testing.T) {
	assignments, err := EnumerateHungarian(tiedProblem(), Options{MaxMatchings: 1})
	require.NoError(t, err)

	assert.Len(t, assignments, 1)
}

func TestSolveHungarian_SelectionIndependentOfTieBreaker(t *testing.T) {
	p := tiedProblem()

	fixed, err := SolveHungarian(p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, fixed.Optima)

	for seed := uint64(0); seed < 10; seed++ {
		random, err := SolveHungarian(p, Options{TieBreaker: NewRandomTieBreaker(seed)})
		require.NoError(t, err)
		assert.True(t, fixed.Assignment.Equal(random.Assignment))
	}
}

func TestRandomTieBreaker_Reproducible(t *testing.T) {
	a := NewRandomTieBreaker(42)
	b := NewRandomTieBreaker(42)

	var first, second []bool
	for i := 0; i < 32; i++ {
		first = append(first, a.PreferRow())
		second = append(second, b.PreferRow())
	}
	assert.Equal(t, first, second)
	assert.True(t, slices.Contains(first, true) && slices.Contains(first, false))
}
