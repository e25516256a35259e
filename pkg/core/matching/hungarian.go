package matching

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// zeroTolerance absorbs floating point drift when testing reduced cells for zero
const zeroTolerance = 1e-9

// TieBreaker decides the Cover step when the best row and the best column
// cover the same number of uncovered zeros
type TieBreaker interface {
	PreferRow() bool
}

// FixedTieBreaker always resolves ties the same way
type FixedTieBreaker struct {
	Columns bool // prefer columns instead of rows
}

func (f FixedTieBreaker) PreferRow() bool { return !f.Columns }

// RandomTieBreaker flips a seeded coin on every tie. Not safe for concurrent use.
type RandomTieBreaker struct {
	rng *rand.Rand
}

// NewRandomTieBreaker creates a coin-flip tie breaker with a reproducible seed
func NewRandomTieBreaker(seed uint64) *RandomTieBreaker {
	return &RandomTieBreaker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomTieBreaker) PreferRow() bool { return r.rng.IntN(2) == 0 }

// SolveHungarian returns one optimal assignment found by EnumerateHungarian.
// Of all distinct optimal assignments the one with the smallest canonical key is
// selected, so the choice does not depend on the tie breaker.
func SolveHungarian(p *model.Problem, opts Options) (*Result, error) {
	assignments, err := EnumerateHungarian(p, opts)
	if err != nil {
		return nil, err
	}
	result, err := newResult(MethodHungarian, p, assignments[0], opts.Normalize)
	if err != nil {
		return nil, err
	}
	result.Optima = len(assignments)
	return result, nil
}

// EnumerateHungarian runs the Hungarian algorithm on the square students × seats cost
// matrix and returns every distinct optimal assignment reachable from the final
// reduced matrix. Seats of one teacher are interchangeable, so the search picks
// teachers rather than seats and each distinct assignment is produced once.
// The result is ordered by canonical key and never empty.
func EnumerateHungarian(p *model.Problem, opts Options) ([]model.Assignment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := p.ChoiceLimit(); err != nil {
		return nil, err
	}

	seats := ExpandSeats(p)
	if len(seats) != len(p.Students) {
		return nil, fmt.Errorf("%w: %d students but %d seats, cost matrix must be square",
			ErrDimension, len(p.Students), len(seats))
	}

	M, err := seatCostMatrix(p, seats, opts.Normalize)
	if err != nil {
		return nil, err
	}

	tie := opts.TieBreaker
	if tie == nil {
		tie = FixedTieBreaker{}
	}
	h, err := newHungarian(M, tie)
	if err != nil {
		return nil, err
	}
	h.blocks = seatBlocks(seats)

	h.solve()

	seen := make(map[string]bool)
	var keys []string
	byKey := make(map[string]model.Assignment)
	examined := 0
	for rowToSeat := range h.perfectMatchings() {
		assignment, err := placeFromSeats(p, seats, rowToSeat)
		if err != nil {
			return nil, err
		}
		key := canonicalKey(p, assignment)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
			byKey[key] = assignment
		}
		examined++
		if opts.MaxMatchings > 0 && examined >= opts.MaxMatchings {
			break
		}
	}

	sort.Strings(keys)
	out := make([]model.Assignment, len(keys))
	for i, key := range keys {
		out[i] = byKey[key]
	}
	return out, nil
}

// hungarian holds the working state of one run over a square matrix
type hungarian struct {
	n   int
	m   *mat.Dense // reduced in place
	tie TieBreaker

	// blocks[j] groups interchangeable columns; a block is a contiguous run
	blocks []int
}

// newHungarian copies cost. Every column starts in its own block.
func newHungarian(cost mat.Matrix, tie TieBreaker) (*hungarian, error) {
	r, c := cost.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: cost matrix is %dx%d", ErrDimension, r, c)
	}
	blocks := make([]int, c)
	for j := range blocks {
		blocks[j] = j
	}
	return &hungarian{n: r, m: cloneMatrix(cost), tie: tie, blocks: blocks}, nil
}

// solve runs Reduce, then Cover and Adjust until the zeros hold a perfect matching
func (h *hungarian) solve() {
	h.reduce()
	for {
		matchCol, size := h.maxZeroMatching()
		if size == h.n {
			return
		}
		rowCovered, colCovered := h.cover(matchCol)
		h.adjust(rowCovered, colCovered)
	}
}

func (h *hungarian) isZero(i, j int) bool {
	return h.m.At(i, j) <= zeroTolerance
}

// reduce subtracts each row minimum, then each column minimum
func (h *hungarian) reduce() {
	for i := 0; i < h.n; i++ {
		row := h.m.RawRowView(i)
		lo := slices.Min(row)
		for j := range row {
			row[j] = snap(row[j] - lo)
		}
	}
	for j := 0; j < h.n; j++ {
		lo := math.Inf(1)
		for i := 0; i < h.n; i++ {
			lo = min(lo, h.m.At(i, j))
		}
		for i := 0; i < h.n; i++ {
			h.m.Set(i, j, snap(h.m.At(i, j)-lo))
		}
	}
}

// maxZeroMatching finds a maximum matching on the zero cells with augmenting paths.
// matchCol[j] is the row matched to column j, or -1.
func (h *hungarian) maxZeroMatching() (matchCol []int, size int) {
	matchCol = make([]int, h.n)
	for j := range matchCol {
		matchCol[j] = -1
	}

	var augment func(i int, visited []bool) bool
	augment = func(i int, visited []bool) bool {
		for j := 0; j < h.n; j++ {
			if visited[j] || !h.isZero(i, j) {
				continue
			}
			visited[j] = true
			if matchCol[j] < 0 || augment(matchCol[j], visited) {
				matchCol[j] = i
				return true
			}
		}
		return false
	}

	for i := 0; i < h.n; i++ {
		if augment(i, make([]bool, h.n)) {
			size++
		}
	}
	return matchCol, size
}

// cover marks lines until no zero is left uncovered. Lines are chosen greedily by the
// number of uncovered zeros they hold; if the greedy cover is not smaller than n the
// minimum cover derived from the maximum matching is used instead.
func (h *hungarian) cover(matchCol []int) (rowCovered, colCovered []bool) {
	rowCovered = make([]bool, h.n)
	colCovered = make([]bool, h.n)
	lines := 0

	for {
		bestRow, bestRowZeros := -1, 0
		for i := 0; i < h.n; i++ {
			if rowCovered[i] {
				continue
			}
			zeros := 0
			for j := 0; j < h.n; j++ {
				if !colCovered[j] && h.isZero(i, j) {
					zeros++
				}
			}
			if zeros > bestRowZeros {
				bestRow, bestRowZeros = i, zeros
			}
		}

		bestCol, bestColZeros := -1, 0
		for j := 0; j < h.n; j++ {
			if colCovered[j] {
				continue
			}
			zeros := 0
			for i := 0; i < h.n; i++ {
				if !rowCovered[i] && h.isZero(i, j) {
					zeros++
				}
			}
			if zeros > bestColZeros {
				bestCol, bestColZeros = j, zeros
			}
		}

		if bestRowZeros == 0 && bestColZeros == 0 {
			break
		}

		coverRow := bestRowZeros > bestColZeros
		if bestRowZeros == bestColZeros {
			coverRow = h.tie.PreferRow()
		}
		if coverRow {
			rowCovered[bestRow] = true
		} else {
			colCovered[bestCol] = true
		}
		lines++
	}

	if lines < h.n {
		return rowCovered, colCovered
	}
	return h.minimumCover(matchCol)
}

// minimumCover builds a cover with as many lines as the matching has edges (König's
// theorem): rows unreachable and columns reachable by alternating paths from unmatched rows.
func (h *hungarian) minimumCover(matchCol []int) (rowCovered, colCovered []bool) {
	matchRow := make([]int, h.n)
	for i := range matchRow {
		matchRow[i] = -1
	}
	for j, i := range matchCol {
		if i >= 0 {
			matchRow[i] = j
		}
	}

	rowVisited := make([]bool, h.n)
	colVisited := make([]bool, h.n)
	var queue []int
	for i := 0; i < h.n; i++ {
		if matchRow[i] < 0 {
			rowVisited[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for j := 0; j < h.n; j++ {
			if colVisited[j] || !h.isZero(i, j) || matchRow[i] == j {
				continue
			}
			colVisited[j] = true
			if next := matchCol[j]; next >= 0 && !rowVisited[next] {
				rowVisited[next] = true
				queue = append(queue, next)
			}
		}
	}

	rowCovered = make([]bool, h.n)
	for i := range rowCovered {
		rowCovered[i] = !rowVisited[i]
	}
	return rowCovered, colVisited
}

// adjust subtracts the smallest uncovered value from every uncovered cell and adds it
// to every cell crossed by two lines
func (h *hungarian) adjust(rowCovered, colCovered []bool) {
	lo := math.Inf(1)
	for i := 0; i < h.n; i++ {
		if rowCovered[i] {
			continue
		}
		for j := 0; j < h.n; j++ {
			if !colCovered[j] {
				lo = min(lo, h.m.At(i, j))
			}
		}
	}
	if math.IsInf(lo, 1) {
		return
	}

	for i := 0; i < h.n; i++ {
		for j := 0; j < h.n; j++ {
			switch {
			case !rowCovered[i] && !colCovered[j]:
				h.m.Set(i, j, snap(h.m.At(i, j)-lo))
			case rowCovered[i] && colCovered[j]:
				h.m.Set(i, j, h.m.At(i, j)+lo)
			}
		}
	}
}

// perfectMatchings lazily yields perfect matchings on the zero cells as row → column
// slices, one per distinct row → block mapping. The search extends one row at a time
// and only tries the lowest free zero column of each block, tracking used columns in
// a bitset and abandoning a branch as soon as some later row has no free zero.
func (h *hungarian) perfectMatchings() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		zeros := make([][]int, h.n)
		for i := 0; i < h.n; i++ {
			for j := 0; j < h.n; j++ {
				if h.isZero(i, j) {
					zeros[i] = append(zeros[i], j)
				}
			}
		}

		used := newBitset(h.n)
		cols := make([]int, h.n)

		feasible := func(from int) bool {
			for i := from; i < h.n; i++ {
				free := false
				for _, j := range zeros[i] {
					if !used.has(j) {
						free = true
						break
					}
				}
				if !free {
					return false
				}
			}
			return true
		}

		var search func(row int) bool
		search = func(row int) bool {
			if row == h.n {
				return yield(slices.Clone(cols))
			}
			lastBlock := -1
			for _, j := range zeros[row] {
				if used.has(j) || h.blocks[j] == lastBlock {
					continue
				}
				lastBlock = h.blocks[j]
				used.set(j)
				cols[row] = j
				if feasible(row+1) && !search(row+1) {
					return false
				}
				used.clear(j)
			}
			return true
		}

		search(0)
	}
}

func snap(v float64) float64 {
	if math.Abs(v) <= zeroTolerance {
		return 0
	}
	return v
}

// bitset tracks used columns
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }
func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) clear(i int)    { b[i/64] &^= 1 << (uint(i) % 64) }
