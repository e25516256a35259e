package matching

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// SolveOptimalAssignment finds one minimum-cost matching between students and seats.
//
// Students beyond the total capacity are left unassigned; which ones is part of the
// optimisation. The result is checked with EnforceCapacity and any eviction is
// reported as ErrCapacityOverflow.
func SolveOptimalAssignment(p *model.Problem, opts Options) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := p.ChoiceLimit(); err != nil {
		return nil, err
	}

	seats := ExpandSeats(p)
	M, err := seatCostMatrix(p, seats, opts.Normalize)
	if err != nil {
		return nil, err
	}

	rowToSeat := minCostAssignment(M)
	// no seats means an empty matrix, and every student is unplaced
	for len(rowToSeat) < len(p.Students) {
		rowToSeat = append(rowToSeat, -1)
	}
	assignment, err := placeFromSeats(p, seats, rowToSeat)
	if err != nil {
		return nil, err
	}

	return newResult(MethodOptimalAssignment, p, assignment, opts.Normalize)
}

// minCostAssignment solves the rectangular assignment problem for an n×m cost matrix
// with Kuhn-Munkres potentials (Jonker-Volgenant shortest augmenting paths).
// It returns assignment[i] = column of row i, or -1 when row i is matched to padding.
//
// The matrix is padded to square with zero-cost cells. Padding cost is the same for
// every row, so it does not change which real cells are optimal.
func minCostAssignment(cost mat.Matrix) []int {
	n, m := cost.Dims()
	if n == 0 {
		return nil
	}
	dim := max(n, m)

	at := func(i, j int) float64 {
		if i < n && j < m {
			return cost.At(i, j)
		}
		return 0
	}

	// 1-indexed internally; index 0 is the virtual column
	const inf = math.MaxFloat64 / 2
	u := make([]float64, dim+1) // row potentials
	v := make([]float64, dim+1) // column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // way[j] = previous column on the augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := at(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				break
			}

			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// augment along the path
		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	for j := 1; j <= dim; j++ {
		row := p[j] - 1
		if row >= 0 && row < n && j-1 < m {
			assignment[row] = j - 1
		}
	}
	return assignment
}
