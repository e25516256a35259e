package matching

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// Seat is one of a teacher's indistinguishable capacity slots
type Seat struct {
	TeacherID string
	Index     int
}

// ExpandSeats lists every seat of every teacher, teachers in problem order
func ExpandSeats(p *model.Problem) []Seat {
	seats := make([]Seat, 0, p.TotalCapacity())
	for _, t := range p.Teachers {
		for i := 0; i < t.Capacity; i++ {
			seats = append(seats, Seat{TeacherID: t.ID, Index: i})
		}
	}
	return seats
}

// SeatTargets returns the owning teacher ID of each seat, for use as normalizer targets
func SeatTargets(seats []Seat) []string {
	targets := make([]string, len(seats))
	for i, seat := range seats {
		targets[i] = seat.TeacherID
	}
	return targets
}

// seatCostMatrix builds the students × seats cost matrix shared by the assignment solvers
func seatCostMatrix(p *model.Problem, seats []Seat, opts NormalizeOptions) (*mat.Dense, error) {
	W, A, err := Normalize(p, p.StudentIDs(), SeatTargets(seats), opts)
	if err != nil {
		return nil, err
	}
	return CostMatrix(W, A)
}

// assignmentFromSeats converts row → seat column indices into a teacher assignment.
// Rows with a negative column are placed in the unassigned bucket.
func assignmentFromSeats(p *model.Problem, seats []Seat, rowToSeat []int) model.Assignment {
	assignment := model.NewAssignment(p)
	for s, col := range rowToSeat {
		studentID := p.Students[s].ID
		if col < 0 {
			assignment.AddUnassigned(studentID)
			continue
		}
		teacherID := seats[col].TeacherID
		assignment[teacherID] = append(assignment[teacherID], studentID)
	}
	return assignment
}

// placeFromSeats converts a seat matching into an assignment and runs it through
// EnforceCapacity. Any eviction is reported as ErrCapacityOverflow.
func placeFromSeats(p *model.Problem, seats []Seat, rowToSeat []int) (model.Assignment, error) {
	assignment, evicted := EnforceCapacity(p, assignmentFromSeats(p, seats, rowToSeat))
	if len(evicted) > 0 {
		return nil, fmt.Errorf("%w: teachers %v exceeded capacity", ErrCapacityOverflow, evicted)
	}
	return assignment, nil
}

// seatBlocks numbers each seat by its teacher. Seats of one teacher share a number
// and sit next to each other, as ExpandSeats lays them out.
func seatBlocks(seats []Seat) []int {
	blocks := make([]int, len(seats))
	block := -1
	for i, seat := range seats {
		if i == 0 || seat.TeacherID != seats[i-1].TeacherID {
			block++
		}
		blocks[i] = block
	}
	return blocks
}
