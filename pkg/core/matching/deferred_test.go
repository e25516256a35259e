package matching

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

func TestSolveDeferredAcceptance_Reciprocal(t *testing.T) {
	p := reciprocalProblem()

	assignment, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, assignment["t1"])
	assert.Equal(t, []string{"s2"}, assignment["t2"])
	assert.Empty(t, assignment.Unassigned())
	_, hasBucket := assignment[model.UnassignedKey]
	assert.False(t, hasBucket, "unassigned bucket should only exist when someone is left over")
}

func TestSolveDeferredAcceptance_TrimsByTeacherPreference(t *testing.T) {
	p := oversubscribedProblem()

	assignment, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, assignment["t1"])
	assert.Equal(t, []string{"s3"}, assignment.Unassigned())
}

func TestSolveDeferredAcceptance_ReleasedStudentProposesNextRound(t *testing.T) {
	p := &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1, "t2": 2}},
			{ID: "s2", Choice: map[string]int{"t1": 1, "t2": 2}},
			{ID: "s3", Choice: map[string]int{"t2": 1, "t1": 2}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s2": 1, "s1": 2, "s3": 3}},
			{ID: "t2", Capacity: 1, Preference: map[string]int{"s1": 1, "s3": 2, "s2": 3}},
		},
	}

	// Round 1: t1 holds s2 and releases s1, t2 holds s3.
	// Round 2: s1 proposes to t2, which prefers s1 and releases s3.
	// s3 has no rank 3, so the run stops after round 2 with s3 unplaced
	// even though t1 was s3's second choice.
	assignment, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"s2"}, assignment["t1"])
	assert.Equal(t, []string{"s1"}, assignment["t2"])
	assert.Equal(t, []string{"s3"}, assignment.Unassigned())
}

func TestSolveDeferredAcceptance_NeverPlacesBeyondOwnChoiceList(t *testing.T) {
	p := &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1}},
			{ID: "s2", Choice: map[string]int{"t1": 1, "t2": 2}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s2": 1, "s1": 2}},
			{ID: "t2", Capacity: 1, Preference: map[string]int{"s1": 1, "s2": 2}},
		},
	}

	// s1 loses t1 in round 1 and has nothing to propose in round 2,
	// so the free t2 seat stays empty
	assignment, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"s2"}, assignment["t1"])
	assert.Empty(t, assignment["t2"])
	assert.Equal(t, []string{"s1"}, assignment.Unassigned())

	for _, s := range p.Students {
		for _, teacherID := range p.TeacherIDs() {
			if slices.Contains(assignment[teacherID], s.ID) {
				_, ranked := s.Choice[teacherID]
				assert.True(t, ranked, "%s placed at unranked %s", s.ID, teacherID)
			}
		}
	}
}

func TestSolveDeferredAcceptance_MissingRankStaysEligible(t *testing.T) {
	// s1 only ranks one teacher and is rejected in round 1.
	// In round 2 s1 has nothing to propose and must remain in the unassigned pool
	// rather than vanish from the result.
	p := &model.Problem{
		Students: []model.Student{
			{ID: "s1", Choice: map[string]int{"t1": 1}},
			{ID: "s2", Choice: map[string]int{"t1": 1, "t2": 2}},
			{ID: "s3", Choice: map[string]int{"t1": 1, "t2": 2}},
		},
		Teachers: []model.Teacher{
			{ID: "t1", Capacity: 1, Preference: map[string]int{"s2": 1, "s1": 2, "s3": 3}},
			{ID: "t2", Capacity: 2, Preference: map[string]int{"s1": 1, "s2": 2, "s3": 3}},
		},
	}

	assignment, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"s2"}, assignment["t1"])
	assert.Equal(t, []string{"s3"}, assignment["t2"])
	assert.Equal(t, []string{"s1"}, assignment.Unassigned())
	assert.Nil(t, firstViolation(p, assignment))
}

func TestSolveDeferredAcceptance_Deterministic(t *testing.T) {
	p := &model.Problem{
		Students: []model.Student{
			{ID: "a", Choice: map[string]int{"x": 1, "y": 2}},
			{ID: "b", Choice: map[string]int{"x": 1, "y": 2}},
			{ID: "c", Choice: map[string]int{"x": 1, "y": 2}},
			{ID: "d", Choice: map[string]int{"y": 1, "x": 2}},
		},
		Teachers: []model.Teacher{
			{ID: "x", Capacity: 2, Preference: map[string]int{"d": 1, "c": 2, "b": 3, "a": 4}},
			{ID: "y", Capacity: 1, Preference: map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}},
		},
	}

	first, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := SolveDeferredAcceptance(p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSolveDeferredAcceptance_InvalidInput(t *testing.T) {
	p := reciprocalProblem()
	p.Students[0].Choice["t9"] = 3

	_, err := SolveDeferredAcceptance(p)
	assert.ErrorIs(t, err, ErrInconsistentInput)
}

func TestSolveDeferredAcceptance_DoesNotMutateProblem(t *testing.T) {
	p := oversubscribedProblem()
	before := p.Clone()

	_, err := SolveDeferredAcceptance(p)
	require.NoError(t, err)

	assert.Equal(t, before, p)
}
