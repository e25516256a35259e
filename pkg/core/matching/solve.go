// Package matching assigns students to capacity-limited teachers from ranked
// preferences on both sides.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

// Method names a solver
type Method string

const (
	MethodDeferredAcceptance Method = "DA"
	MethodOptimalAssignment  Method = "MNK"
	MethodHungarian          Method = "HNG"
)

// Methods lists every solver in the order they are reported
var Methods = []Method{MethodDeferredAcceptance, MethodOptimalAssignment, MethodHungarian}

// IsValid reports whether the method names a known solver
func (m Method) IsValid() bool {
	switch m {
	case MethodDeferredAcceptance, MethodOptimalAssignment, MethodHungarian:
		return true
	}
	return false
}

// ParseMethod converts a method name such as "mnk" into a Method
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(name)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown method '%s' (expected one of %v)", ErrConfiguration, name, Methods)
	}
	return m, nil
}

// Options configures a solver run. The zero value uses every default.
type Options struct {
	Normalize NormalizeOptions

	// TieBreaker resolves Cover step ties in the Hungarian enumerator (default FixedTieBreaker)
	TieBreaker TieBreaker

	// MaxMatchings caps how many optimal matchings the Hungarian enumerator examines (0 = no cap)
	MaxMatchings int
}

// Result is the outcome of one solver run
type Result struct {
	Method     Method
	Assignment model.Assignment
	// Score is the sum of squared dissatisfaction (lower is better)
	Score float64
	// Optima counts the distinct optimal assignments found, HNG only
	Optima int
}

func newResult(method Method, p *model.Problem, assignment model.Assignment, opts NormalizeOptions) (*Result, error) {
	score, err := Score(assignment, p, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Method: method, Assignment: assignment, Score: score}, nil
}

// Solve dispatches to the solver named by method and scores its assignment
func Solve(p *model.Problem, method Method, opts Options) (*Result, error) {
	switch method {
	case MethodDeferredAcceptance:
		assignment, err := SolveDeferredAcceptance(p)
		if err != nil {
			return nil, err
		}
		return newResult(method, p, assignment, opts.Normalize)
	case MethodOptimalAssignment:
		return SolveOptimalAssignment(p, opts)
	case MethodHungarian:
		return SolveHungarian(p, opts)
	default:
		return nil, fmt.Errorf("%w: unknown method '%s'", ErrConfiguration, method)
	}
}

// canonicalKey identifies an assignment independently of seat identity and list order:
// teachers in problem order, each with its sorted students, then the unassigned bucket.
func canonicalKey(p *model.Problem, assignment model.Assignment) string {
	var b strings.Builder
	writeBucket := func(students []string) {
		sorted := append([]string(nil), students...)
		sort.Strings(sorted)
		b.WriteString(strings.Join(sorted, "\x1f"))
		b.WriteByte('\x1e')
	}
	for _, t := range p.Teachers {
		writeBucket(assignment[t.ID])
	}
	writeBucket(assignment.Unassigned())
	return b.String()
}

func sortedKeys(assignment model.Assignment) []string {
	keys := make([]string, 0, len(assignment))
	for k := range assignment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
