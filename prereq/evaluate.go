package prereq

import (
	"fmt"
	"math"
)

// Context is the evaluation input, assembled by the caller from the student's
// live academic record. It is read-only for the duration of an evaluation.
type Context struct {
	Completed  map[string]bool
	InProgress map[string]bool

	// PlannedBySemester maps semester ordinals to the course IDs planned in
	// them. Only semesters strictly before TargetSemester count toward
	// satisfaction.
	PlannedBySemester map[int]map[string]bool
	TargetSemester    int

	// Optional numeric facts consumed by Condition gates. A nil field means
	// the record does not carry that fact; gates referencing it become
	// unverifiable rather than unmet.
	GPA           *float64
	CreditsEarned *int
	ClassYear     *int

	// GradesByCourse optionally maps completed course IDs to earned letter
	// grades. When nil (the baseline), minimum-grade constraints degrade to
	// a course-taken check; when supplied, grade thresholds are enforced.
	GradesByCourse map[string]string
}

// SetOf builds a membership set from a slice of course IDs.
func SetOf(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// SatisfiedSet returns the effective satisfied set: completed courses,
// in-progress courses, and courses planned in semesters before the target.
func (ctx *Context) SatisfiedSet() map[string]bool {
	set := make(map[string]bool, len(ctx.Completed)+len(ctx.InProgress))
	for id := range ctx.Completed {
		set[id] = true
	}
	for id := range ctx.InProgress {
		set[id] = true
	}
	for semester, planned := range ctx.PlannedBySemester {
		if semester >= ctx.TargetSemester {
			continue
		}
		for id := range planned {
			set[id] = true
		}
	}
	return set
}

// Letter grades in descending order of rank. Grades outside this scale
// (S/U, W, transfer markers) are not ranked and skip the threshold check.
var gradeRank = map[string]int{"A": 4, "B": 3, "C": 2, "D": 1, "F": 0}

// Evaluate walks an expression against the context and reports whether it is
// satisfied, which course leaves are blocking, and any soft warnings. A nil
// expression is trivially satisfied. Evaluate never panics on malformed
// trees: depth overflow yields an unverifiable result instead.
func Evaluate(expr Expr, ctx *Context) *Result {
	ev := &evaluator{ctx: ctx, satisfied: ctx.SatisfiedSet()}
	res, ok := ev.eval(expr, 0)
	if !ok {
		return &Result{
			Unverifiable: true,
			Warnings:     []string{"unable to verify prerequisites"},
		}
	}
	return res
}

type evaluator struct {
	ctx       *Context
	satisfied map[string]bool
}

// eval returns ok=false when the tree nests past MaxDepth; the failure
// propagates to the root so the whole evaluation is reported unverifiable.
func (ev *evaluator) eval(expr Expr, depth int) (*Result, bool) {
	if depth > MaxDepth {
		return nil, false
	}

	switch e := expr.(type) {
	case nil:
		return &Result{Satisfied: true}, true
	case CourseRef:
		return ev.evalCourse(e), true
	case Condition:
		return ev.evalGate(e), true
	case Boolean:
		switch e.Op {
		case OpOr:
			return ev.evalOr(e, depth)
		default:
			return ev.evalAnd(e, depth)
		}
	default:
		return nil, false
	}
}

func (ev *evaluator) evalCourse(ref CourseRef) *Result {
	if !ev.satisfied[ref.CourseID] {
		return &Result{Missing: []CourseRef{ref}}
	}

	// Grade-aware extension: only enforced when the caller supplies grade
	// data and both grades sit on the letter scale.
	if ref.MinGrade != "" && ev.ctx.GradesByCourse != nil {
		if earned, ok := ev.ctx.GradesByCourse[ref.CourseID]; ok {
			earnedRank, okEarned := gradeRank[earned]
			minRank, okMin := gradeRank[ref.MinGrade]
			if okEarned && okMin && earnedRank < minRank {
				return &Result{
					Missing: []CourseRef{ref},
					Warnings: []string{fmt.Sprintf(
						"%s was taken but a grade of %s or better is required (earned %s)",
						ref.CourseID, ref.MinGrade, earned)},
				}
			}
		}
	}

	return &Result{Satisfied: true, SatisfiedBy: []string{ref.CourseID}}
}

func (ev *evaluator) evalGate(cond Condition) *Result {
	met, verifiable := evalCondition(cond, ev.ctx)
	if !verifiable {
		// Fail-visible: proceed as satisfied but tell the caller the gate
		// could not be checked with the record on hand.
		return &Result{
			Satisfied: true,
			Warnings: []string{fmt.Sprintf(
				"requirement %q could not be verified with the information provided",
				cond.Expression)},
		}
	}
	if !met {
		return &Result{
			Warnings: []string{fmt.Sprintf("requirement %q is not met", cond.Expression)},
		}
	}
	return &Result{Satisfied: true}
}

// evalAnd aggregates every child even after the first failure: the boolean
// short-circuits, the missing list must stay complete.
func (ev *evaluator) evalAnd(node Boolean, depth int) (*Result, bool) {
	out := &Result{Satisfied: true}
	seen := make(map[string]bool)

	for _, child := range node.Children {
		res, ok := ev.eval(child, depth+1)
		if !ok {
			return nil, false
		}
		if !res.Satisfied {
			out.Satisfied = false
		}
		for _, ref := range res.Missing {
			if seen[ref.CourseID] {
				continue
			}
			seen[ref.CourseID] = true
			out.Missing = append(out.Missing, ref)
		}
		out.SatisfiedBy = append(out.SatisfiedBy, res.SatisfiedBy...)
		out.Warnings = append(out.Warnings, res.Warnings...)
	}
	return out, true
}

// evalOr picks the cheapest unsatisfied branch as the representative missing
// set: the fewest additional courses to show the student. Ties go to the
// first-listed child so output is deterministic. Branches unmet for
// non-course reasons (a failed condition gate has nothing to schedule) rank
// last.
func (ev *evaluator) evalOr(node Boolean, depth int) (*Result, bool) {
	var best *Result
	bestCost := math.MaxInt

	for _, child := range node.Children {
		res, ok := ev.eval(child, depth+1)
		if !ok {
			return nil, false
		}
		if res.Satisfied {
			return res, true
		}
		cost := len(res.Missing)
		if cost == 0 {
			cost = math.MaxInt - 1
		}
		if cost < bestCost {
			best, bestCost = res, cost
		}
	}

	if best == nil {
		// No children: trivially satisfied, same convention as empty input.
		return &Result{Satisfied: true}, true
	}
	if len(node.Children) > 1 {
		best.Warnings = append(best.Warnings,
			fmt.Sprintf("alternative prerequisite paths exist (%d options)", len(node.Children)))
	}
	return best, true
}
