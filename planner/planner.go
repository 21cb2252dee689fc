// Package planner turns evaluation failures into scheduling suggestions:
// which missing courses to place in which semester.
package planner

import (
	"github.com/jlouisugbo/gt-course-planner-sub006/prereq"
)

// Recommend proposes a semester for each missing course. The heuristic is
// deliberately shallow: every missing course goes one semester before the
// target, floored at semester 1. It does not resolve the missing course's
// own prerequisites or respect credit-load limits; see RecommendChain for
// the chain-aware variant.
func Recommend(missing []prereq.CourseRef, ctx *prereq.Context) map[string]int {
	semester := ctx.TargetSemester - 1
	if semester < 1 {
		semester = 1
	}

	suggestions := make(map[string]int, len(missing))
	for _, ref := range missing {
		suggestions[ref.CourseID] = semester
	}
	return suggestions
}

// RecommendChain resolves missing-prerequisite chains through the engine:
// each missing course is placed one semester before the course that needs
// it, then its own unmet prerequisites are placed a semester earlier still,
// floored at semester 1. Courses reached by several paths keep their
// earliest placement. Depth is capped alongside the expression depth limit,
// so requisite cycles in bad catalog data cannot spin forever.
func RecommendChain(eng *prereq.Engine, courseID string, ctx *prereq.Context) (map[string]int, error) {
	base, err := eng.Check(courseID, ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make(map[string]int)
	if base.Unverifiable || base.Satisfied {
		return suggestions, nil
	}

	semester := ctx.TargetSemester - 1
	if semester < 1 {
		semester = 1
	}
	placeChain(eng, ctx, base.Missing, semester, suggestions, 0)
	return suggestions, nil
}

func placeChain(eng *prereq.Engine, ctx *prereq.Context, missing []prereq.CourseRef, semester int, out map[string]int, depth int) {
	if depth > prereq.MaxDepth {
		return
	}

	for _, ref := range missing {
		if placed, ok := out[ref.CourseID]; ok && placed <= semester {
			continue
		}
		out[ref.CourseID] = semester

		// The course now sits in `semester`; its own prerequisites must be
		// satisfied by then, so evaluate with that semester as the target.
		shifted := *ctx
		shifted.TargetSemester = semester
		result, err := eng.Check(ref.CourseID, &shifted)
		if err != nil || result.Unverifiable || result.Satisfied {
			// Not in the catalog, unverifiable, or nothing deeper to place.
			continue
		}

		earlier := semester - 1
		if earlier < 1 {
			earlier = 1
		}
		placeChain(eng, ctx, result.Missing, earlier, out, depth+1)
	}
}
