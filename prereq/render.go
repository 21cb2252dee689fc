package prereq

import "strings"

// NoPrerequisites is the exact text shown for an empty expression.
const NoPrerequisites = "No prerequisites"

// UnverifiablePrerequisites is the text shown when a course's stored
// requisite data could not be interpreted. Display paths use it so bad data
// is never mistaken for an empty expression.
const UnverifiablePrerequisites = "Prerequisites could not be verified"

// DefaultCompactLength bounds RenderCompact output for card summaries.
const DefaultCompactLength = 60

// Render converts an expression into readable AND/OR prose. Minimum-grade
// thresholds are intentionally dropped from the readable form. A child is
// parenthesized only when it is itself a multi-child boolean whose operator
// differs from its parent's; same-operator nesting is visually flattened.
func Render(expr Expr) string {
	text, _, _ := renderExpr(expr)
	if text == "" {
		return NoPrerequisites
	}
	return text
}

// RenderCompact renders the same prose truncated to max runes (with a "..."
// suffix) for card summaries. Non-positive max uses DefaultCompactLength.
func RenderCompact(expr Expr, max int) string {
	return truncate(Render(expr), max)
}

func truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultCompactLength
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// renderExpr reports the rendered text plus whether the result is a
// multi-child boolean and, if so, under which operator. Parents need both to
// decide parenthesization.
func renderExpr(expr Expr) (text string, op Operator, multi bool) {
	switch e := expr.(type) {
	case nil:
		return "", "", false

	case CourseRef:
		return e.CourseID, "", false

	case Condition:
		return conditionProse(e.Expression), "", false

	case Boolean:
		type rendered struct {
			text  string
			op    Operator
			multi bool
		}
		parts := make([]rendered, 0, len(e.Children))
		for _, child := range e.Children {
			t, childOp, childMulti := renderExpr(child)
			if t == "" {
				// Degenerate empty branches are filtered before joining.
				continue
			}
			parts = append(parts, rendered{t, childOp, childMulti})
		}

		switch len(parts) {
		case 0:
			return "", "", false
		case 1:
			// Operator elided; the lone child speaks for the node.
			return parts[0].text, parts[0].op, parts[0].multi
		}

		pieces := make([]string, len(parts))
		for i, p := range parts {
			if p.multi && p.op != e.Op {
				pieces[i] = "(" + p.text + ")"
			} else {
				pieces[i] = p.text
			}
		}
		return strings.Join(pieces, " "+string(e.Op)+" "), e.Op, true

	default:
		return "", "", false
	}
}

var conditionReplacer = strings.NewReplacer(
	"gpa", "GPA",
	"creditsEarned", "credit hours earned",
	"classYear", "class standing",
	"&&", "and",
	"||", "or",
)

func conditionProse(expression string) string {
	return conditionReplacer.Replace(expression)
}
