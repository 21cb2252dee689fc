// Package prereq implements the prerequisite logic engine: normalization of
// raw catalog requisite data into an expression tree, evaluation of that tree
// against a student's coursework, human-readable rendering, and course-ID
// extraction.
package prereq

// Operator combines child expressions in a Boolean node.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
)

// MaxDepth is the hard cap on expression nesting. Catalog trees are shallow
// (four levels at most in practice); anything deeper is treated as malformed
// rather than risking unbounded recursion on bad data.
const MaxDepth = 25

// Expr is a prerequisite expression. A nil Expr means "no prerequisites" and
// is always satisfied. The concrete variants are CourseRef, Boolean and
// Condition; consumers dispatch with an exhaustive type switch.
type Expr interface {
	isExpr()
}

// CourseRef is a leaf referencing a single course by its canonical
// "SUBJECT NUMBER" identifier (e.g. "CS 1331"). MinGrade, when non-empty, is
// the minimum letter grade required; empty means any passing grade.
type CourseRef struct {
	CourseID string `json:"courseId"`
	MinGrade string `json:"minGrade,omitempty"`
}

func (CourseRef) isExpr() {}

// Boolean is an AND/OR combinator over one or more child expressions.
type Boolean struct {
	Op       Operator
	Children []Expr
}

func (Boolean) isExpr() {}

// Condition is a non-course gate (GPA, credit hours, class standing)
// expressed as a CEL predicate over the evaluation context, e.g.
// "gpa >= 3.0" or "creditsEarned >= 60 && classYear >= 3".
type Condition struct {
	Expression string
}

func (Condition) isExpr() {}

// Result is the outcome of evaluating an expression against a Context.
type Result struct {
	// Satisfied reports whether the expression as a whole is met.
	Satisfied bool

	// Missing lists the course leaves blocking satisfaction. For AND nodes
	// it is the complete set of unmet leaves; for OR nodes it is the
	// representative set of the cheapest branch (fewest courses needed).
	Missing []CourseRef

	// SatisfiedBy lists the course IDs that contributed to satisfaction.
	SatisfiedBy []string

	// Warnings carries soft diagnostics: unverifiable condition gates and
	// notes that alternative OR branches exist.
	Warnings []string

	// Unverifiable is set when the expression could not be evaluated at all
	// (depth overflow on malformed data). Callers must surface this as
	// "prerequisites could not be verified", never as satisfied or failed.
	Unverifiable bool
}
