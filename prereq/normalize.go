package prereq

import "strings"

// Normalize converts loosely-typed requisite data, as decoded from catalog
// JSON, into a canonical expression tree. Accepted shapes:
//
//   - nil or an empty array: no prerequisites (nil Expr)
//   - a bare course-code string: a single CourseRef
//   - an {id, grade?} object: a CourseRef with an optional minimum grade
//   - a {condition} object: a Condition gate (the predicate must compile)
//   - an [operator, ...children] array where operator is "and"/"or"
//     (case-insensitive) and each child is recursively any accepted shape
//   - a flat array of objects with no leading operator: an implicit AND
//
// Empty boolean nodes collapse to nil and single-child nodes collapse to the
// child, so the simplest equivalent tree is always returned. Any other shape
// yields a *MalformedError. Normalize is pure and safe for concurrent use.
func Normalize(raw any) (Expr, error) {
	return normalize(raw, 0)
}

func normalize(raw any, depth int) (Expr, error) {
	if depth > MaxDepth {
		return nil, malformedf("nesting exceeds %d levels", MaxDepth)
	}

	switch v := raw.(type) {
	case nil:
		return nil, nil

	case string:
		id := strings.TrimSpace(v)
		if id == "" {
			return nil, malformedf("empty course code")
		}
		return CourseRef{CourseID: id}, nil

	case map[string]any:
		return normalizeObject(v)

	case []any:
		return normalizeArray(v, depth)

	default:
		return nil, malformedf("unsupported value of type %T", raw)
	}
}

func normalizeObject(obj map[string]any) (Expr, error) {
	if cond, ok := obj["condition"]; ok {
		expr, ok := cond.(string)
		if !ok || strings.TrimSpace(expr) == "" {
			return nil, malformedf("condition must be a non-empty string")
		}
		if err := CompileCondition(expr); err != nil {
			return nil, malformedf("invalid condition %q: %v", expr, err)
		}
		return Condition{Expression: expr}, nil
	}

	id := objectString(obj, "id", "courseId")
	if id == "" {
		return nil, malformedf("object has no id field")
	}
	return CourseRef{
		CourseID: id,
		MinGrade: objectString(obj, "grade", "minGrade"),
	}, nil
}

func normalizeArray(arr []any, depth int) (Expr, error) {
	if len(arr) == 0 {
		return nil, nil
	}

	op := OpAnd
	children := arr
	if head, ok := arr[0].(string); ok {
		switch strings.ToLower(strings.TrimSpace(head)) {
		case "and":
			op = OpAnd
		case "or":
			op = OpOr
		default:
			return nil, malformedf("array starts with %q, expected \"and\" or \"or\"", head)
		}
		children = arr[1:]
	}

	normalized := make([]Expr, 0, len(children))
	for _, child := range children {
		expr, err := normalize(child, depth+1)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			// Degenerate empty branch, contributes nothing.
			continue
		}
		normalized = append(normalized, expr)
	}

	switch len(normalized) {
	case 0:
		return nil, nil
	case 1:
		// A lone child replaces its parent operator node.
		return normalized[0], nil
	default:
		return Boolean{Op: op, Children: normalized}, nil
	}
}

func objectString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ToRaw converts a normalized tree back into the canonical loosely-typed form
// accepted by Normalize ([operator, {id, grade?}, ...]). It is the inverse
// used when persisting normalized trees and in round-trip tests; for any
// expression, Normalize(ToRaw(expr)) yields an equivalent tree.
func ToRaw(expr Expr) any {
	switch e := expr.(type) {
	case nil:
		return []any{}
	case CourseRef:
		obj := map[string]any{"id": e.CourseID}
		if e.MinGrade != "" {
			obj["grade"] = e.MinGrade
		}
		return obj
	case Boolean:
		out := make([]any, 0, len(e.Children)+1)
		out = append(out, strings.ToLower(string(e.Op)))
		for _, child := range e.Children {
			out = append(out, ToRaw(child))
		}
		return out
	case Condition:
		return map[string]any{"condition": e.Expression}
	default:
		return []any{}
	}
}
