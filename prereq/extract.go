package prereq

import "sort"

// ExtractCourseIDs flattens a tree into the deduplicated, lexicographically
// sorted list of course IDs it references. Extraction is structure-blind: a
// course under an OR counts the same as one under an AND. Condition gates
// reference no courses and contribute nothing.
func ExtractCourseIDs(expr Expr) []string {
	seen := make(map[string]bool)
	collectCourseIDs(expr, seen)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func collectCourseIDs(expr Expr, seen map[string]bool) {
	switch e := expr.(type) {
	case CourseRef:
		seen[e.CourseID] = true
	case Boolean:
		for _, child := range e.Children {
			collectCourseIDs(child, seen)
		}
	}
}
