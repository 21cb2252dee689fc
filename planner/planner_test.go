package planner

import (
	"encoding/json"
	"testing"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
	"github.com/jlouisugbo/gt-course-planner-sub006/prereq"
)

func TestRecommendOneSemesterPrior(t *testing.T) {
	missing := []prereq.CourseRef{
		{CourseID: "CS 1331"},
		{CourseID: "MATH 1554", MinGrade: "C"},
	}
	ctx := &prereq.Context{TargetSemester: 4}

	suggestions := Recommend(missing, ctx)

	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	for course, semester := range suggestions {
		if semester != 3 {
			t.Errorf("suggestion for %s = %d, want 3 (one before target)", course, semester)
		}
	}
}

func TestRecommendFloorsAtFirstSemester(t *testing.T) {
	missing := []prereq.CourseRef{{CourseID: "CS 1331"}}

	for _, target := range []int{1, 0} {
		ctx := &prereq.Context{TargetSemester: target}
		suggestions := Recommend(missing, ctx)
		if suggestions["CS 1331"] != 1 {
			t.Errorf("target %d: suggestion = %d, want floor of 1", target, suggestions["CS 1331"])
		}
	}
}

func TestRecommendEmptyMissing(t *testing.T) {
	suggestions := Recommend(nil, &prereq.Context{TargetSemester: 3})
	if len(suggestions) != 0 {
		t.Errorf("got %v, want no suggestions for nothing missing", suggestions)
	}
}

func chainEngine(t *testing.T) *prereq.Engine {
	t.Helper()
	store := catalog.NewInMemoryStore()

	// CS 3510 needs CS 1332, which needs CS 1331. Nothing is completed, so
	// the whole chain must be placed.
	courses := []*catalog.Course{
		{Code: "CS 1331"},
		{Code: "CS 1332", Prerequisites: json.RawMessage(`[{"id": "CS 1331"}]`)},
		{Code: "CS 3510", Prerequisites: json.RawMessage(`[{"id": "CS 1332"}]`)},
	}
	for _, course := range courses {
		if err := store.Add(course); err != nil {
			t.Fatalf("failed to seed course %s: %v", course.Code, err)
		}
	}

	engine, err := prereq.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}

func TestRecommendChainResolvesPrerequisiteChain(t *testing.T) {
	engine := chainEngine(t)
	ctx := &prereq.Context{TargetSemester: 5}

	suggestions, err := RecommendChain(engine, "CS 3510", ctx)
	if err != nil {
		t.Fatalf("RecommendChain() failed: %v", err)
	}

	want := map[string]int{"CS 1332": 4, "CS 1331": 3}
	if len(suggestions) != len(want) {
		t.Fatalf("suggestions = %v, want %v", suggestions, want)
	}
	for course, semester := range want {
		if suggestions[course] != semester {
			t.Errorf("%s placed in %d, want %d", course, suggestions[course], semester)
		}
	}
}

func TestRecommendChainFloorsAtFirstSemester(t *testing.T) {
	engine := chainEngine(t)

	// Target 2: the direct prerequisite lands in 1 and so must its own.
	suggestions, err := RecommendChain(engine, "CS 3510", &prereq.Context{TargetSemester: 2})
	if err != nil {
		t.Fatalf("RecommendChain() failed: %v", err)
	}
	if suggestions["CS 1332"] != 1 || suggestions["CS 1331"] != 1 {
		t.Errorf("suggestions = %v, want both floored at semester 1", suggestions)
	}
}

func TestRecommendChainSatisfiedCourse(t *testing.T) {
	engine := chainEngine(t)
	ctx := &prereq.Context{
		Completed:      prereq.SetOf([]string{"CS 1332"}),
		TargetSemester: 5,
	}

	suggestions, err := RecommendChain(engine, "CS 3510", ctx)
	if err != nil {
		t.Fatalf("RecommendChain() failed: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("suggestions = %v, want none when prerequisites are met", suggestions)
	}
}

func TestRecommendChainUnknownCourse(t *testing.T) {
	engine := chainEngine(t)

	if _, err := RecommendChain(engine, "NOPE 0000", &prereq.Context{TargetSemester: 3}); err == nil {
		t.Error("RecommendChain() on an unknown course should fail")
	}
}

func TestRecommendChainSurvivesRequisiteCycle(t *testing.T) {
	store := catalog.NewInMemoryStore()
	courses := []*catalog.Course{
		{Code: "A 1000", Prerequisites: json.RawMessage(`[{"id": "B 1000"}]`)},
		{Code: "B 1000", Prerequisites: json.RawMessage(`[{"id": "A 1000"}]`)},
	}
	for _, course := range courses {
		if err := store.Add(course); err != nil {
			t.Fatalf("failed to seed course %s: %v", course.Code, err)
		}
	}
	engine, err := prereq.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	// Cyclic catalog data must terminate, with both courses placed somewhere.
	suggestions, err := RecommendChain(engine, "A 1000", &prereq.Context{TargetSemester: 4})
	if err != nil {
		t.Fatalf("RecommendChain() failed: %v", err)
	}
	if len(suggestions) != 2 {
		t.Errorf("suggestions = %v, want both cycle members placed", suggestions)
	}
}
