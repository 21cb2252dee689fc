package catalog_test

import (
	"testing"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
	"github.com/jlouisugbo/gt-course-planner-sub006/prereq"
)

// nestedRequisites wraps a single course leaf in n operator-array levels.
func nestedRequisites(n int) any {
	var v any = map[string]any{"id": "CS 1331"}
	for i := 0; i < n; i++ {
		v = []any{"and", v}
	}
	return v
}

// Payloads the upload boundary accepts must normalize; the validator is
// allowed to be stricter at the top level, never looser.
func TestUploadValidationAgreesWithNormalizer(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"empty", []any{}},
		{"flat objects", []any{
			map[string]any{"id": "CS 1331"},
			map[string]any{"id": "MATH 1554", "grade": "C"},
		}},
		{"explicit or", []any{"or",
			map[string]any{"id": "MATH 1553"},
			map[string]any{"id": "MATH 1554"},
		}},
		{"condition gate", []any{"and",
			map[string]any{"id": "CS 1331"},
			map[string]any{"condition": "gpa >= 3.0"},
		}},
		{"broken condition", []any{map[string]any{"condition": "gpa >>> 3"}}},
		{"unknown condition variable", []any{map[string]any{"condition": "age > 18"}}},
		{"bad operator", []any{"xor", map[string]any{"id": "CS 1331"}}},
		{"nesting at cap", nestedRequisites(prereq.MaxDepth)},
		{"nesting past cap", nestedRequisites(prereq.MaxDepth + 1)},
		{"deep nesting", nestedRequisites(prereq.MaxDepth + 5)},
	}

	for _, tc := range cases {
		uploadOK := catalog.ValidateRequisites(tc.raw) == nil
		_, normErr := prereq.Normalize(tc.raw)
		normalizeOK := normErr == nil

		if uploadOK != normalizeOK {
			t.Errorf("%s: upload accepts=%v, normalizer accepts=%v",
				tc.name, uploadOK, normalizeOK)
		}
	}
}

func TestUploadValidationRejectsExcessNesting(t *testing.T) {
	if err := catalog.ValidateRequisites(nestedRequisites(prereq.MaxDepth)); err != nil {
		t.Errorf("nesting at the cap should be accepted: %v", err)
	}
	err := catalog.ValidateRequisites(nestedRequisites(prereq.MaxDepth + 1))
	if err == nil {
		t.Fatal("nesting past the cap should be rejected")
	}
}

func TestUploadValidationCompilesConditions(t *testing.T) {
	good := []any{map[string]any{"condition": "creditsEarned >= 60"}}
	if err := catalog.ValidateRequisites(good); err != nil {
		t.Errorf("compilable condition rejected: %v", err)
	}

	bad := []any{map[string]any{"condition": "gpa >>> 3"}}
	if err := catalog.ValidateRequisites(bad); err == nil {
		t.Error("uncompilable condition should be rejected at upload")
	}
}

// Deeply nested data is rejected before it is persisted, so the engine never
// loads it as unverifiable later.
func TestApplyUploadRejectsExcessNesting(t *testing.T) {
	store := catalog.NewInMemoryStore()
	if err := store.Add(&catalog.Course{Code: "CS 1332"}); err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}

	report := catalog.ApplyUpload(store, map[string]catalog.RequisiteUpdate{
		"CS 1332": {Prerequisites: nestedRequisites(prereq.MaxDepth + 5)},
	})
	if report.Invalid != 1 || report.Updated != 0 {
		t.Errorf("report = %+v, want the entry rejected", report)
	}

	course, err := store.Get("CS 1332")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(course.Prerequisites) != 0 {
		t.Error("rejected data must not be persisted")
	}

	engine, err := prereq.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	if _, bad := engine.Unverifiable("CS 1332"); bad {
		t.Error("course should not carry unverifiable data after a rejected upload")
	}
}
