package prereq

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
)

func seedStore(t *testing.T) *catalog.InMemoryStore {
	t.Helper()
	store := catalog.NewInMemoryStore()

	courses := []*catalog.Course{
		{Code: "CS 1331", Title: "Intro to Object-Oriented Programming"},
		{Code: "MATH 1554", Title: "Linear Algebra"},
		{
			Code:          "CS 1332",
			Title:         "Data Structures and Algorithms",
			Prerequisites: json.RawMessage(`["and", {"id": "CS 1331", "grade": "C"}]`),
		},
		{
			Code:           "CS 2110",
			Title:          "Computer Organization",
			Prerequisites:  json.RawMessage(`["and", {"id": "CS 1331"}, ["or", {"id": "MATH 1553"}, {"id": "MATH 1554"}]]`),
			Postrequisites: []string{"CS 2200"},
		},
		{
			Code:          "BAD 1000",
			Title:         "Corrupt Catalog Row",
			Prerequisites: json.RawMessage(`{"foo": "bar"}`),
		},
	}

	for _, course := range courses {
		if err := store.Add(course); err != nil {
			t.Fatalf("failed to seed course %s: %v", course.Code, err)
		}
	}
	return store
}

func TestNewEngineLoadsCatalog(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	text, err := engine.Describe("CS 2110")
	if err != nil {
		t.Fatalf("Describe() failed: %v", err)
	}
	want := "CS 1331 AND (MATH 1553 OR MATH 1554)"
	if text != want {
		t.Errorf("Describe() = %q, want %q", text, want)
	}
}

func TestEngineCheck(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	result, err := engine.Check("CS 2110", ctxWithCompleted("CS 1331", "MATH 1554"))
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if !result.Satisfied {
		t.Errorf("expected satisfied, missing %v", missingIDs(result))
	}

	result, err = engine.Check("CS 2110", ctxWithCompleted())
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if result.Satisfied {
		t.Error("nothing completed, expected unsatisfied")
	}
}

func TestEngineCheckUnknownCourse(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	if _, err := engine.Check("NOPE 0000", ctxWithCompleted()); err == nil {
		t.Error("Check() on an unknown course should fail")
	}
}

// A course with corrupt requisite data never aborts the load and never
// claims an outcome: checks come back unverifiable.
func TestEngineMalformedCourseIsUnverifiable(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() should tolerate malformed courses, got: %v", err)
	}

	result, err := engine.Check("BAD 1000", ctxWithCompleted())
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if !result.Unverifiable {
		t.Error("malformed course should check as unverifiable")
	}
	if result.Satisfied {
		t.Error("unverifiable must not claim satisfaction")
	}
}

// Display paths must not present corrupt requisite data as an absence of
// prerequisites.
func TestEngineDescribeMalformedCourse(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	text, err := engine.Describe("BAD 1000")
	if err != nil {
		t.Fatalf("Describe() failed: %v", err)
	}
	if text != UnverifiablePrerequisites {
		t.Errorf("Describe() = %q, want %q", text, UnverifiablePrerequisites)
	}
	if text == NoPrerequisites {
		t.Error("malformed course must not read as having no prerequisites")
	}

	compact, err := engine.DescribeCompact("BAD 1000", DefaultCompactLength)
	if err != nil {
		t.Fatalf("DescribeCompact() failed: %v", err)
	}
	if compact != UnverifiablePrerequisites {
		t.Errorf("DescribeCompact() = %q, want %q", compact, UnverifiablePrerequisites)
	}

	reason, bad := engine.Unverifiable("BAD 1000")
	if !bad || reason == "" {
		t.Errorf("Unverifiable() = (%q, %v), want the recorded failure reason", reason, bad)
	}
	if _, bad := engine.Unverifiable("CS 2110"); bad {
		t.Error("well-formed course should not report as unverifiable")
	}
}

func TestEngineDescribeEmptyPrerequisites(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	text, err := engine.Describe("CS 1331")
	if err != nil {
		t.Fatalf("Describe() failed: %v", err)
	}
	if text != NoPrerequisites {
		t.Errorf("Describe() = %q, want %q", text, NoPrerequisites)
	}
}

func TestEngineCheckAllSkipsUnknown(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	results := engine.CheckAll([]string{"CS 1332", "NOPE 0000", "CS 2110"}, ctxWithCompleted("CS 1331"))
	if len(results) != 2 {
		t.Errorf("got %d results, want 2 (unknown course skipped)", len(results))
	}
	if _, ok := results["NOPE 0000"]; ok {
		t.Error("unknown course should not appear in results")
	}
}

func TestEngineCourseIDsAndPostrequisites(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	ids, err := engine.CourseIDs("CS 2110")
	if err != nil {
		t.Fatalf("CourseIDs() failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != "CS 1331" {
		t.Errorf("CourseIDs() = %v, want sorted [CS 1331 MATH 1553 MATH 1554]", ids)
	}

	post, err := engine.Postrequisites("CS 2110")
	if err != nil {
		t.Fatalf("Postrequisites() failed: %v", err)
	}
	if len(post) != 1 || post[0] != "CS 2200" {
		t.Errorf("Postrequisites() = %v, want [CS 2200]", post)
	}
}

func TestEngineInvalidateCoursePicksUpNewRequisites(t *testing.T) {
	store := seedStore(t)
	engine, err := NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	newPrereqs := json.RawMessage(`["and", {"id": "CS 1332"}]`)
	if err := store.UpdateRequisites("CS 2110", newPrereqs, nil); err != nil {
		t.Fatalf("UpdateRequisites() failed: %v", err)
	}
	if err := engine.InvalidateCourse("CS 2110"); err != nil {
		t.Fatalf("InvalidateCourse() failed: %v", err)
	}

	text, err := engine.Describe("CS 2110")
	if err != nil {
		t.Fatalf("Describe() failed: %v", err)
	}
	if text != "CS 1332" {
		t.Errorf("Describe() = %q, want %q after invalidation", text, "CS 1332")
	}
}

// countingCache records traffic so cache injection can be observed.
type countingCache struct {
	inner catalog.Cache
	sets  int
	gets  int
}

func (c *countingCache) Get() []*catalog.Course {
	c.gets++
	return c.inner.Get()
}

func (c *countingCache) Set(courses []*catalog.Course) {
	c.sets++
	c.inner.Set(courses)
}

func (c *countingCache) Invalidate() { c.inner.Invalidate() }
func (c *countingCache) IsValid() bool {
	return c.inner.IsValid()
}

func TestNewEngineWithCacheUsesSuppliedCache(t *testing.T) {
	cache := &countingCache{
		inner: catalog.NewInMemoryCache(catalog.CacheConfig{TTL: time.Minute}),
	}
	engine, err := NewEngineWithCache(seedStore(t), cache)
	if err != nil {
		t.Fatalf("NewEngineWithCache() failed: %v", err)
	}
	if cache.sets == 0 {
		t.Fatal("initial load should populate the supplied cache")
	}

	if _, err := engine.Courses(); err != nil {
		t.Fatalf("Courses() failed: %v", err)
	}
	if cache.gets == 0 {
		t.Error("Courses() should read through the supplied cache")
	}
	if !cache.IsValid() {
		t.Error("cache should hold live data within its TTL")
	}
}

func TestEngineConcurrentChecks(t *testing.T) {
	engine, err := NewEngine(seedStore(t))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx := ctxWithCompleted("CS 1331", "MATH 1554")
			if _, err := engine.Check("CS 2110", ctx); err != nil {
				t.Errorf("concurrent Check() failed: %v", err)
			}
			if n%10 == 0 {
				if err := engine.Reload(); err != nil {
					t.Errorf("concurrent Reload() failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
}
