package prereq

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
	"github.com/jlouisugbo/gt-course-planner-sub006/internal/logger"
)

// Engine memoizes normalized prerequisite trees per course over a catalog
// store. Trees are rebuilt on Reload and per-course on InvalidateCourse;
// reads are lock-cheap so many evaluations can run concurrently.
//
// Courses whose requisite data fails to normalize are kept in a malformed
// set: checking them yields an unverifiable result instead of an error, and
// a catalog load never aborts because one course has bad data.
type Engine struct {
	store catalog.Store
	cache catalog.Cache

	trees     map[string]Expr
	malformed map[string]string // course code -> normalize failure reason
	postreqs  map[string][]string
	mu        sync.RWMutex
}

// NewEngine builds an engine with the default invalidate-on-mutation cache
// and loads every course's tree from the store.
func NewEngine(store catalog.Store) (*Engine, error) {
	return NewEngineWithCache(store, catalog.NewInMemoryCache(catalog.DefaultCacheConfig()))
}

// NewEngineWithCache builds an engine over a caller-supplied course cache,
// used when the cache TTL comes from configuration.
func NewEngineWithCache(store catalog.Store, cache catalog.Cache) (*Engine, error) {
	en := &Engine{store: store, cache: cache}
	if err := en.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return en, nil
}

// Reload re-reads the whole catalog and renormalizes every tree. Malformed
// courses are recorded and logged, not fatal.
func (en *Engine) Reload() error {
	courses, err := en.store.List()
	if err != nil {
		return err
	}

	trees := make(map[string]Expr, len(courses))
	malformed := make(map[string]string)
	postreqs := make(map[string][]string, len(courses))

	for _, course := range courses {
		postreqs[course.Code] = course.Postrequisites

		expr, err := normalizeRaw(course.Prerequisites)
		if err != nil {
			malformed[course.Code] = err.Error()
			trees[course.Code] = nil
			logger.Warn("course has unusable prerequisite data, treating as unknown",
				"course", course.Code, "error", err)
			continue
		}
		trees[course.Code] = expr
	}

	en.mu.Lock()
	en.trees = trees
	en.malformed = malformed
	en.postreqs = postreqs
	en.mu.Unlock()

	en.cache.Set(courses)
	logger.Info("prerequisite trees loaded", "courses", len(trees), "malformed", len(malformed))
	return nil
}

// InvalidateCourse re-fetches a single course and rebuilds its tree, used
// after a targeted requisite update.
func (en *Engine) InvalidateCourse(code string) error {
	course, err := en.store.Get(code)
	if err != nil {
		return err
	}

	expr, normErr := normalizeRaw(course.Prerequisites)

	en.mu.Lock()
	if normErr != nil {
		en.malformed[code] = normErr.Error()
		en.trees[code] = nil
	} else {
		delete(en.malformed, code)
		en.trees[code] = expr
	}
	en.postreqs[code] = course.Postrequisites
	en.mu.Unlock()

	en.cache.Invalidate()
	return nil
}

// Courses lists the catalog through the engine's cache.
func (en *Engine) Courses() ([]*catalog.Course, error) {
	if cached := en.cache.Get(); cached != nil {
		return cached, nil
	}
	courses, err := en.store.List()
	if err != nil {
		return nil, err
	}
	en.cache.Set(courses)
	return courses, nil
}

// Check evaluates a course's prerequisites against the context. An unknown
// course is an error; a course with malformed requisite data yields an
// unverifiable result.
func (en *Engine) Check(code string, ctx *Context) (*Result, error) {
	en.mu.RLock()
	expr, known := en.trees[code]
	_, bad := en.malformed[code]
	en.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("course %s not found", code)
	}
	if bad {
		return &Result{
			Unverifiable: true,
			Warnings:     []string{"prerequisites could not be verified"},
		}, nil
	}
	return Evaluate(expr, ctx), nil
}

// CheckAll evaluates several courses, skipping unknown codes with a warning
// so one bad code never sinks the batch.
func (en *Engine) CheckAll(codes []string, ctx *Context) map[string]*Result {
	results := make(map[string]*Result, len(codes))
	for _, code := range codes {
		result, err := en.Check(code, ctx)
		if err != nil {
			logger.Warn("skipping unknown course in batch evaluation", "course", code)
			continue
		}
		results[code] = result
	}
	return results
}

// Describe renders a course's prerequisites as readable prose. A course
// whose requisite data failed to normalize renders as the unverifiable
// marker, never as having no prerequisites.
func (en *Engine) Describe(code string) (string, error) {
	expr, bad, err := en.tree(code)
	if err != nil {
		return "", err
	}
	if bad {
		return UnverifiablePrerequisites, nil
	}
	return Render(expr), nil
}

// DescribeCompact renders the truncated card-summary form.
func (en *Engine) DescribeCompact(code string, max int) (string, error) {
	expr, bad, err := en.tree(code)
	if err != nil {
		return "", err
	}
	if bad {
		return truncate(UnverifiablePrerequisites, max), nil
	}
	return RenderCompact(expr, max), nil
}

// CourseIDs lists every course referenced by a course's prerequisite tree.
func (en *Engine) CourseIDs(code string) ([]string, error) {
	expr, _, err := en.tree(code)
	if err != nil {
		return nil, err
	}
	return ExtractCourseIDs(expr), nil
}

// Unverifiable reports whether a course's stored requisite data could not be
// interpreted, with the recorded reason.
func (en *Engine) Unverifiable(code string) (string, bool) {
	en.mu.RLock()
	defer en.mu.RUnlock()
	reason, bad := en.malformed[code]
	return reason, bad
}

// Postrequisites returns the flat inverse adjacency for a course.
func (en *Engine) Postrequisites(code string) ([]string, error) {
	en.mu.RLock()
	defer en.mu.RUnlock()

	post, known := en.postreqs[code]
	if !known {
		return nil, fmt.Errorf("course %s not found", code)
	}
	return post, nil
}

func (en *Engine) tree(code string) (expr Expr, bad bool, err error) {
	en.mu.RLock()
	defer en.mu.RUnlock()

	expr, known := en.trees[code]
	if !known {
		return nil, false, fmt.Errorf("course %s not found", code)
	}
	_, bad = en.malformed[code]
	return expr, bad, nil
}

func normalizeRaw(data json.RawMessage) (Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformedf("invalid JSON: %v", err)
	}
	return Normalize(raw)
}
