package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store manages course persistence and retrieval.
type Store interface {
	// Add a new course. Fails if the code is already present.
	Add(course *Course) error

	// Get a course by its canonical code.
	Get(code string) (*Course, error)

	// List all courses, ordered by code.
	List() ([]*Course, error)

	// Update an existing course.
	Update(course *Course) error

	// Delete a course by code.
	Delete(code string) error

	// UpdateRequisites replaces a course's prerequisite JSON and
	// postrequisite list without touching the rest of the row.
	UpdateRequisites(code string, prerequisites json.RawMessage, postrequisites []string) error
}

// InMemoryStore implements Store with a mutex-guarded map. It backs tests
// and single-process deployments without a database.
type InMemoryStore struct {
	courses  map[string]*Course
	defaults CourseDefaults
	mu       sync.RWMutex
}

// NewInMemoryStore creates an empty in-memory course store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		courses:  make(map[string]*Course),
		defaults: DefaultCourseDefaults(),
	}
}

// Add inserts a course, applying ingestion defaults and setting timestamps.
func (s *InMemoryStore) Add(course *Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if course.Code == "" {
		return fmt.Errorf("course code is required")
	}
	if _, exists := s.courses[course.Code]; exists {
		return fmt.Errorf("course %s already exists", course.Code)
	}

	s.defaults.Apply(course)
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	s.courses[course.Code] = course
	return nil
}

// Get retrieves a course by code.
func (s *InMemoryStore) Get(code string) (*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, exists := s.courses[code]
	if !exists {
		return nil, fmt.Errorf("course %s not found", code)
	}
	return course, nil
}

// List returns all courses ordered by code.
func (s *InMemoryStore) List() ([]*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]*Course, 0, len(s.courses))
	for _, course := range s.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

// Update replaces an existing course, preserving CreatedAt.
func (s *InMemoryStore) Update(course *Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.courses[course.Code]
	if !exists {
		return fmt.Errorf("course %s not found", course.Code)
	}

	s.defaults.Apply(course)
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now()
	s.courses[course.Code] = course
	return nil
}

// Delete removes a course.
func (s *InMemoryStore) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.courses[code]; !exists {
		return fmt.Errorf("course %s not found", code)
	}
	delete(s.courses, code)
	return nil
}

// UpdateRequisites swaps in new requisite data for a course.
func (s *InMemoryStore) UpdateRequisites(code string, prerequisites json.RawMessage, postrequisites []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, exists := s.courses[code]
	if !exists {
		return fmt.Errorf("course %s not found", code)
	}
	course.Prerequisites = prerequisites
	course.Postrequisites = postrequisites
	course.UpdatedAt = time.Now()
	return nil
}
