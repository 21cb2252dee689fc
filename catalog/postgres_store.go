package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore implements Store backed by PostgreSQL. Offerings and
// postrequisites are text[] columns, prerequisites is jsonb.
type PostgresStore struct {
	db       *sql.DB
	defaults CourseDefaults
}

// NewPostgresStore creates a PostgreSQL-backed course store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:       db,
		defaults: DefaultCourseDefaults(),
	}
}

// Add inserts a new course row.
func (s *PostgresStore) Add(course *Course) error {
	if course.Code == "" {
		return fmt.Errorf("course code is required")
	}

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM courses WHERE code = $1)
	`, course.Code).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check course existence: %w", err)
	}
	if exists {
		return fmt.Errorf("course %s already exists", course.Code)
	}

	s.defaults.Apply(course)
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO courses (code, title, credits, difficulty, offerings, prerequisites, postrequisites, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, course.Code, course.Title, course.Credits, course.Difficulty,
		pq.Array(course.Offerings), nullableJSON(course.Prerequisites),
		pq.Array(course.Postrequisites), course.CreatedAt, course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

// Get retrieves a course by code.
func (s *PostgresStore) Get(code string) (*Course, error) {
	course, err := scanCourse(s.db.QueryRow(`
		SELECT code, title, credits, difficulty, offerings, prerequisites, postrequisites, created_at, updated_at
		FROM courses
		WHERE code = $1
	`, code))

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// List returns all courses ordered by code.
func (s *PostgresStore) List() ([]*Course, error) {
	rows, err := s.db.Query(`
		SELECT code, title, credits, difficulty, offerings, prerequisites, postrequisites, created_at, updated_at
		FROM courses
		ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// Update modifies an existing course.
func (s *PostgresStore) Update(course *Course) error {
	s.defaults.Apply(course)
	course.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE courses
		SET title = $1, credits = $2, difficulty = $3, offerings = $4,
		    prerequisites = $5, postrequisites = $6, updated_at = $7
		WHERE code = $8
	`, course.Title, course.Credits, course.Difficulty, pq.Array(course.Offerings),
		nullableJSON(course.Prerequisites), pq.Array(course.Postrequisites),
		course.UpdatedAt, course.Code)

	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return requireRow(result, course.Code)
}

// Delete removes a course row.
func (s *PostgresStore) Delete(code string) error {
	result, err := s.db.Exec(`DELETE FROM courses WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return requireRow(result, code)
}

// UpdateRequisites replaces only the requisite columns of a course.
func (s *PostgresStore) UpdateRequisites(code string, prerequisites json.RawMessage, postrequisites []string) error {
	result, err := s.db.Exec(`
		UPDATE courses
		SET prerequisites = $1, postrequisites = $2, updated_at = $3
		WHERE code = $4
	`, nullableJSON(prerequisites), pq.Array(postrequisites), time.Now(), code)

	if err != nil {
		return fmt.Errorf("failed to update requisites: %w", err)
	}
	return requireRow(result, code)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*Course, error) {
	var course Course
	var prereqs []byte
	err := row.Scan(
		&course.Code,
		&course.Title,
		&course.Credits,
		&course.Difficulty,
		pq.Array(&course.Offerings),
		&prereqs,
		pq.Array(&course.Postrequisites),
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(prereqs) > 0 {
		course.Prerequisites = json.RawMessage(prereqs)
	}
	return &course, nil
}

func requireRow(result sql.Result, code string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course %s not found", code)
	}
	return nil
}

// nullableJSON maps empty requisite data to SQL NULL instead of an empty
// jsonb document.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
