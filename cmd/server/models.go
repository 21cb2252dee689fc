package main

import (
	"time"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
	"github.com/jlouisugbo/gt-course-planner-sub006/prereq"
)

// API request and response models.

// PlannedSemester lists the courses a student has placed in one semester of
// their plan.
type PlannedSemester struct {
	Semester int      `json:"semester" validate:"gte=1"`
	Courses  []string `json:"courses" validate:"dive,required"`
}

// AcademicRecord is the student-record portion of evaluate/recommend
// requests. It is assembled into a prereq.Context server-side.
type AcademicRecord struct {
	Completed      []string          `json:"completed"`
	InProgress     []string          `json:"inProgress"`
	Planned        []PlannedSemester `json:"planned" validate:"dive"`
	TargetSemester int               `json:"targetSemester" validate:"gte=1"`
	GPA            *float64          `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=4"`
	CreditsEarned  *int              `json:"creditsEarned,omitempty" validate:"omitempty,gte=0"`
	ClassYear      *int              `json:"classYear,omitempty" validate:"omitempty,gte=1,lte=4"`
	Grades         map[string]string `json:"grades,omitempty"`
}

func (r *AcademicRecord) toContext() *prereq.Context {
	planned := make(map[int]map[string]bool, len(r.Planned))
	for _, sem := range r.Planned {
		set := planned[sem.Semester]
		if set == nil {
			set = make(map[string]bool, len(sem.Courses))
			planned[sem.Semester] = set
		}
		for _, course := range sem.Courses {
			set[course] = true
		}
	}

	return &prereq.Context{
		Completed:         prereq.SetOf(r.Completed),
		InProgress:        prereq.SetOf(r.InProgress),
		PlannedBySemester: planned,
		TargetSemester:    r.TargetSemester,
		GPA:               r.GPA,
		CreditsEarned:     r.CreditsEarned,
		ClassYear:         r.ClassYear,
		GradesByCourse:    r.Grades,
	}
}

// EvaluateRequest asks for prerequisite checks on one or more courses.
type EvaluateRequest struct {
	Courses []string       `json:"courses" validate:"required,min=1,dive,required"`
	Record  AcademicRecord `json:"record"`
}

// CourseEvaluation is the per-course outcome. Status is "satisfied",
// "missing", or "unverifiable"; the last means the catalog data for the
// course could not be interpreted and the UI must say so rather than claim
// either outcome.
type CourseEvaluation struct {
	Status      string             `json:"status"`
	Satisfied   bool               `json:"satisfied"`
	Missing     []prereq.CourseRef `json:"missing,omitempty"`
	SatisfiedBy []string           `json:"satisfiedBy,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// EvaluateResponse maps course codes to their evaluations.
type EvaluateResponse struct {
	Results        map[string]CourseEvaluation `json:"results"`
	EvaluationTime string                      `json:"evaluationTime"`
}

// RecommendRequest asks for semester placements of a course's missing
// prerequisites. Chain selects the chain-aware scheduler.
type RecommendRequest struct {
	Course string         `json:"course" validate:"required"`
	Chain  bool           `json:"chain"`
	Record AcademicRecord `json:"record"`
}

// RecommendResponse maps missing course codes to suggested semester ordinals.
type RecommendResponse struct {
	Course      string         `json:"course"`
	Status      string         `json:"status"`
	Suggestions map[string]int `json:"suggestions"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// PrerequisitesResponse is the display-layer bundle for one course: full
// prose, card-summary prose, badge course IDs, and the inverse adjacency.
// Unverifiable flags a course whose stored requisite data could not be
// interpreted; its Text carries the marker rather than a no-prerequisites
// claim.
type PrerequisitesResponse struct {
	Course         string   `json:"course"`
	Text           string   `json:"text"`
	Compact        string   `json:"compact"`
	Courses        []string `json:"courses"`
	Postrequisites []string `json:"postrequisites,omitempty"`
	Unverifiable   bool     `json:"unverifiable,omitempty"`
}

// CourseRequest creates or updates a catalog entry. Zero-valued fields are
// filled from the ingestion defaults by the store.
type CourseRequest struct {
	Code           string   `json:"code" validate:"required"`
	Title          string   `json:"title"`
	Credits        int      `json:"credits" validate:"gte=0,lte=12"`
	Difficulty     int      `json:"difficulty" validate:"gte=0,lte=5"`
	Offerings      []string `json:"offerings" validate:"dive,oneof=fall spring summer"`
	Prerequisites  any      `json:"prerequisites,omitempty"`
	Postrequisites []string `json:"postrequisites,omitempty"`
}

// CourseResponse mirrors catalog.Course for API output.
type CourseResponse struct {
	Code           string    `json:"code"`
	Title          string    `json:"title"`
	Credits        int       `json:"credits"`
	Difficulty     int       `json:"difficulty"`
	Offerings      []string  `json:"offerings"`
	Postrequisites []string  `json:"postrequisites,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toCourseResponse(c *catalog.Course) CourseResponse {
	return CourseResponse{
		Code:           c.Code,
		Title:          c.Title,
		Credits:        c.Credits,
		Difficulty:     c.Difficulty,
		Offerings:      c.Offerings,
		Postrequisites: c.Postrequisites,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
