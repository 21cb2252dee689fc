package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/lib/pq"

	"github.com/jlouisugbo/gt-course-planner-sub006/catalog"
	"github.com/jlouisugbo/gt-course-planner-sub006/internal/config"
	"github.com/jlouisugbo/gt-course-planner-sub006/internal/logger"
	"github.com/jlouisugbo/gt-course-planner-sub006/planner"
	"github.com/jlouisugbo/gt-course-planner-sub006/prereq"
)

var validate = newValidator()

// newValidator reports field errors by JSON tag name, not Go struct name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Server struct {
	db     *sql.DB
	store  catalog.Store
	engine *prereq.Engine
	router *chi.Mux
}

// NewServer connects to postgres and builds the full service.
func NewServer(databaseURL string) (*Server, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := newServer(db, catalog.NewPostgresStore(db))
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// newServer wires the engine and routes over any Store; tests pass the
// in-memory store with a nil db.
func newServer(db *sql.DB, store catalog.Store) (*Server, error) {
	cache := catalog.NewInMemoryCache(catalog.CacheConfig{
		TTL: config.Conf.GetDuration("cacheTtl"),
	})
	engine, err := prereq.NewEngineWithCache(store, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to build prerequisite engine: %w", err)
	}

	s := &Server{db: db, store: store, engine: engine}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/api/v1/evaluate", s.handleEvaluate)
	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Post("/api/v1/requisites", s.handleUploadRequisites)

	r.Route("/api/v1/courses", func(r chi.Router) {
		r.Get("/", s.handleListCourses)
		r.Post("/", s.handleCreateCourse)

		r.Route("/{courseCode}", func(r chi.Router) {
			r.Get("/", s.handleGetCourse)
			r.Put("/", s.handleUpdateCourse)
			r.Delete("/", s.handleDeleteCourse)
			r.Get("/prerequisites", s.handleGetPrerequisites)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	courses, _ := s.engine.Courses()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"coursesLoaded": len(courses),
		"totalErrors":   logger.TotalErrors.Load(),
		"totalWarnings": logger.TotalWarnings.Load(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx := req.Record.toContext()
	startTime := time.Now()
	results := s.engine.CheckAll(req.Courses, ctx)

	response := EvaluateResponse{
		Results:        make(map[string]CourseEvaluation, len(results)),
		EvaluationTime: time.Since(startTime).String(),
	}
	for code, result := range results {
		response.Results[code] = toCourseEvaluation(result)
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx := req.Record.toContext()
	result, err := s.engine.Check(req.Course, ctx)
	if err != nil {
		respondError(w, http.StatusNotFound, "course not found", err)
		return
	}

	response := RecommendResponse{
		Course:      req.Course,
		Status:      evaluationStatus(result),
		Suggestions: map[string]int{},
		Warnings:    result.Warnings,
	}

	if !result.Unverifiable && !result.Satisfied {
		if req.Chain {
			response.Suggestions, err = planner.RecommendChain(s.engine, req.Course, ctx)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "recommendation failed", err)
				return
			}
		} else {
			response.Suggestions = planner.Recommend(result.Missing, ctx)
		}
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleUploadRequisites(w http.ResponseWriter, r *http.Request) {
	var payload map[string]catalog.RequisiteUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "payload must contain at least one course", nil)
		return
	}

	report := catalog.ApplyUpload(s.store, payload)

	if err := s.engine.Reload(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload prerequisite trees", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.engine.Courses()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, toCourseResponse(course))
	}
	respondJSON(w, http.StatusOK, map[string]any{"courses": responses})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := decodeCourse(w, r, "")
	if !ok {
		return
	}

	if err := s.store.Add(course); err != nil {
		respondError(w, http.StatusConflict, "failed to create course", err)
		return
	}
	if err := s.engine.InvalidateCourse(course.Code); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load prerequisite tree", err)
		return
	}

	respondJSON(w, http.StatusCreated, toCourseResponse(course))
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "courseCode")

	course, err := s.store.Get(code)
	if err != nil {
		respondError(w, http.StatusNotFound, "course not found", err)
		return
	}
	respondJSON(w, http.StatusOK, toCourseResponse(course))
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "courseCode")

	course, ok := decodeCourse(w, r, code)
	if !ok {
		return
	}

	if err := s.store.Update(course); err != nil {
		respondError(w, http.StatusNotFound, "failed to update course", err)
		return
	}
	if err := s.engine.InvalidateCourse(code); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload prerequisite tree", err)
		return
	}

	respondJSON(w, http.StatusOK, toCourseResponse(course))
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "courseCode")

	if err := s.store.Delete(code); err != nil {
		respondError(w, http.StatusNotFound, "course not found", err)
		return
	}
	if err := s.engine.Reload(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload prerequisite trees", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPrerequisites(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "courseCode")

	text, err := s.engine.Describe(code)
	if err != nil {
		respondError(w, http.StatusNotFound, "course not found", err)
		return
	}
	compact, _ := s.engine.DescribeCompact(code, prereq.DefaultCompactLength)
	courseIDs, _ := s.engine.CourseIDs(code)
	postreqs, _ := s.engine.Postrequisites(code)
	_, unverifiable := s.engine.Unverifiable(code)

	respondJSON(w, http.StatusOK, PrerequisitesResponse{
		Course:         code,
		Text:           text,
		Compact:        compact,
		Courses:        courseIDs,
		Postrequisites: postreqs,
		Unverifiable:   unverifiable,
	})
}

// decodeCourse reads and validates a course body. urlCode, when set, pins the
// course code to the URL parameter for updates.
func decodeCourse(w http.ResponseWriter, r *http.Request, urlCode string) (*catalog.Course, bool) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}
	if urlCode != "" {
		req.Code = urlCode
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err)
		return nil, false
	}

	var prereqJSON json.RawMessage
	if req.Prerequisites != nil {
		if err := catalog.ValidateRequisites(req.Prerequisites); err != nil {
			respondError(w, http.StatusBadRequest, "invalid prerequisites", err)
			return nil, false
		}
		encoded, err := json.Marshal(req.Prerequisites)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid prerequisites", err)
			return nil, false
		}
		prereqJSON = encoded
	}

	return &catalog.Course{
		Code:           req.Code,
		Title:          req.Title,
		Credits:        req.Credits,
		Difficulty:     req.Difficulty,
		Offerings:      req.Offerings,
		Prerequisites:  prereqJSON,
		Postrequisites: req.Postrequisites,
	}, true
}

func toCourseEvaluation(result *prereq.Result) CourseEvaluation {
	return CourseEvaluation{
		Status:      evaluationStatus(result),
		Satisfied:   result.Satisfied,
		Missing:     result.Missing,
		SatisfiedBy: result.SatisfiedBy,
		Warnings:    result.Warnings,
	}
}

func evaluationStatus(result *prereq.Result) string {
	switch {
	case result.Unverifiable:
		return "unverifiable"
	case result.Satisfied:
		return "satisfied"
	default:
		return "missing"
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error(message, "status", status, "error", err)
	}
	respondJSON(w, status, response)
}

func main() {
	databaseURL := config.DatabaseURL()
	if databaseURL == "" {
		logger.Error("database URL is required (PLANNER_DATABASE_URL or DATABASE_URL)")
		os.Exit(1)
	}

	if level, err := logger.ParseLevel(config.Conf.GetString("logLevel")); err == nil {
		logger.SetLevel(level)
	}

	server, err := NewServer(databaseURL)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	defer server.db.Close()

	addr := config.Conf.GetString("addr")
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), config.Conf.GetDuration("shutdownTimeout"))
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
