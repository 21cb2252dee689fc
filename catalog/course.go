// Package catalog holds the course catalog: the Course model, the Store
// interface with in-memory and PostgreSQL implementations, a course-list
// cache, ingestion defaults, and the bulk requisites-upload boundary.
package catalog

import (
	"encoding/json"
	"time"
)

// Course is a catalog entry. Prerequisites carries the raw requisite JSON as
// produced by the catalog data source; it is normalized by the prerequisite
// engine on read, never interpreted here. Postrequisites is the inverse
// adjacency, a flat list of course codes that require this one.
type Course struct {
	Code           string          `json:"code"`
	Title          string          `json:"title"`
	Credits        int             `json:"credits"`
	Difficulty     int             `json:"difficulty"`
	Offerings      []string        `json:"offerings"`
	Prerequisites  json.RawMessage `json:"prerequisites,omitempty"`
	Postrequisites []string        `json:"postrequisites,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
