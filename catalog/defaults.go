package catalog

// CourseDefaults is the single place fallback values for sparse catalog rows
// live. They are applied once at ingestion; consumers downstream never guess.
type CourseDefaults struct {
	Title      string
	Credits    int
	Difficulty int
	Offerings  []string
}

// DefaultCourseDefaults returns the institution-wide fallbacks.
func DefaultCourseDefaults() CourseDefaults {
	return CourseDefaults{
		Title:      "Unknown",
		Credits:    3,
		Difficulty: 3,
		Offerings:  []string{"fall", "spring"},
	}
}

// Apply fills a course's zero-valued fields from the defaults.
func (d CourseDefaults) Apply(c *Course) {
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Credits == 0 {
		c.Credits = d.Credits
	}
	if c.Difficulty == 0 {
		c.Difficulty = d.Difficulty
	}
	if len(c.Offerings) == 0 {
		c.Offerings = append([]string(nil), d.Offerings...)
	}
}
