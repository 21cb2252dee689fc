package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jlouisugbo/gt-course-planner-sub006/internal/logger"
)

// maxReportMessages caps the detail list in an upload report so a badly
// broken file cannot balloon the response.
const maxReportMessages = 25

// maxRequisiteDepth caps nesting at the upload boundary. It mirrors
// prereq.MaxDepth: data accepted here must normalize.
const maxRequisiteDepth = 25

// CompileCondition checks condition-gate expressions at the upload boundary.
// The prereq package installs its compiler at init; until then only the
// string shape is checked.
var CompileCondition func(expression string) error

// RequisiteUpdate is one entry of a bulk requisites upload, keyed by course
// code in the payload. Prerequisites is the loosely-typed expression form;
// Postrequisites is the flat inverse adjacency list.
type RequisiteUpdate struct {
	Prerequisites  any      `json:"prerequisites"`
	Postrequisites []string `json:"postrequisites"`
}

// Report summarizes a bulk upload. Entries are never rejected wholesale: each
// bad entry is counted and described, and the rest of the batch proceeds.
type Report struct {
	BatchID   string   `json:"batchId"`
	Processed int      `json:"processed"`
	Updated   int      `json:"updated"`
	NotFound  int      `json:"notFound"`
	Invalid   int      `json:"invalid"`
	Messages  []string `json:"messages,omitempty"`
}

func (r *Report) addMessage(format string, args ...any) {
	if len(r.Messages) >= maxReportMessages {
		return
	}
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// ValidateRequisites checks the stored shape of prerequisite data at the
// upload boundary: an array (or nothing); if non-empty with a leading string,
// that string must be "and"/"or"; every other element must be an {id, grade?}
// object, a {condition} object, or a nested array checked the same way.
//
// Mirrors the engine's runtime normalizer without calling it: data accepted
// here must normalize, data rejected here must not.
func ValidateRequisites(raw any) error {
	return validateRequisites(raw, true, 0)
}

func validateRequisites(raw any, topLevel bool, depth int) error {
	if depth > maxRequisiteDepth {
		return fmt.Errorf("nesting exceeds %d levels", maxRequisiteDepth)
	}

	switch v := raw.(type) {
	case nil:
		return nil

	case []any:
		if len(v) == 0 {
			return nil
		}
		rest := v
		if head, ok := v[0].(string); ok {
			op := strings.ToLower(strings.TrimSpace(head))
			if op != "and" && op != "or" {
				return fmt.Errorf("leading string %q must be \"and\" or \"or\"", head)
			}
			rest = v[1:]
		}
		for i, elem := range rest {
			if err := validateRequisiteElement(elem, depth+1); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil

	default:
		if topLevel {
			return fmt.Errorf("prerequisites must be an array, got %T", raw)
		}
		return validateRequisiteElement(raw, depth)
	}
}

func validateRequisiteElement(elem any, depth int) error {
	if depth > maxRequisiteDepth {
		return fmt.Errorf("nesting exceeds %d levels", maxRequisiteDepth)
	}

	switch e := elem.(type) {
	case map[string]any:
		if cond, ok := e["condition"]; ok {
			s, isString := cond.(string)
			if !isString || strings.TrimSpace(s) == "" {
				return fmt.Errorf("condition must be a non-empty string")
			}
			if CompileCondition != nil {
				if err := CompileCondition(s); err != nil {
					return fmt.Errorf("invalid condition %q: %v", s, err)
				}
			}
			return nil
		}
		id, ok := e["id"].(string)
		if !ok || strings.TrimSpace(id) == "" {
			return fmt.Errorf("object requires a non-empty string id")
		}
		if gradeRaw, present := e["grade"]; present {
			grade, isString := gradeRaw.(string)
			if !isString || !validGrade(grade) {
				return fmt.Errorf("course %s has invalid grade %v (want a letter A-F)", id, gradeRaw)
			}
		}
		return nil

	case []any:
		return validateRequisites(e, false, depth)

	case string:
		if strings.TrimSpace(e) == "" {
			return fmt.Errorf("empty course code")
		}
		return nil

	default:
		return fmt.Errorf("unsupported element of type %T", elem)
	}
}

func validGrade(grade string) bool {
	switch grade {
	case "A", "B", "C", "D", "F":
		return true
	}
	return false
}

// ApplyUpload validates and persists a bulk requisites payload, one course at
// a time. Unknown courses and invalid entries are reported, never fatal.
func ApplyUpload(store Store, payload map[string]RequisiteUpdate) *Report {
	report := &Report{BatchID: uuid.NewString()}

	// Stable order so report messages are deterministic.
	codes := make([]string, 0, len(payload))
	for code := range payload {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		entry := payload[code]
		report.Processed++

		if err := ValidateRequisites(entry.Prerequisites); err != nil {
			report.Invalid++
			report.addMessage("%s: %v", code, err)
			logger.Warn("rejected requisite upload entry", "course", code, "error", err)
			continue
		}

		var prereqJSON json.RawMessage
		if entry.Prerequisites != nil {
			encoded, err := json.Marshal(entry.Prerequisites)
			if err != nil {
				report.Invalid++
				report.addMessage("%s: %v", code, err)
				continue
			}
			prereqJSON = encoded
		}

		if err := store.UpdateRequisites(code, prereqJSON, entry.Postrequisites); err != nil {
			report.NotFound++
			report.addMessage("%s: %v", code, err)
			continue
		}
		report.Updated++
	}

	logger.Info("requisite upload applied",
		"batch", report.BatchID,
		"processed", report.Processed,
		"updated", report.Updated,
		"notFound", report.NotFound,
		"invalid", report.Invalid)
	return report
}
