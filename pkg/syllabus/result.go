package syllabus

import "fmt"

type Status string

const (
	StatusCompleted Status = "completed"
	// StatusPartial means the walk finished but some areas or courses timed out.
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

type FailureKind string

const (
	PartialAreaFailure   FailureKind = "partial_area"
	PartialCourseFailure FailureKind = "partial_course"
)

type Failure struct {
	Kind   FailureKind `json:"kind"`
	Area   string      `json:"area"`
	Course string      `json:"course,omitempty"`
	Reason string      `json:"reason"`
}

type Course struct {
	Name      string   `json:"name"`
	Directory string   `json:"directory"`
	Links     []string `json:"links"`
}

// addLink keeps Links an insertion-ordered set.
func (c *Course) addLink(link string) bool {
	for _, existing := range c.Links {
		if existing == link {
			return false
		}
	}
	c.Links = append(c.Links, link)
	return true
}

type Area struct {
	Name      string   `json:"name"`
	Directory string   `json:"directory"`
	Courses   []Course `json:"courses"`
}

// Result is the discovery output: areas in render order, each with its
// courses in render order, each with its syllabus links.
type Result struct {
	Status   Status    `json:"status"`
	Areas    []Area    `json:"areas"`
	Failures []Failure `json:"failures,omitempty"`
}

func (r *Result) AreaNames() []string {
	names := make([]string, 0, len(r.Areas))
	for _, area := range r.Areas {
		names = append(names, area.Name)
	}
	return names
}

// Links flattens the result to area -> course -> links.
func (r *Result) Links() map[string]map[string][]string {
	flattened := make(map[string]map[string][]string, len(r.Areas))
	for _, area := range r.Areas {
		courses := make(map[string][]string, len(area.Courses))
		for _, course := range area.Courses {
			courses[course.Name] = append([]string{}, course.Links...)
		}
		flattened[area.Name] = courses
	}
	return flattened
}

func (r *Result) CourseCount() int {
	total := 0
	for _, area := range r.Areas {
		total += len(area.Courses)
	}
	return total
}

func (r *Result) LinkCount() int {
	total := 0
	for _, area := range r.Areas {
		for _, course := range area.Courses {
			total += len(course.Links)
		}
	}
	return total
}

func (r *Result) recordFailure(failure Failure) {
	r.Failures = append(r.Failures, failure)
	r.Status = StatusPartial
}

// FatalDiscoveryError means the outer controls never rendered and the walk
// could not start.
type FatalDiscoveryError struct {
	Stage string
	Err   error
}

func (e *FatalDiscoveryError) Error() string {
	return fmt.Sprintf("syllabus discovery failed at %s: %v", e.Stage, e.Err)
}

func (e *FatalDiscoveryError) Unwrap() error {
	return e.Err
}
