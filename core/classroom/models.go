package classroom

import (
	"fmt"
	"math"
	"time"
)

// Assignment statuses
const (
	StatusPending = "pending"
	StatusLate    = "late"
)

// Course is a read-only mirror of a Google Classroom course.
// JSON field names follow the Classroom API wire format.
type Course struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Section        string `json:"section,omitempty"`
	Description    string `json:"description,omitempty"`
	Room           string `json:"room,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
	EnrollmentCode string `json:"enrollmentCode,omitempty"`
	CourseState    string `json:"courseState,omitempty"`
	AlternateLink  string `json:"alternateLink,omitempty"`
	CreationTime   string `json:"creationTime,omitempty"`
	UpdateTime     string `json:"updateTime,omitempty"`
}

type DueDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type DueTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Assignment is a read-only mirror of a course work item, flattened with its
// course name the way the dashboard consumes it.
type Assignment struct {
	ID            string   `json:"id"`
	CourseID      string   `json:"courseId"`
	CourseName    string   `json:"courseName"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	DueDate       *DueDate `json:"dueDate,omitempty"`
	DueTime       *DueTime `json:"dueTime,omitempty"`
	State         string   `json:"state,omitempty"`
	AlternateLink string   `json:"alternateLink,omitempty"`
	CreationTime  string   `json:"creationTime,omitempty"`
	UpdateTime    string   `json:"updateTime,omitempty"`
}

// Due composes the split date (+ optional time) fields into one local instant.
// ok is false when the assignment has no due date.
func (a Assignment) Due() (due time.Time, ok bool) {
	if a.DueDate == nil {
		return time.Time{}, false
	}
	var hours, minutes int
	if a.DueTime != nil {
		hours, minutes = a.DueTime.Hours, a.DueTime.Minutes
	}
	return time.Date(a.DueDate.Year, time.Month(a.DueDate.Month), a.DueDate.Day, hours, minutes, 0, 0, time.Local), true
}

// Status classifies the assignment relative to now: late iff the due date
// (date-only) is strictly before today's local midnight, pending otherwise.
// The server-reported submission state is deliberately not consulted; the
// snapshot is always fetched fresh.
func (a Assignment) Status(now time.Time) string {
	due, ok := a.Due()
	if !ok {
		return StatusPending
	}
	if dateOf(due).Before(dateOf(now)) {
		return StatusLate
	}
	return StatusPending
}

// DaysUntilDue returns the whole days between today's and the due date's local
// midnights. ok is false when there is no due date.
func (a Assignment) DaysUntilDue(now time.Time) (days int, ok bool) {
	due, ok := a.Due()
	if !ok {
		return 0, false
	}
	diff := dateOf(due).Sub(dateOf(now))
	return int(math.Ceil(diff.Hours() / 24)), true
}

// Badge derives the display label from Status and DaysUntilDue.
func (a Assignment) Badge(now time.Time) string {
	days, ok := a.DaysUntilDue(now)
	if !ok {
		return "No due date"
	}
	if a.Status(now) == StatusLate {
		return "Overdue"
	}
	switch days {
	case 0:
		return "Due Today"
	case 1:
		return "Due Tomorrow"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// dateOf truncates t to its local midnight.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
