package classroom

import (
	"testing"
	"time"
)

// now is fixed so the date-only comparisons are deterministic.
var now = time.Date(2021, time.March, 15, 14, 30, 0, 0, time.Local)

func dueIn(days int) *DueDate {
	d := now.AddDate(0, 0, days)
	return &DueDate{Year: d.Year(), Month: int(d.Month()), Day: d.Day()}
}

func TestAssignment_Status(t *testing.T) {
	tests := []struct {
		name string
		a    Assignment
		want string
	}{
		{name: "no due date", a: Assignment{}, want: StatusPending},
		{name: "due tomorrow", a: Assignment{DueDate: dueIn(1)}, want: StatusPending},
		{name: "due today", a: Assignment{DueDate: dueIn(0)}, want: StatusPending},
		// due earlier today, time already past; still today, so not late
		{name: "due earlier today", a: Assignment{DueDate: dueIn(0), DueTime: &DueTime{Hours: 8}}, want: StatusPending},
		{name: "due yesterday", a: Assignment{DueDate: dueIn(-1)}, want: StatusLate},
		// the submission state never changes the verdict
		{name: "turned in but past due", a: Assignment{DueDate: dueIn(-1), State: "TURNED_IN"}, want: StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Status(now); got != tt.want {
				t.Errorf("Status() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAssignment_DaysUntilDue(t *testing.T) {
	if _, ok := (Assignment{}).DaysUntilDue(now); ok {
		t.Errorf("DaysUntilDue() ok = true for missing due date")
	}

	tests := []struct {
		name string
		a    Assignment
		want int
	}{
		{name: "today", a: Assignment{DueDate: dueIn(0)}, want: 0},
		{name: "tomorrow", a: Assignment{DueDate: dueIn(1)}, want: 1},
		{name: "next week", a: Assignment{DueDate: dueIn(7)}, want: 7},
		{name: "yesterday", a: Assignment{DueDate: dueIn(-1)}, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.DaysUntilDue(now)
			if !ok || got != tt.want {
				t.Errorf("DaysUntilDue() = %d, %v; want %d, true", got, ok, tt.want)
			}
		})
	}
}

func TestAssignment_Badge(t *testing.T) {
	tests := []struct {
		name string
		a    Assignment
		want string
	}{
		{name: "no due date", a: Assignment{}, want: "No due date"},
		{name: "overdue", a: Assignment{DueDate: dueIn(-2)}, want: "Overdue"},
		{name: "today", a: Assignment{DueDate: dueIn(0)}, want: "Due Today"},
		{name: "tomorrow", a: Assignment{DueDate: dueIn(1)}, want: "Due Tomorrow"},
		{name: "later", a: Assignment{DueDate: dueIn(5)}, want: "5 days left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Badge(now); got != tt.want {
				t.Errorf("Badge() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAssignment_Due(t *testing.T) {
	a := Assignment{
		DueDate: &DueDate{Year: 2021, Month: 3, Day: 20},
		DueTime: &DueTime{Hours: 23, Minutes: 59},
	}
	due, ok := a.Due()
	if !ok {
		t.Fatalf("Due() ok = false")
	}
	want := time.Date(2021, time.March, 20, 23, 59, 0, 0, time.Local)
	if !due.Equal(want) {
		t.Errorf("Due() = %v; want %v", due, want)
	}

	// missing time defaults to midnight
	a.DueTime = nil
	due, _ = a.Due()
	if due.Hour() != 0 || due.Minute() != 0 {
		t.Errorf("Due() without time = %v; want midnight", due)
	}
}
