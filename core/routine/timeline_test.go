package routine

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{5, "5m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
		{125, "2h 5m"},
		{480, "8h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.minutes); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q; want %q", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		start    string
		duration int
		want     string
	}{
		{"09:00", 60, "10:00"},
		{"09:00", 90, "10:30"},
		{"00:00", 5, "00:05"},
		{"13:45", 30, "14:15"},
		{"23:30", 60, "00:30"}, // wraps past midnight
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			if got := EndTime(tt.start, tt.duration); got != tt.want {
				t.Errorf("EndTime(%q, %d) = %q; want %q", tt.start, tt.duration, got, tt.want)
			}
		})
	}
}

func TestIsActive(t *testing.T) {
	r := Routine{Time: "09:00", Duration: 60}

	tests := []struct {
		name string
		now  string
		want bool
	}{
		{name: "before start", now: "08:59", want: false},
		{name: "at start", now: "09:00", want: true},
		{name: "within", now: "09:30", want: true},
		{name: "at end", now: "10:00", want: true},
		{name: "past end", now: "10:01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActive(r, tt.now); got != tt.want {
				t.Errorf("IsActive(%+v, %q) = %v; want %v", r, tt.now, got, tt.want)
			}
		})
	}

	// documented midnight gap: the wrapped end makes the window unmatchable
	late := Routine{Time: "23:30", Duration: 60}
	if IsActive(late, "23:45") {
		t.Errorf("IsActive() across midnight matched; the known gap behavior changed")
	}
}

func TestCurrent(t *testing.T) {
	routines := []Routine{
		{ID: "a", Time: "08:00", Duration: 30},
		{ID: "b", Time: "09:00", Duration: 60},
		{ID: "c", Time: "09:30", Duration: 60},
	}

	if r, ok := Current(routines, "09:15"); !ok || r.ID != "b" {
		t.Errorf("Current() = %v, %v; want b, true", r.ID, ok)
	}
	// overlapping windows: first in time order wins
	if r, ok := Current(routines, "09:45"); !ok || r.ID != "b" {
		t.Errorf("Current() = %v, %v; want b, true", r.ID, ok)
	}
	if _, ok := Current(routines, "12:00"); ok {
		t.Errorf("Current() matched outside all windows")
	}
}

func TestTotalByCategory(t *testing.T) {
	routines := []Routine{
		{Category: CategoryStudy, Duration: 60},
		{Category: CategoryStudy, Duration: 45},
		{Category: CategoryMeal, Duration: 30},
	}

	if got := TotalByCategory(routines, CategoryStudy); got != 105 {
		t.Errorf("TotalByCategory(study) = %d; want 105", got)
	}
	if got := TotalByCategory(routines, CategoryMeal); got != 30 {
		t.Errorf("TotalByCategory(meal) = %d; want 30", got)
	}
	if got := TotalByCategory(routines, CategoryRest); got != 0 {
		t.Errorf("TotalByCategory(rest) = %d; want 0", got)
	}
}
