package routine

import (
	"fmt"
	"time"
)

// Timeline projections: pure functions over a Routine list, no side effects.

// FormatDuration renders minutes as "{h}h {m}m", dropping whichever unit is zero.
// 0 minutes renders as "0m".
func FormatDuration(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// EndTime adds duration minutes to a "HH:MM" start and returns the end as "HH:MM".
// The date arithmetic wraps past midnight; see IsActive for the implication.
func EndTime(start string, duration int) string {
	t, err := time.Parse("15:04", start)
	if err != nil {
		return start
	}
	return t.Add(time.Duration(duration) * time.Minute).Format("15:04")
}

// IsActive reports whether now ("HH:MM") falls within the routine's window,
// comparing the zero-padded time strings lexicographically.
//
// Known gap: a window whose end wraps past midnight produces end < start, so the
// comparison never (or wrongly) matches. Kept as-is; routines are day-scoped.
func IsActive(r Routine, now string) bool {
	end := EndTime(r.Time, r.Duration)
	return r.Time <= now && now <= end
}

// Current returns the first active routine at now, in list order.
func Current(routines []Routine, now string) (Routine, bool) {
	for _, r := range routines {
		if IsActive(r, now) {
			return r, true
		}
	}
	return Routine{}, false
}

// TotalByCategory sums the durations of all routines in the given category.
func TotalByCategory(routines []Routine, category string) int {
	var total int
	for _, r := range routines {
		if r.Category == category {
			total += r.Duration
		}
	}
	return total
}
