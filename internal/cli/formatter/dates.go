package formatter

import (
	"fmt"
	"time"
)

// clock is swapped in tests.
var clock = time.Now

// Ago renders how long ago t was: "Just now", "5m ago", "3h ago", then a
// calendar date.
func Ago(t time.Time) string {
	ref := clock()
	switch d := ref.Sub(t); {
	case d < 0:
		return calendarDay(t, ref)
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return calendarDay(t, ref)
	}
}

// Due renders a due date relative to today, red when it is overdue or at
// most two days away and yellow within the week.
func Due(t time.Time) string {
	days := daysBetween(clock(), t)
	text := relativeDays(days)
	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// daysBetween counts calendar days from ref to t in ref's location.
func daysBetween(ref, t time.Time) int {
	y1, m1, d1 := ref.Date()
	y2, m2, d2 := t.In(ref.Location()).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func relativeDays(days int) string {
	unit := func(n int) string {
		switch {
		case n < 14:
			return fmt.Sprintf("%dd", n)
		case n < 60:
			return fmt.Sprintf("%dw", n/7)
		default:
			return fmt.Sprintf("%dmo", n/30)
		}
	}
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0:
		return "In " + unit(days)
	default:
		return unit(-days) + " ago"
	}
}

func calendarDay(t, ref time.Time) string {
	switch daysBetween(ref, t) {
	case 0:
		return "Today"
	case -1:
		return "Yesterday"
	}
	if t.Year() == ref.Year() {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}
