package recap

import (
	"fmt"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// Window calculation is pure: no I/O, no side effects. All math is done in
// UTC. Windows are inclusive on both ends; End is the last representable
// instant of the period (next period start minus one nanosecond).

// PreviousWindow returns the window of the period immediately preceding the
// reference instant's current period: previous calendar day, previous Mon-Sun
// week, previous calendar month, or previous calendar year.
func PreviousWindow(ref time.Time, kind domain.PeriodKind) (domain.Window, error) {
	cur, err := periodStart(ref, kind)
	if err != nil {
		return domain.Window{}, err
	}
	start := shiftPeriods(cur, kind, -1)
	return domain.Window{Start: start, End: cur.Add(-time.Nanosecond)}, nil
}

// CurrentWindow returns the window of the period containing the reference
// instant. Used by the reactive trigger when a new entry crosses a threshold.
func CurrentWindow(ref time.Time, kind domain.PeriodKind) (domain.Window, error) {
	start, err := periodStart(ref, kind)
	if err != nil {
		return domain.Window{}, err
	}
	next := shiftPeriods(start, kind, 1)
	return domain.Window{Start: start, End: next.Add(-time.Nanosecond)}, nil
}

// periodStart truncates ref down to the start of its period. Weeks run
// Monday through Sunday.
func periodStart(ref time.Time, kind domain.PeriodKind) (time.Time, error) {
	t := ref.UTC()
	switch kind {
	case domain.PeriodDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case domain.PeriodWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// Monday is day 0 of the week here; Go's Sunday=0 needs remapping.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	case domain.PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case domain.PeriodYearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unsupported period kind %q: %w", kind, domain.ErrValidation)
}

func shiftPeriods(start time.Time, kind domain.PeriodKind, n int) time.Time {
	switch kind {
	case domain.PeriodDaily:
		return start.AddDate(0, 0, n)
	case domain.PeriodWeekly:
		return start.AddDate(0, 0, 7*n)
	case domain.PeriodMonthly:
		return start.AddDate(0, n, 0)
	default:
		return start.AddDate(n, 0, 0)
	}
}

// BucketKeys returns the full, ordered bucket key set for a period kind:
// seven weekday names for weekly, four week labels for monthly, twelve month
// names for yearly. Daily recaps have a single implicit bucket and return nil.
func BucketKeys(kind domain.PeriodKind) []string {
	switch kind {
	case domain.PeriodWeekly:
		return []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	case domain.PeriodMonthly:
		return []string{"Week 1", "Week 2", "Week 3", "Week 4"}
	case domain.PeriodYearly:
		return []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		}
	}
	return nil
}

// BucketKey maps an entry instant to its bucket within a window of the given
// kind. Every instant maps to exactly one key for weekly/monthly/yearly; the
// daily kind has no buckets and returns "".
func BucketKey(kind domain.PeriodKind, t time.Time) string {
	t = t.UTC()
	switch kind {
	case domain.PeriodWeekly:
		return t.Weekday().String()
	case domain.PeriodMonthly:
		// Day offset from month start divided by 7, capped at week 4 so the
		// 29th-31st fold into the last bucket.
		week := (t.Day()-1)/7 + 1
		if week > 4 {
			week = 4
		}
		return fmt.Sprintf("Week %d", week)
	case domain.PeriodYearly:
		return t.Month().String()
	}
	return ""
}
