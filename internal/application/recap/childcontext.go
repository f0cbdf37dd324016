package recap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// fallbackContext is returned whenever the child lookup fails or the child
// does not belong to the requesting user. The pipeline keeps going with a
// generic name instead of failing the pair.
var fallbackContext = domain.ChildContext{Name: "Your child", AgeString: ""}

type childStore interface {
	Get(ctx context.Context, childID string) (*domain.Child, error)
}

// ContextResolver resolves a child's display name and current age string.
type ContextResolver struct {
	children childStore
	now      func() time.Time
}

func NewContextResolver(children childStore) *ContextResolver {
	return &ContextResolver{children: children, now: time.Now}
}

// Resolve never fails: lookup errors and ownership mismatches degrade to the
// generic fallback context.
func (r *ContextResolver) Resolve(ctx context.Context, userID, childID string) domain.ChildContext {
	child, err := r.children.Get(ctx, childID)
	if err != nil {
		slog.Warn("child lookup failed, using fallback context", "child_id", childID, "error", err)
		return fallbackContext
	}
	if child.UserID != userID {
		slog.Warn("child ownership mismatch, using fallback context", "child_id", childID, "user_id", userID)
		return fallbackContext
	}
	return domain.ChildContext{
		Name:      child.Name,
		AgeString: AgeString(child.BirthDate, r.now()),
	}
}

// AgeString renders a child's age as of now, exact to the day/month boundary:
// under one month in days (weeks once >= 7 days), 1-11 months in months, and
// from 12 months on in years with a month remainder when non-zero.
func AgeString(birth, now time.Time) string {
	birth = birth.UTC()
	now = now.UTC()
	if now.Before(birth) {
		return ""
	}

	months := calendarMonths(birth, now)
	switch {
	case months < 1:
		days := int(now.Sub(birth).Hours() / 24)
		if days >= 7 {
			return plural(days/7, "week") + " old"
		}
		return plural(days, "day") + " old"
	case months < 12:
		return plural(months, "month") + " old"
	default:
		years := months / 12
		rem := months % 12
		if rem == 0 {
			return plural(years, "year") + " old"
		}
		return fmt.Sprintf("%s and %s old", plural(years, "year"), plural(rem, "month"))
	}
}

// calendarMonths counts whole calendar months elapsed between two instants:
// the month counter only advances once the day-of-month boundary is reached.
func calendarMonths(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
