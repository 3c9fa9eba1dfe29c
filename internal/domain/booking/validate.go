package booking

import (
	"fmt"
	"time"

	"wanderstay/internal/domain/availability"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

// Selection is the guest's proposed check-in/check-out pair as it arrives
// from the UI, before any invariant holds.
type Selection struct {
	CheckIn  time.Time
	CheckOut time.Time
}

type ViolationKind string

const (
	MissingDates             ViolationKind = "MISSING_DATES"
	InvertedRange            ViolationKind = "INVERTED_RANGE"
	CheckInUnavailable       ViolationKind = "CHECKIN_UNAVAILABLE"
	CheckOutUnavailable      ViolationKind = "CHECKOUT_UNAVAILABLE"
	RangeContainsUnavailable ViolationKind = "RANGE_CONTAINS_UNAVAILABLE"
	BelowMinimumStay         ViolationKind = "BELOW_MINIMUM_STAY"
	AboveMaximumStay         ViolationKind = "ABOVE_MAXIMUM_STAY"
	InsufficientLeadTime     ViolationKind = "INSUFFICIENT_LEAD_TIME"
)

// RuleViolation is an expected user-input outcome, not a failure: callers
// map Kind to a localized message and may surface Date/Nights/Limit as
// structured context.
type RuleViolation struct {
	Kind   ViolationKind
	Date   time.Time
	Nights int
	Limit  int
}

func (v *RuleViolation) Error() string {
	switch v.Kind {
	case CheckInUnavailable, CheckOutUnavailable, RangeContainsUnavailable:
		return fmt.Sprintf("booking: %s (%s)", v.Kind, v.Date.Format("2006-01-02"))
	case BelowMinimumStay, AboveMaximumStay:
		return fmt.Sprintf("booking: %s (%d nights, limit %d)", v.Kind, v.Nights, v.Limit)
	case InsufficientLeadTime:
		return fmt.Sprintf("booking: %s (earliest %s)", v.Kind, v.Date.Format("2006-01-02"))
	default:
		return fmt.Sprintf("booking: %s", v.Kind)
	}
}

// ValidateSelection checks a proposed stay against the blocked-date set
// and the property's booking rules. Checks run in a fixed order and the
// first violation wins; a nil return means the selection is bookable.
func ValidateSelection(sel Selection, blocked availability.BlockedDates, rules property.BookingRules, today time.Time) *RuleViolation {
	if sel.CheckIn.IsZero() || sel.CheckOut.IsZero() {
		return &RuleViolation{Kind: MissingDates}
	}
	if !sel.CheckOut.After(sel.CheckIn) {
		return &RuleViolation{Kind: InvertedRange}
	}
	if blocked.Contains(sel.CheckIn) {
		return &RuleViolation{Kind: CheckInUnavailable, Date: daterange.Midnight(sel.CheckIn)}
	}
	if blocked.Contains(sel.CheckOut) {
		return &RuleViolation{Kind: CheckOutUnavailable, Date: daterange.Midnight(sel.CheckOut)}
	}

	// Walk each occupied night. The interval is half-open: the checkout
	// date is the departure day and must not double-block a legitimate
	// turnover, so it is excluded here.
	dr := daterange.DateRange{CheckIn: sel.CheckIn.UTC(), CheckOut: sel.CheckOut.UTC()}
	for _, d := range dr.StayDates() {
		if blocked.Contains(d) {
			return &RuleViolation{Kind: RangeContainsUnavailable, Date: d}
		}
	}

	nights := dr.Nights()
	// A present-but-zero minimum is kept as present and trivially
	// satisfied; only an absent field skips the check entirely.
	if rules.MinStayNights != nil && nights < *rules.MinStayNights {
		return &RuleViolation{Kind: BelowMinimumStay, Nights: nights, Limit: *rules.MinStayNights}
	}
	if rules.MaxStayNights != nil && nights > *rules.MaxStayNights {
		return &RuleViolation{Kind: AboveMaximumStay, Nights: nights, Limit: *rules.MaxStayNights}
	}

	if rules.LeadTimeDays != nil {
		earliest := daterange.EarliestCheckIn(today, *rules.LeadTimeDays)
		if daterange.Midnight(sel.CheckIn).Before(earliest) {
			return &RuleViolation{Kind: InsufficientLeadTime, Date: earliest}
		}
	}

	return nil
}
