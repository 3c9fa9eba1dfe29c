package booking

import (
	"context"
	"time"

	"wanderstay/internal/app/dto"
	"wanderstay/internal/app/queries"
	domainavailability "wanderstay/internal/domain/availability"
	domainbooking "wanderstay/internal/domain/booking"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

const validateSelectionKey = "booking.validate_selection"

type ValidateSelectionQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q ValidateSelectionQuery) Key() string { return validateSelectionKey }

// ValidateSelectionHandler answers the pre-submit "are these dates
// bookable" question for the UI. Admission re-runs the same checks
// against fresh data, so this result is advisory only.
type ValidateSelectionHandler struct {
	Properties property.Repository
	Source     domainavailability.Source
	Now        func() time.Time
}

func (h *ValidateSelectionHandler) Handle(ctx context.Context, q ValidateSelectionQuery) (dto.ValidationResult, error) {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}

	sel := domainbooking.Selection{CheckIn: q.CheckIn, CheckOut: q.CheckOut}
	if sel.CheckIn.IsZero() || sel.CheckOut.IsZero() {
		return dto.MapValidation(&domainbooking.RuleViolation{Kind: domainbooking.MissingDates}), nil
	}

	prop, err := h.Properties.ByID(ctx, property.PropertyID(q.PropertyID))
	if err != nil {
		return dto.ValidationResult{}, err
	}

	blocked := domainavailability.BlockedDates{}
	if sel.CheckOut.After(sel.CheckIn) {
		days, err := h.Source.FetchWindow(ctx, prop.ID, daterange.Midnight(sel.CheckIn), daterange.Midnight(sel.CheckOut))
		if err != nil {
			return dto.ValidationResult{}, err
		}
		blocked = domainavailability.BuildBlockedDates(days)
	}

	return dto.MapValidation(domainbooking.ValidateSelection(sel, blocked, prop.Rules, now)), nil
}

var _ queries.Handler[ValidateSelectionQuery, dto.ValidationResult] = (*ValidateSelectionHandler)(nil)
