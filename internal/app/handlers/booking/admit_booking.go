package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wanderstay/internal/app/commands"
	"wanderstay/internal/app/dto"
	"wanderstay/internal/app/middleware"
	"wanderstay/internal/app/outbox"
	"wanderstay/internal/app/policies"
	domainavailability "wanderstay/internal/domain/availability"
	domainbooking "wanderstay/internal/domain/booking"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/domain/shared/daterange"
)

const admitBookingKey = "booking.admit"

const notifyTimeout = 5 * time.Second

type AdmitBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c AdmitBookingCommand) Key() string { return admitBookingKey }

func (c AdmitBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c AdmitBookingCommand) ResultPrototype() any { return &AdmitBookingResult{} }

type AdmitBookingResult struct {
	Booking dto.Booking `json:"booking"`
}

// AdmitBookingHandler decides whether a booking request is persisted and
// with which lifecycle status. Availability and calendar-sync state are
// read fresh on every attempt; client-side validation is never trusted.
type AdmitBookingHandler struct {
	Properties   property.Repository
	Availability domainavailability.Calendar
	Sync         policies.CalendarSyncInspector
	Bookings     domainbooking.Repository
	Notifier     policies.Notifier
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Now          func() time.Time
	FetchTimeout time.Duration

	locks propertyLocks
}

func (h *AdmitBookingHandler) Handle(ctx context.Context, cmd AdmitBookingCommand) (*AdmitBookingResult, error) {
	propID := property.PropertyID(cmd.PropertyID)

	// Serialize admissions per property so two overlapping requests
	// cannot both pass revalidation before either write lands.
	unlock := h.locks.acquire(propID)
	defer unlock()

	now := h.now()

	prop, err := h.Properties.ByID(ctx, propID)
	if err != nil {
		return nil, err
	}
	if !prop.Bookable() {
		return nil, property.ErrNotListed
	}

	days, err := h.fetchAvailability(ctx, propID, cmd, now)
	if err != nil {
		return nil, err
	}
	blocked := domainavailability.BuildBlockedDates(days)

	sel := domainbooking.Selection{CheckIn: cmd.CheckIn, CheckOut: cmd.CheckOut}
	if v := domainbooking.ValidateSelection(sel, blocked, prop.Rules, now); v != nil {
		return nil, rejected(v)
	}

	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, rejected(&domainbooking.RuleViolation{Kind: domainbooking.InvertedRange})
	}

	request, err := domainbooking.NewRequest(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		PropertyID: prop.ID,
		GuestID:    cmd.GuestID,
		Range:      dr,
		Guests:     cmd.Guests,
		TotalCents: prop.StayPriceCents(dr.Nights()),
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	syncActive := h.syncStateFailOpen(ctx, propID)
	if syncActive {
		err = request.AdmitPending(now)
	} else {
		err = request.AdmitConfirmed(now)
	}
	if err != nil {
		return nil, err
	}

	if err := h.Bookings.Create(ctx, request); err != nil {
		return nil, persistenceFailure(err)
	}

	// The booking record is the source of truth; the calendar write-back
	// only feeds later window queries, so its failure is logged, not
	// surfaced. A configured turnover buffer widens the blocked span on
	// both sides of the stay.
	blockRange := dr
	if prop.Rules.BufferDays != nil && *prop.Rules.BufferDays > 0 {
		buf := *prop.Rules.BufferDays
		blockRange = daterange.DateRange{
			CheckIn:  dr.CheckIn.AddDate(0, 0, -buf),
			CheckOut: dr.CheckOut.AddDate(0, 0, buf),
		}
	}
	if err := h.Availability.BlockRange(ctx, propID, blockRange, string(request.ID)); err != nil {
		h.logger().Warn("calendar write-back failed", "booking_id", request.ID, "error", err)
	}

	pending := request.PendingEvents()
	request.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		h.logger().Warn("outbox record failed", "booking_id", request.ID, "error", err)
	}

	if request.Status == domainbooking.StatusConfirmed {
		h.notifyConfirmed(request)
	}

	return &AdmitBookingResult{Booking: dto.MapBooking(request)}, nil
}

func (h *AdmitBookingHandler) fetchAvailability(ctx context.Context, id property.PropertyID, cmd AdmitBookingCommand, now time.Time) ([]domainavailability.DayAvailability, error) {
	from := daterange.Midnight(now)
	if !cmd.CheckIn.IsZero() && cmd.CheckIn.Before(from) {
		from = daterange.Midnight(cmd.CheckIn)
	}
	to := cmd.CheckOut
	if to.IsZero() {
		to = from
	}
	if h.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.FetchTimeout)
		defer cancel()
	}
	days, err := h.Availability.FetchWindow(ctx, id, from, daterange.Midnight(to))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, upstreamFailure(KindUpstreamTimeout, err)
		}
		return nil, upstreamFailure(KindUpstreamUnavailable, err)
	}
	return days, nil
}

// syncStateFailOpen answers the calendar-sync question and absorbs lookup
// failures as "no sync". Availability-over-correctness: a failed lookup
// confirms the booking immediately rather than holding it. Revisit here
// if that policy ever changes.
func (h *AdmitBookingHandler) syncStateFailOpen(ctx context.Context, id property.PropertyID) bool {
	active, err := h.Sync.HasActiveSync(ctx, id)
	if err != nil {
		h.logger().Warn("calendar sync lookup failed, assuming no sync", "property_id", id, "error", err)
		return false
	}
	return active
}

// notifyConfirmed fires the confirmation notice without blocking or
// failing the admission path. Runs on a detached context: the request
// context dies with the response.
func (h *AdmitBookingHandler) notifyConfirmed(b *domainbooking.Booking) {
	if h.Notifier == nil {
		return
	}
	log := h.logger()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.Notifier.ConfirmationNotice(ctx, b); err != nil {
			log.Warn("confirmation notice failed", "booking_id", b.ID, "error", err)
		}
	}()
}

func (h *AdmitBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *AdmitBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *AdmitBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[AdmitBookingCommand, *AdmitBookingResult] = (*AdmitBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*AdmitBookingCommand)(nil)
