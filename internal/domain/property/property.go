package property

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("property: not found")
	ErrNotListed     = errors.New("property: not open for booking")
	ErrTitleRequired = errors.New("property: title is required")
	ErrGuestsLimit   = errors.New("property: guests limit must be at least 1")
	ErrNightlyRate   = errors.New("property: nightly rate must be non-negative")
	ErrStayBounds    = errors.New("property: min stay must be <= max stay")
)

type PropertyID string
type HostID string

type PropertyState string

const (
	PropertyDraft     PropertyState = "DRAFT"
	PropertyListed    PropertyState = "LISTED"
	PropertySuspended PropertyState = "SUSPENDED"
)

// BookingRules are the host-configured constraints checked at validation
// time. Every field is optional: nil means the rule is not enforced. An
// explicit zero is kept as present so "0-night minimum" stays
// distinguishable from "no minimum" (both always pass, neither crashes).
type BookingRules struct {
	MinStayNights *int
	MaxStayNights *int
	LeadTimeDays  *int
	BufferDays    *int
}

type Property struct {
	ID               PropertyID
	Host             HostID
	Title            string
	Description      string
	City             string
	Country          string
	GuestsLimit      int
	NightlyRateCents int64
	Rules            BookingRules
	State            PropertyState
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

type CreateParams struct {
	ID               PropertyID
	Host             HostID
	Title            string
	Description      string
	City             string
	Country          string
	GuestsLimit      int
	NightlyRateCents int64
	Rules            BookingRules
	Now              time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.GuestsLimit < 1 {
		return nil, ErrGuestsLimit
	}
	if params.NightlyRateCents < 0 {
		return nil, ErrNightlyRate
	}
	if err := params.Rules.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	return &Property{
		ID:               params.ID,
		Host:             params.Host,
		Title:            params.Title,
		Description:      params.Description,
		City:             params.City,
		Country:          params.Country,
		GuestsLimit:      params.GuestsLimit,
		NightlyRateCents: params.NightlyRateCents,
		Rules:            params.Rules,
		State:            PropertyDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (p *Property) List(now time.Time) {
	p.State = PropertyListed
	p.UpdatedAt = now.UTC()
}

// Bookable reports whether new stays may be admitted.
func (p *Property) Bookable() bool {
	return p.State == PropertyListed
}

// StayPriceCents is plain nightly-rate arithmetic; anything richer lives
// outside this engine.
func (p *Property) StayPriceCents(nights int) int64 {
	if nights < 0 {
		return 0
	}
	return p.NightlyRateCents * int64(nights)
}

func (r BookingRules) Validate() error {
	if r.MinStayNights != nil && r.MaxStayNights != nil && *r.MinStayNights > *r.MaxStayNights {
		return ErrStayBounds
	}
	return nil
}
