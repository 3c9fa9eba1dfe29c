package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderstay/internal/app/commands"
	"wanderstay/internal/app/dto"
	availabilityapp "wanderstay/internal/app/handlers/availability"
	bookingapp "wanderstay/internal/app/handlers/booking"
	"wanderstay/internal/app/middleware"
	"wanderstay/internal/app/queries"
	"wanderstay/internal/domain/calendarsync"
	"wanderstay/internal/domain/property"
	"wanderstay/internal/infra/config"
	"wanderstay/internal/infra/obs"
	"wanderstay/internal/infra/storage/memory"
)

type testApp struct {
	router   http.Handler
	bookings *memory.BookingRepository
	calendar *memory.AvailabilityCalendar
	feeds    *memory.CalendarSyncRepository
}

type feedInspector struct {
	repo *memory.CalendarSyncRepository
}

func (f feedInspector) HasActiveSync(ctx context.Context, id property.PropertyID) (bool, error) {
	return f.repo.HasActive(ctx, id)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	now := day(2026, 7, 1)
	min := 2
	prop, err := property.New(property.CreateParams{
		ID:               "prop-1",
		Host:             "host-1",
		Title:            "Seafront duplex",
		City:             "Nice",
		Country:          "FR",
		GuestsLimit:      4,
		NightlyRateCents: 15000,
		Rules:            property.BookingRules{MinStayNights: &min},
		Now:              now,
	})
	require.NoError(t, err)
	prop.List(now)

	props := memory.NewPropertyRepository()
	require.NoError(t, props.Save(context.Background(), prop))

	app := &testApp{
		bookings: memory.NewBookingRepository(),
		calendar: memory.NewAvailabilityCalendar(),
		feeds:    memory.NewCalendarSyncRepository(),
	}

	admitHandler := &bookingapp.AdmitBookingHandler{
		Properties:   props,
		Availability: app.calendar,
		Sync:         feedInspector{repo: app.feeds},
		Bookings:     app.bookings,
		Notifier:     memory.NewNotifier(),
		Outbox:       memory.NewOutbox(),
		Now:          func() time.Time { return now },
	}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.AdmitBookingCommand, *bookingapp.AdmitBookingResult](
		commandBus, bookingapp.AdmitBookingCommand{}.Key(), admitHandler)
	dispatcher := middleware.ChainCommands(commandBus, middleware.Idempotency(memory.NewIdempotencyStore(), nil, bookingapp.ReplayErrorCodec{}))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[availabilityapp.GetBlockedDatesQuery, dto.BlockedDates](
		queryBus, availabilityapp.GetBlockedDatesQuery{}.Key(), &availabilityapp.GetBlockedDatesHandler{
			Source: app.calendar,
			Now:    func() time.Time { return now },
		})
	queries.RegisterHandler[bookingapp.ValidateSelectionQuery, dto.ValidationResult](
		queryBus, bookingapp.ValidateSelectionQuery{}.Key(), &bookingapp.ValidateSelectionHandler{
			Properties: props,
			Source:     app.calendar,
			Now:        func() time.Time { return now },
		})

	srv := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Booking:      BookingHandler{Commands: dispatcher, Queries: queryBus},
		Availability: AvailabilityHandler{Queries: queryBus},
	})
	app.router = srv.Handler
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/livez", nil, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/readyz", nil, nil).Code)
}

func TestBlockedDatesEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.calendar.BlockDate("prop-1", day(2026, 7, 16), "host block")

	path := fmt.Sprintf("/api/v1/properties/prop-1/blocked-dates?from=%s&to=%s",
		day(2026, 7, 15).Format(time.RFC3339), day(2026, 7, 22).Format(time.RFC3339))
	rec := app.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.BlockedDates
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Blocked, 1)
	assert.Equal(t, day(2026, 7, 16), res.Blocked[0].UTC())
}

func TestBlockedDatesEndpointRejectsMalformedWindow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/properties/prop-1/blocked-dates?from=not-a-date", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/properties/prop-1/blocked-dates?to=2026-07-32", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Omitted bounds still fall back to the default window.
	rec = app.do(t, http.MethodGet, "/api/v1/properties/prop-1/blocked-dates", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateSelectionEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/properties/prop-1/validate-selection", map[string]any{
		"check_in":  day(2026, 7, 15),
		"check_out": day(2026, 7, 16),
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.OK)
	assert.Equal(t, "BELOW_MINIMUM_STAY", res.Reason)
}

func TestAdmitBookingEndpoint(t *testing.T) {
	app := newTestApp(t)

	body := map[string]any{
		"property_id": "prop-1",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}
	rec := app.do(t, http.MethodPost, "/api/v1/bookings", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Booking dto.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "CONFIRMED", res.Booking.Status)
	assert.Equal(t, int64(45000), res.Booking.TotalCents)
}

func TestAdmitBookingEndpointPendingWithFeed(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.feeds.Save(context.Background(), calendarsync.Feed{
		ID:         "feed-1",
		PropertyID: "prop-1",
		URL:        "https://calendars.example.com/ical/prop-1.ics",
		Enabled:    true,
		Status:     calendarsync.SyncPending,
		CreatedAt:  day(2026, 7, 1),
	}))

	rec := app.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"property_id": "prop-1",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Booking dto.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "PENDING_CONFIRMATION", res.Booking.Status)
}

func TestAdmitBookingEndpointRejection(t *testing.T) {
	app := newTestApp(t)
	app.calendar.BlockDate("prop-1", day(2026, 7, 16), "host block")

	rec := app.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"property_id": "prop-1",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res struct {
		Result dto.ValidationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "RANGE_CONTAINS_UNAVAILABLE", res.Result.Reason)
}

func TestAdmitBookingEndpointRejectionReplay(t *testing.T) {
	app := newTestApp(t)
	app.calendar.BlockDate("prop-1", day(2026, 7, 16), "host block")

	body := map[string]any{
		"property_id": "prop-1",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}
	headers := map[string]string{"Idempotency-Key": "retry-422"}

	first := app.do(t, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusUnprocessableEntity, first.Code)

	second := app.do(t, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusUnprocessableEntity, second.Code,
		"a retried rejection keeps the original status")

	var res struct {
		Result dto.ValidationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &res))
	assert.Equal(t, "RANGE_CONTAINS_UNAVAILABLE", res.Result.Reason)
}

func TestAdmitBookingEndpointUnknownProperty(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"property_id": "prop-missing",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmitBookingEndpointIdempotentReplay(t *testing.T) {
	app := newTestApp(t)

	body := map[string]any{
		"property_id": "prop-1",
		"guest_id":    "guest-1",
		"check_in":    day(2026, 7, 15),
		"check_out":   day(2026, 7, 18),
		"guests":      2,
	}
	headers := map[string]string{"Idempotency-Key": "retry-123"}

	first := app.do(t, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := app.do(t, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b struct {
		Booking dto.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Booking.ID, b.Booking.ID)

	bookings, err := app.bookings.ListByGuest(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Len(t, bookings, 1, "replay must not admit a second booking")
}
