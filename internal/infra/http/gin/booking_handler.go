package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wanderstay/internal/app/commands"
	"wanderstay/internal/app/dto"
	bookingapp "wanderstay/internal/app/handlers/booking"
	"wanderstay/internal/app/queries"
	"wanderstay/internal/domain/property"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type admitBookingRequest struct {
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

func (h BookingHandler) Admit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req admitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.AdmitBookingCommand{
		CommandID:       uuid.NewString(),
		PropertyID:      req.PropertyID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.AdmitBookingCommand, *bookingapp.AdmitBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		status, body := mapAdmissionError(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type validateSelectionRequest struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

func (h BookingHandler) ValidateSelection(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req validateSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := bookingapp.ValidateSelectionQuery{
		PropertyID: c.Param("id"),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	}
	result, err := queries.Ask[bookingapp.ValidateSelectionQuery, dto.ValidationResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func mapAdmissionError(err error) (int, gin.H) {
	if errors.Is(err, property.ErrNotFound) {
		return http.StatusNotFound, gin.H{"error": err.Error()}
	}
	if errors.Is(err, property.ErrNotListed) {
		return http.StatusConflict, gin.H{"error": err.Error()}
	}
	ae, ok := bookingapp.AsAdmissionError(err)
	if !ok {
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	}
	switch ae.Kind {
	case bookingapp.KindRejected:
		return http.StatusUnprocessableEntity, gin.H{
			"error":  "booking rejected",
			"result": dto.MapValidation(ae.Violation),
		}
	case bookingapp.KindUpstreamTimeout:
		return http.StatusGatewayTimeout, gin.H{"error": ae.Error()}
	case bookingapp.KindUpstreamUnavailable:
		return http.StatusBadGateway, gin.H{"error": ae.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": ae.Error()}
	}
}

var _ BookingHTTP = BookingHandler{}
