package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"wanderstay/internal/app/dto"
	availabilityapp "wanderstay/internal/app/handlers/availability"
	"wanderstay/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) BlockedDates(c *gin.Context) {
	propertyID := c.Param("id")
	from, ok := parseQueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := parseQueryTime(c, "to")
	if !ok {
		return
	}
	query := availabilityapp.GetBlockedDatesQuery{PropertyID: propertyID, From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetBlockedDatesQuery, dto.BlockedDates](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseQueryTime reads an optional RFC3339 query parameter. An absent
// parameter yields the zero time; a malformed one writes a 400 response.
func parseQueryTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC3339"})
		return time.Time{}, false
	}
	return t, true
}

var _ AvailabilityHTTP = AvailabilityHandler{}
