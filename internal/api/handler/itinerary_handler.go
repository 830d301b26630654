package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderplan/wanderplan/internal/api/dto"
	"github.com/wanderplan/wanderplan/internal/itinerary"
)

// GetItinerary handles GET /itineraries/:itinerary_id
// Returns 404 until the completing stage has stored the document; an
// itinerary may outlive the job that produced it.
func (h *ItineraryHandler) GetItinerary(c *gin.Context) {
	itineraryID := c.Param("itinerary_id")

	if _, err := uuid.Parse(itineraryID); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "itinerary_id must be a valid UUID"})
		return
	}

	it, err := h.itineraries.Get(c.Request.Context(), itineraryID)
	if err != nil {
		if errors.Is(err, itinerary.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Itinerary not found"})
			return
		}
		h.logger.Error("Failed to get itinerary",
			slog.String("itinerary_id", itineraryID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get itinerary"})
		return
	}

	c.JSON(http.StatusOK, it)
}
