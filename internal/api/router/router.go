package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderplan/wanderplan/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "wanderplan-api",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	itineraryHandler := handler.NewItineraryHandler(deps)

	// POST /jobs - Create an itinerary generation job
	r.POST("/jobs", jobHandler.CreateJob)

	// GET /jobs/:job_id/status - Poll job progress
	r.GET("/jobs/:job_id/status", jobHandler.GetJobStatus)

	// GET /itineraries/:itinerary_id - Fetch an assembled itinerary
	r.GET("/itineraries/:itinerary_id", itineraryHandler.GetItinerary)

	return r
}
