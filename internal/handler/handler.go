// Package handler exposes the booking engine over HTTP. Handlers stay thin:
// parse, delegate to the services, translate the error taxonomy to status
// codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/service"
)

type Handler struct {
	availability *service.AvailabilityService
	booking      *service.BookingService
	logger       *zap.Logger
}

func New(availability *service.AvailabilityService, booking *service.BookingService, logger *zap.Logger) *Handler {
	return &Handler{
		availability: availability,
		booking:      booking,
		logger:       logger,
	}
}

// RegisterRoutes mounts all API routes behind the auth middleware.
func (h *Handler) RegisterRoutes(router *gin.Engine, jwtSecret string) {
	api := router.Group("/api")
	api.Use(JWTAuth(jwtSecret))

	teachers := api.Group("/teachers")
	{
		teachers.GET("/:id/slots", h.GetSlots)
		teachers.GET("/:id/availability", h.ListRules)
		teachers.POST("/:id/availability", h.CreateRule)
		teachers.DELETE("/:id/availability/:rule_id", h.DeleteRule)
	}

	lessons := api.Group("/lessons")
	{
		lessons.POST("", h.CreateBooking)
		lessons.POST("/proposals", h.ProposeLesson)
		lessons.POST("/:id/accept", h.transitionHandler(service.ActionAccept))
		lessons.POST("/:id/decline", h.transitionHandler(service.ActionDecline))
		lessons.POST("/:id/cancel", h.transitionHandler(service.ActionCancel))
	}
}

// writeError maps the engine's error taxonomy onto HTTP status codes. Raw
// internal errors are logged but never leaked to clients.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func queryTime(c *gin.Context, name string) (time.Time, error) {
	return time.Parse(time.RFC3339, c.Query(name))
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
