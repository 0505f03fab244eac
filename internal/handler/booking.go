package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/service"
)

type bookingRequest struct {
	TeacherID       int64     `json:"teacher_id"`
	StudentID       int64     `json:"student_id"` // proposals only; self-bookings use the token identity
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Title           string    `json:"title"`
	Recurring       bool      `json:"recurring"`
}

// POST /api/lessons — student books a slot for themselves.
func (h *Handler) CreateBooking(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req bookingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.booking.CreateBooking(c.Request.Context(), service.BookingProposal{
		TeacherID:       req.TeacherID,
		StudentID:       actorID,
		Start:           req.Start,
		End:             req.End,
		DurationMinutes: req.DurationMinutes,
		Title:           req.Title,
		Recurring:       req.Recurring,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// POST /api/lessons/proposals — teacher schedules a pending lesson for a student.
func (h *Handler) ProposeLesson(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req bookingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.booking.ProposeLesson(c.Request.Context(), service.BookingProposal{
		TeacherID:       actorID,
		StudentID:       req.StudentID,
		Start:           req.Start,
		End:             req.End,
		DurationMinutes: req.DurationMinutes,
		Title:           req.Title,
		Recurring:       req.Recurring,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// transitionHandler builds the accept/decline/cancel handlers.
func (h *Handler) transitionHandler(action service.TransitionAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		lessonID, err := pathID(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
			return
		}

		lesson, err := h.booking.TransitionLesson(c.Request.Context(), lessonID, action, actorID)
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, lesson)
	}
}
