package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

// GET /api/teachers/:id/slots?from=ISO&to=ISO&duration=60
func (h *Handler) GetSlots(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
		return
	}

	from, err := queryTime(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return
	}

	duration := queryInt(c, "duration", 60)
	minAdvanceHours := queryInt(c, "min_advance_hours", 0)
	maxBookingDays := queryInt(c, "max_booking_days", 0)

	slots, err := h.availability.GetBookableSlots(c.Request.Context(), teacherID, from, to, duration, minAdvanceHours, maxBookingDays)
	if err != nil {
		h.writeError(c, err)
		return
	}

	type slotResponse struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{Start: s.Start, End: s.End})
	}

	c.JSON(http.StatusOK, out)
}

type createRuleRequest struct {
	Kind        model.RuleKind `json:"kind"`
	Weekday     int            `json:"weekday"`
	Date        *time.Time     `json:"date"`
	StartHour   int            `json:"start_hour"`
	StartMinute int            `json:"start_minute"`
	EndHour     int            `json:"end_hour"`
	EndMinute   int            `json:"end_minute"`
}

// POST /api/teachers/:id/availability
func (h *Handler) CreateRule(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
		return
	}

	actorID, ok := currentUserID(c)
	if !ok || actorID != teacherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only manage own availability"})
		return
	}

	var req createRuleRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.availability.CreateRule(c.Request.Context(), teacherID, &model.AvailabilityRule{
		Kind:        req.Kind,
		Weekday:     req.Weekday,
		Date:        req.Date,
		StartHour:   req.StartHour,
		StartMinute: req.StartMinute,
		EndHour:     req.EndHour,
		EndMinute:   req.EndMinute,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GET /api/teachers/:id/availability
func (h *Handler) ListRules(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
		return
	}

	rules, err := h.availability.ListRules(c.Request.Context(), teacherID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

// DELETE /api/teachers/:id/availability/:rule_id
func (h *Handler) DeleteRule(c *gin.Context) {
	teacherID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
		return
	}
	ruleID, err := pathID(c, "rule_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	actorID, ok := currentUserID(c)
	if !ok || actorID != teacherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only manage own availability"})
		return
	}

	if err := h.availability.DeleteRule(c.Request.Context(), teacherID, ruleID); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
