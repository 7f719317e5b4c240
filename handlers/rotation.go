package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
)

type RotationHandler struct {
	RotationService *services.RotationService
}

func NewRotationHandler(rotationService *services.RotationService) *RotationHandler {
	return &RotationHandler{
		RotationService: rotationService,
	}
}

// CreateRotation creates a new rotation with a preset or custom pattern
func (h *RotationHandler) CreateRotation(c *gin.Context) {
	var req db.CreateRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rotation, err := h.RotationService.CreateRotation(req, userID.(string))
	if err != nil {
		var patternErr *schedule.InvalidPatternError
		if errors.As(err, &patternErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rotation)
}

// GetRotation returns one rotation by ID
func (h *RotationHandler) GetRotation(c *gin.Context) {
	rotationID := c.Param("id")
	if rotationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rotation ID is required"})
		return
	}

	rotation, err := h.RotationService.GetRotation(rotationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rotation not found"})
		return
	}

	c.JSON(http.StatusOK, rotation)
}

// ListRotations returns all rotations, optionally only active ones
func (h *RotationHandler) ListRotations(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	rotations, err := h.RotationService.ListRotations(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rotations": rotations,
		"total":     len(rotations),
	})
}

// UpdateRotation patches rotation fields
func (h *RotationHandler) UpdateRotation(c *gin.Context) {
	rotationID := c.Param("id")
	if rotationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rotation ID is required"})
		return
	}

	var req db.UpdateRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rotation, err := h.RotationService.UpdateRotation(rotationID, req)
	if err != nil {
		var patternErr *schedule.InvalidPatternError
		if errors.As(err, &patternErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rotation)
}

// DeactivateRotation switches a rotation off without deleting it
func (h *RotationHandler) DeactivateRotation(c *gin.Context) {
	rotationID := c.Param("id")
	if rotationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rotation ID is required"})
		return
	}

	if err := h.RotationService.DeactivateRotation(rotationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Rotation deactivated",
		"rotation_id": rotationID,
	})
}

// GetRotationCalendar projects the rotation's pattern onto a date range
func (h *RotationHandler) GetRotationCalendar(c *gin.Context) {
	rotationID := c.Param("id")
	if rotationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rotation ID is required"})
		return
	}

	from, to, err := parseRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	days, err := h.RotationService.PreviewCalendar(rotationID, from, to)
	if err != nil {
		var rangeErr *schedule.InvalidRangeError
		if errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rotation_id": rotationID,
		"days":        days,
	})
}

// GetRotationStats summarizes work/rest counts for a rotation over a range
func (h *RotationHandler) GetRotationStats(c *gin.Context) {
	rotationID := c.Param("id")
	if rotationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rotation ID is required"})
		return
	}

	from, to, err := parseRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.RotationService.CalendarStats(rotationID, from, to)
	if err != nil {
		var rangeErr *schedule.InvalidRangeError
		if errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseRangeQuery reads from/to date query params, defaulting to the next
// four weeks when absent.
func parseRangeQuery(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := schedule.StartOfWeek(now)
	to := from.AddDate(0, 0, 27)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(schedule.DateLayout, v)
		if err != nil {
			return from, to, &schedule.InvalidTimeRangeError{Value: v}
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(schedule.DateLayout, v)
		if err != nil {
			return from, to, &schedule.InvalidTimeRangeError{Value: v}
		}
		to = parsed
	}
	return from, to, nil
}
