package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
)

type ShiftHandler struct {
	ShiftService *services.ShiftService
}

func NewShiftHandler(shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{
		ShiftService: shiftService,
	}
}

// CreateShift creates one assignment. A detected conflict comes back as
// 409 with the full conflict payload unless the request forces creation.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req db.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	assignment, conflict, err := h.ShiftService.CreateShift(req, userID.(string))
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		if errors.As(err, &timeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if assignment.ID == "" {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Shift conflicts with existing commitments",
			"conflict": conflict,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"shift":    assignment,
		"conflict": conflict,
	})
}

// CheckShift runs conflict detection without creating anything
func (h *ShiftHandler) CheckShift(c *gin.Context) {
	var req db.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conflict, err := h.ShiftService.CheckAssignment(req.EmployeeID, req.Date, req.ShiftStart, req.ShiftEnd, c.Query("exclude"))
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		if errors.As(err, &timeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conflict)
}

// BulkCreateShifts expands employees x dates into assignments, reporting
// per-cell outcomes
func (h *ShiftHandler) BulkCreateShifts(c *gin.Context) {
	var req db.BulkShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	created, outcomes, err := h.ShiftService.BulkCreate(req, userID.(string))
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		var rangeErr *schedule.InvalidRangeError
		if errors.As(err, &timeErr) || errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created":  created,
		"outcomes": outcomes,
		"total":    len(outcomes),
	})
}

// GetShift returns one assignment by ID
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shift ID is required"})
		return
	}

	assignment, err := h.ShiftService.GetShift(shiftID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListShifts returns assignments for a date range with optional filters
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return
	}

	assignments, err := h.ShiftService.ListShifts(c.Query("employee_id"), c.Query("department_id"), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shifts": assignments,
		"total":  len(assignments),
	})
}

// UpdateShift patches an assignment, re-running conflict detection when
// date or times change
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shift ID is required"})
		return
	}

	var req db.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, conflict, err := h.ShiftService.UpdateShift(shiftID, req)
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		if errors.As(err, &timeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if conflict.Type != schedule.ConflictNone && !req.Force {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Updated shift conflicts with existing commitments",
			"conflict": conflict,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shift":    assignment,
		"conflict": conflict,
	})
}

// CancelShift marks an assignment cancelled
func (h *ShiftHandler) CancelShift(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shift ID is required"})
		return
	}

	if err := h.ShiftService.CancelShift(shiftID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Shift cancelled",
		"shift_id": shiftID,
	})
}

// MarkOvertime flips the informational overtime flag
func (h *ShiftHandler) MarkOvertime(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shift ID is required"})
		return
	}

	var req struct {
		IsOvertime bool `json:"is_overtime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ShiftService.MarkOvertime(shiftID, req.IsOvertime); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Overtime flag updated",
		"shift_id":    shiftID,
		"is_overtime": req.IsOvertime,
	})
}
