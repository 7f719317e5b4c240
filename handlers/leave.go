package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/services"
)

type LeaveHandler struct {
	LeaveService *services.LeaveService
}

func NewLeaveHandler(leaveService *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{
		LeaveService: leaveService,
	}
}

// CreateLeave records a new leave request in pending state
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	var req db.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	record, err := h.LeaveService.CreateLeave(req, userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// SetLeaveStatus approves or rejects a pending leave request
func (h *LeaveHandler) SetLeaveStatus(c *gin.Context) {
	leaveID := c.Param("id")
	if leaveID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Leave ID is required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.LeaveService.SetLeaveStatus(leaveID, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Leave status updated",
		"leave_id": leaveID,
		"status":   req.Status,
	})
}

// ListLeave returns leave records with optional employee and status filters
func (h *LeaveHandler) ListLeave(c *gin.Context) {
	records, err := h.LeaveService.ListLeave(c.Query("employee_id"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leave_records": records,
		"total":         len(records),
	})
}
