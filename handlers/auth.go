package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/services"
)

type AuthHandler struct {
	AuthService     *services.AuthService
	EmployeeService *services.EmployeeService
}

func NewAuthHandler(authService *services.AuthService, employeeService *services.EmployeeService) *AuthHandler {
	return &AuthHandler{
		AuthService:     authService,
		EmployeeService: employeeService,
	}
}

// Login authenticates an employee and returns a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.AuthService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes the current token
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := c.Get("auth_token")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.AuthService.Logout(c.Request.Context(), token.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated employee's own record
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	employee, err := h.EmployeeService.GetEmployee(userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	roleLabel, _ := c.Get("user_role_label")
	c.JSON(http.StatusOK, gin.H{
		"employee":   employee,
		"role_label": roleLabel,
	})
}
