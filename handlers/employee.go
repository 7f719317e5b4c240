package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/services"
)

type EmployeeHandler struct {
	EmployeeService *services.EmployeeService
	AuthService     *services.AuthService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, authService *services.AuthService) *EmployeeHandler {
	return &EmployeeHandler{
		EmployeeService: employeeService,
		AuthService:     authService,
	}
}

// CreateEmployee registers a new employee in the directory
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req db.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passwordHash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	employee, err := h.EmployeeService.CreateEmployee(req, passwordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployee returns one employee by ID
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID := c.Param("id")
	if employeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Employee ID is required"})
		return
	}

	employee, err := h.EmployeeService.GetEmployee(employeeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	c.JSON(http.StatusOK, employee)
}

// ListEmployees returns active employees, optionally filtered by department
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.EmployeeService.ListEmployees(c.Query("department_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": employees,
		"total":     len(employees),
	})
}

// UpdateEmployee patches employee fields
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employeeID := c.Param("id")
	if employeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Employee ID is required"})
		return
	}

	var req db.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.EmployeeService.UpdateEmployee(employeeID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, employee)
}

// ListDepartments returns active departments with their staffing targets
func (h *EmployeeHandler) ListDepartments(c *gin.Context) {
	departments, err := h.EmployeeService.ListDepartments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": departments,
		"total":       len(departments),
	})
}
