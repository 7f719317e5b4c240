package db

import "time"

// Shift assignment statuses. Completed shifts are never physically deleted,
// only cancelled.
const (
	ShiftStatusScheduled  = "scheduled"
	ShiftStatusInProgress = "in_progress"
	ShiftStatusCompleted  = "completed"
	ShiftStatusCancelled  = "cancelled"
)

// ===========================
// ROTATION MODELS
// ===========================

// RotationPattern is a cyclic work/rest template. Pattern holds one flag per
// day of the cycle (1 = work, 0 = rest); WorkDays/RestDays are derived counts.
type RotationPattern struct {
	WorkDays    int   `json:"work_days"`
	RestDays    int   `json:"rest_days"`
	Pattern     []int `json:"pattern"`
	CycleLength int   `json:"cycle_length"`
}

// EmployeeRotation binds a RotationPattern to a named rotation and a set of
// employees. Patterns are replaced whole, never partially edited; rotations
// are deactivated, never deleted.
type EmployeeRotation struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PatternType string          `json:"pattern_type"` // 4x2, 5x2, 6x1, 3x2x2, custom
	Pattern     RotationPattern `json:"pattern"`
	AnchorDate  string          `json:"anchor_date"` // YYYY-MM-DD, first day of the cycle
	IsActive    bool            `json:"is_active"`
	EmployeeIDs []string        `json:"employee_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`

	// For API responses
	EmployeeCount int `json:"employee_count,omitempty"`
}

// ===========================
// SHIFT MODELS
// ===========================

// ShiftAssignment is a concrete, dated, timed work commitment for one
// employee. Times are wall-clock HH:MM; an end before the start means the
// shift crosses midnight into the next day.
type ShiftAssignment struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	Date         string `json:"date"`        // YYYY-MM-DD
	ShiftStart   string `json:"shift_start"` // HH:MM
	ShiftEnd     string `json:"shift_end"`   // HH:MM
	ShiftType    string `json:"shift_type"`  // morning, afternoon, night, graveyard, custom
	Status       string `json:"status"`      // scheduled, in_progress, completed, cancelled
	IsOvertime   bool   `json:"is_overtime"`
	DepartmentID string `json:"department_id"`
	Location     string `json:"location,omitempty"`

	// Advisory conflict flags set at creation time. Not authoritative: the
	// detector recomputes conflicts on demand.
	HasConflict    bool   `json:"has_conflict"`
	ConflictReason string `json:"conflict_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`

	// For API responses (populated via JOINs)
	EmployeeName   string `json:"employee_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
}

// ConflictResult is a derived value computed fresh for every check. It is
// never persisted as source of truth.
type ConflictResult struct {
	Type             string           `json:"type"`     // overlap, unavailable, exceeded_hours, rotation_conflict, none
	Severity         string           `json:"severity"` // critical, warning, info, none
	Message          string           `json:"message,omitempty"`
	ConflictingShift *ShiftAssignment `json:"conflicting_shift,omitempty"`
	Resolution       string           `json:"resolution,omitempty"`
}

// ===========================
// COVERAGE MODELS
// ===========================

// CoverageDayAnalysis is the per-date staffing rollup against a required
// headcount target. Recomputed on demand, never persisted.
type CoverageDayAnalysis struct {
	Date                string         `json:"date"`
	AssignmentCount     int            `json:"assignment_count"`
	CoveragePercent     int            `json:"coverage_percent"`
	DepartmentBreakdown map[string]int `json:"department_breakdown"`
	ConflictCount       int            `json:"conflict_count"`
	Status              string         `json:"status"` // overstaffed, adequate, understaffed
}

// CoverageTrend is the weekly rollup, keyed by week-of-month.
type CoverageTrend struct {
	Week             int `json:"week"`
	AveragePercent   int `json:"average_percent"`
	TotalAssignments int `json:"total_assignments"`
	ConflictDays     int `json:"conflict_days"` // days classified understaffed
}

// CoverageSummary aggregates the whole analyzed period.
type CoverageSummary struct {
	UnderstaffedDays int `json:"understaffed_days"`
	AdequateDays     int `json:"adequate_days"`
	OverstaffedDays  int `json:"overstaffed_days"`
	TotalConflicts   int `json:"total_conflicts"`
	AveragePercent   int `json:"average_percent"`
}

// ===========================
// DIRECTORY MODELS
// ===========================

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"` // admin, hr, scheduler, employee
	DepartmentID string    `json:"department_id"`
	Position     string    `json:"position,omitempty"`
	FCMToken     string    `json:"fcm_token,omitempty"`
	IsActive     bool      `json:"is_active"`
	HireDate     string    `json:"hire_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// For API responses
	DepartmentName string `json:"department_name,omitempty"`
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RequiredStaff int       `json:"required_staff"` // staffing target per day
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LeaveRecord marks an employee unavailable for a span of dates. Only the
// unavailability fact matters to scheduling; balances and accrual live
// elsewhere.
type LeaveRecord struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	StartDate  string    `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate    string    `json:"end_date"`   // YYYY-MM-DD, inclusive
	LeaveType  string    `json:"leave_type"` // vacation, sick, personal, unpaid
	Status     string    `json:"status"`     // pending, approved, rejected
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// For API responses
	EmployeeName string `json:"employee_name,omitempty"`
}

// ===========================
// REQUEST MODELS
// ===========================

type CreateRotationRequest struct {
	Name        string   `json:"name" binding:"required"`
	PatternType string   `json:"pattern_type" binding:"required"`
	Pattern     []int    `json:"pattern,omitempty"` // required when pattern_type is custom
	AnchorDate  string   `json:"anchor_date" binding:"required"`
	EmployeeIDs []string `json:"employee_ids"`
}

type UpdateRotationRequest struct {
	Name        *string  `json:"name,omitempty"`
	PatternType *string  `json:"pattern_type,omitempty"`
	Pattern     []int    `json:"pattern,omitempty"`
	AnchorDate  *string  `json:"anchor_date,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

type CreateShiftRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	Date         string `json:"date" binding:"required"`
	ShiftStart   string `json:"shift_start" binding:"required"`
	ShiftEnd     string `json:"shift_end" binding:"required"`
	ShiftType    string `json:"shift_type,omitempty"`
	DepartmentID string `json:"department_id" binding:"required"`
	Location     string `json:"location,omitempty"`
	IsOvertime   bool   `json:"is_overtime,omitempty"`

	// Force creates the assignment even when the detector reports a
	// conflict. Recording the override decision is the caller's concern.
	Force bool `json:"force,omitempty"`
}

type UpdateShiftRequest struct {
	Date       *string `json:"date,omitempty"`
	ShiftStart *string `json:"shift_start,omitempty"`
	ShiftEnd   *string `json:"shift_end,omitempty"`
	ShiftType  *string `json:"shift_type,omitempty"`
	Status     *string `json:"status,omitempty"`
	IsOvertime *bool   `json:"is_overtime,omitempty"`
	Location   *string `json:"location,omitempty"`
	Force      bool    `json:"force,omitempty"`
}

// BulkShiftRequest creates the same shift for many employees across a span
// of dates. Conflict detection runs per generated assignment.
type BulkShiftRequest struct {
	EmployeeIDs  []string `json:"employee_ids" binding:"required,min=1"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	ShiftStart   string   `json:"shift_start" binding:"required"`
	ShiftEnd     string   `json:"shift_end" binding:"required"`
	ShiftType    string   `json:"shift_type,omitempty"`
	DepartmentID string   `json:"department_id" binding:"required"`
	Location     string   `json:"location,omitempty"`
	Force        bool     `json:"force,omitempty"`
}

type CreateEmployeeRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role,omitempty"`
	DepartmentID string `json:"department_id" binding:"required"`
	Position     string `json:"position,omitempty"`
	HireDate     string `json:"hire_date,omitempty"`
}

type UpdateEmployeeRequest struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Role         *string `json:"role,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Position     *string `json:"position,omitempty"`
	FCMToken     *string `json:"fcm_token,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	LeaveType  string `json:"leave_type" binding:"required"`
	Reason     string `json:"reason,omitempty"`
}
