package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
)

// ShiftService owns shift assignments. Every create and reschedule runs the
// conflict detector first; the detector only classifies, so the service is
// where a non-none result either blocks the write or, with Force, goes
// through with the advisory conflict flags set on the row.
type ShiftService struct {
	PG              *sql.DB
	LeaveService    *LeaveService
	RotationService *RotationService
	NotifyService   *NotifyService
	Limits          schedule.HourLimits
}

func NewShiftService(pg *sql.DB, leaveService *LeaveService, rotationService *RotationService, notifyService *NotifyService, limits schedule.HourLimits) *ShiftService {
	if limits.WeeklyCapMinutes == 0 || limits.DailyCapMinutes == 0 {
		limits = schedule.DefaultHourLimits()
	}
	return &ShiftService{
		PG:              pg,
		LeaveService:    leaveService,
		RotationService: rotationService,
		NotifyService:   notifyService,
		Limits:          limits,
	}
}

// CheckAssignment assembles the detector input for a proposed assignment
// and runs the check. excludeShiftID skips one existing row, for
// reschedules that must not collide with themselves.
func (s *ShiftService) CheckAssignment(employeeID, date, shiftStart, shiftEnd, excludeShiftID string) (db.ConflictResult, error) {
	var result db.ConflictResult

	day, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return result, &schedule.InvalidTimeRangeError{Value: date}
	}

	// The detector needs the containing Mon-Sun week plus one day on each
	// side for midnight-crossing shifts.
	weekStart := schedule.StartOfWeek(day)
	from := weekStart.AddDate(0, 0, -1).Format(schedule.DateLayout)
	to := weekStart.AddDate(0, 0, 7).Format(schedule.DateLayout)

	existing, err := s.assignmentsForEmployee(employeeID, from, to, excludeShiftID)
	if err != nil {
		return result, err
	}

	unavailable := false
	reason := ""
	if s.LeaveService != nil {
		unavailable, reason, err = s.LeaveService.IsUnavailable(employeeID, date)
		if err != nil {
			return result, err
		}
	}

	var rotationCtx *schedule.RotationContext
	if s.RotationService != nil {
		rotation, err := s.RotationService.GetRotationForEmployee(employeeID)
		if err != nil {
			return result, err
		}
		if rotation != nil {
			rotationCtx = &schedule.RotationContext{
				Pattern:    rotation.Pattern,
				AnchorDate: rotation.AnchorDate,
			}
		}
	}

	return schedule.DetectConflicts(schedule.ConflictInput{
		EmployeeID:        employeeID,
		Date:              date,
		ShiftStart:        shiftStart,
		ShiftEnd:          shiftEnd,
		Existing:          existing,
		Unavailable:       unavailable,
		UnavailableReason: reason,
		Rotation:          rotationCtx,
		Limits:            s.Limits,
	})
}

// CreateShift runs conflict detection and inserts the assignment. A
// non-none result blocks the insert unless the request forces it; forced
// rows carry the conflict as advisory flags.
func (s *ShiftService) CreateShift(req db.CreateShiftRequest, createdBy string) (db.ShiftAssignment, db.ConflictResult, error) {
	var assignment db.ShiftAssignment

	result, err := s.CheckAssignment(req.EmployeeID, req.Date, req.ShiftStart, req.ShiftEnd, "")
	if err != nil {
		return assignment, result, err
	}
	if result.Type != schedule.ConflictNone && !req.Force {
		return assignment, result, nil
	}

	shiftType := req.ShiftType
	if shiftType == "" {
		shiftType = "custom"
	}

	assignment = db.ShiftAssignment{
		ID:           uuid.New().String(),
		EmployeeID:   req.EmployeeID,
		Date:         req.Date,
		ShiftStart:   req.ShiftStart,
		ShiftEnd:     req.ShiftEnd,
		ShiftType:    shiftType,
		Status:       db.ShiftStatusScheduled,
		IsOvertime:   req.IsOvertime,
		DepartmentID: req.DepartmentID,
		Location:     req.Location,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		CreatedBy:    createdBy,
	}
	if result.Type != schedule.ConflictNone {
		assignment.HasConflict = true
		assignment.ConflictReason = result.Message
	}

	_, err = s.PG.Exec(`
		INSERT INTO shift_assignments (id, employee_id, date, shift_start, shift_end, shift_type, status, is_overtime, department_id, location, has_conflict, conflict_reason, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, assignment.ID, assignment.EmployeeID, assignment.Date, assignment.ShiftStart,
		assignment.ShiftEnd, assignment.ShiftType, assignment.Status, assignment.IsOvertime,
		assignment.DepartmentID, assignment.Location, assignment.HasConflict,
		assignment.ConflictReason, assignment.CreatedAt, assignment.UpdatedAt, assignment.CreatedBy)
	if err != nil {
		return assignment, result, fmt.Errorf("failed to create shift assignment: %w", err)
	}

	if s.NotifyService != nil {
		s.NotifyService.SendShiftNotificationAsync(&assignment, "shift_scheduled")
	}

	return assignment, result, nil
}

// BulkOutcome reports one employee/date cell of a bulk creation.
type BulkOutcome struct {
	EmployeeID string            `json:"employee_id"`
	Date       string            `json:"date"`
	Created    bool              `json:"created"`
	Conflict   db.ConflictResult `json:"conflict"`
}

// BulkCreate expands employees x dates and runs each cell through
// CreateShift independently. Cells blocked by conflicts are reported, not
// fatal; re-running the same request is safe since each check is
// idempotent and duplicates are rejected by the store.
func (s *ShiftService) BulkCreate(req db.BulkShiftRequest, createdBy string) ([]db.ShiftAssignment, []BulkOutcome, error) {
	start, err := time.Parse(schedule.DateLayout, req.StartDate)
	if err != nil {
		return nil, nil, &schedule.InvalidTimeRangeError{Value: req.StartDate}
	}
	end, err := time.Parse(schedule.DateLayout, req.EndDate)
	if err != nil {
		return nil, nil, &schedule.InvalidTimeRangeError{Value: req.EndDate}
	}
	if end.Before(start) {
		return nil, nil, &schedule.InvalidRangeError{From: req.StartDate, To: req.EndDate}
	}

	var created []db.ShiftAssignment
	var outcomes []BulkOutcome

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(schedule.DateLayout)
		for _, employeeID := range req.EmployeeIDs {
			assignment, result, err := s.CreateShift(db.CreateShiftRequest{
				EmployeeID:   employeeID,
				Date:         date,
				ShiftStart:   req.ShiftStart,
				ShiftEnd:     req.ShiftEnd,
				ShiftType:    req.ShiftType,
				DepartmentID: req.DepartmentID,
				Location:     req.Location,
				Force:        req.Force,
			}, createdBy)
			if err != nil {
				return created, outcomes, fmt.Errorf("bulk create failed at %s/%s: %w", employeeID, date, err)
			}

			outcome := BulkOutcome{EmployeeID: employeeID, Date: date, Conflict: result}
			if assignment.ID != "" {
				outcome.Created = true
				created = append(created, assignment)
			}
			outcomes = append(outcomes, outcome)
		}
	}

	return created, outcomes, nil
}

// UpdateShift patches an assignment. Changes to date or times re-run the
// detector with the row itself excluded.
func (s *ShiftService) UpdateShift(shiftID string, req db.UpdateShiftRequest) (db.ShiftAssignment, db.ConflictResult, error) {
	assignment, err := s.GetShift(shiftID)
	if err != nil {
		return assignment, db.ConflictResult{}, err
	}

	recheck := false
	if req.Date != nil {
		assignment.Date = *req.Date
		recheck = true
	}
	if req.ShiftStart != nil {
		assignment.ShiftStart = *req.ShiftStart
		recheck = true
	}
	if req.ShiftEnd != nil {
		assignment.ShiftEnd = *req.ShiftEnd
		recheck = true
	}
	if req.ShiftType != nil {
		assignment.ShiftType = *req.ShiftType
	}
	if req.Status != nil {
		assignment.Status = *req.Status
	}
	if req.IsOvertime != nil {
		assignment.IsOvertime = *req.IsOvertime
	}
	if req.Location != nil {
		assignment.Location = *req.Location
	}

	result := db.ConflictResult{Type: schedule.ConflictNone, Severity: schedule.SeverityNone}
	if recheck {
		result, err = s.CheckAssignment(assignment.EmployeeID, assignment.Date, assignment.ShiftStart, assignment.ShiftEnd, shiftID)
		if err != nil {
			return assignment, result, err
		}
		if result.Type != schedule.ConflictNone && !req.Force {
			return assignment, result, nil
		}
		assignment.HasConflict = result.Type != schedule.ConflictNone
		assignment.ConflictReason = result.Message
	}

	_, err = s.PG.Exec(`
		UPDATE shift_assignments
		SET date = $2, shift_start = $3, shift_end = $4, shift_type = $5, status = $6,
		    is_overtime = $7, location = $8, has_conflict = $9, conflict_reason = $10, updated_at = NOW()
		WHERE id = $1
	`, shiftID, assignment.Date, assignment.ShiftStart, assignment.ShiftEnd,
		assignment.ShiftType, assignment.Status, assignment.IsOvertime,
		assignment.Location, assignment.HasConflict, assignment.ConflictReason)
	if err != nil {
		return assignment, result, fmt.Errorf("failed to update shift assignment: %w", err)
	}

	return assignment, result, nil
}

// CancelShift marks an assignment cancelled. Assignments are never
// physically deleted once created.
func (s *ShiftService) CancelShift(shiftID string) error {
	result, err := s.PG.Exec(`
		UPDATE shift_assignments SET status = $1, updated_at = NOW() WHERE id = $2
	`, db.ShiftStatusCancelled, shiftID)
	if err != nil {
		return fmt.Errorf("failed to cancel shift assignment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shift assignment %s not found", shiftID)
	}

	if s.NotifyService != nil {
		if assignment, err := s.GetShift(shiftID); err == nil {
			s.NotifyService.SendShiftNotificationAsync(&assignment, "shift_cancelled")
		}
	}
	return nil
}

// MarkOvertime flips the informational overtime flag. Overtime is not a
// conflict; it is set explicitly by the scheduler.
func (s *ShiftService) MarkOvertime(shiftID string, overtime bool) error {
	result, err := s.PG.Exec(`
		UPDATE shift_assignments SET is_overtime = $1, updated_at = NOW() WHERE id = $2
	`, overtime, shiftID)
	if err != nil {
		return fmt.Errorf("failed to mark overtime: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shift assignment %s not found", shiftID)
	}
	return nil
}

func (s *ShiftService) GetShift(shiftID string) (db.ShiftAssignment, error) {
	var a db.ShiftAssignment
	err := s.PG.QueryRow(`
		SELECT sa.id, sa.employee_id, sa.date, sa.shift_start, sa.shift_end, sa.shift_type,
		       sa.status, sa.is_overtime, sa.department_id, COALESCE(sa.location, ''),
		       sa.has_conflict, COALESCE(sa.conflict_reason, ''),
		       sa.created_at, sa.updated_at, COALESCE(sa.created_by, ''),
		       e.name, d.name
		FROM shift_assignments sa
		JOIN employees e ON sa.employee_id = e.id
		JOIN departments d ON sa.department_id = d.id
		WHERE sa.id = $1
	`, shiftID).Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.ShiftStart, &a.ShiftEnd, &a.ShiftType,
		&a.Status, &a.IsOvertime, &a.DepartmentID, &a.Location,
		&a.HasConflict, &a.ConflictReason,
		&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy,
		&a.EmployeeName, &a.DepartmentName,
	)
	if err != nil {
		return a, fmt.Errorf("failed to get shift assignment: %w", err)
	}
	return a, nil
}

// ListShifts returns assignments in [from, to], optionally scoped to an
// employee or department. Cancelled rows are included; consumers filter.
func (s *ShiftService) ListShifts(employeeID, departmentID, from, to string) ([]db.ShiftAssignment, error) {
	rows, err := s.PG.Query(`
		SELECT sa.id, sa.employee_id, sa.date, sa.shift_start, sa.shift_end, sa.shift_type,
		       sa.status, sa.is_overtime, sa.department_id, COALESCE(sa.location, ''),
		       sa.has_conflict, COALESCE(sa.conflict_reason, ''),
		       sa.created_at, sa.updated_at, COALESCE(sa.created_by, ''),
		       e.name, d.name
		FROM shift_assignments sa
		JOIN employees e ON sa.employee_id = e.id
		JOIN departments d ON sa.department_id = d.id
		WHERE sa.date >= $1 AND sa.date <= $2
		  AND ($3 = '' OR sa.employee_id = $3)
		  AND ($4 = '' OR sa.department_id = $4)
		ORDER BY sa.date ASC, sa.shift_start ASC
	`, from, to, employeeID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// assignmentsForEmployee fetches the employee's non-cancelled assignments
// in [from, to], optionally excluding one row.
func (s *ShiftService) assignmentsForEmployee(employeeID, from, to, excludeShiftID string) ([]db.ShiftAssignment, error) {
	rows, err := s.PG.Query(`
		SELECT sa.id, sa.employee_id, sa.date, sa.shift_start, sa.shift_end, sa.shift_type,
		       sa.status, sa.is_overtime, sa.department_id, COALESCE(sa.location, ''),
		       sa.has_conflict, COALESCE(sa.conflict_reason, ''),
		       sa.created_at, sa.updated_at, COALESCE(sa.created_by, ''),
		       '', ''
		FROM shift_assignments sa
		WHERE sa.employee_id = $1 AND sa.date >= $2 AND sa.date <= $3
		  AND sa.status != $4
		  AND ($5 = '' OR sa.id != $5)
	`, employeeID, from, to, db.ShiftStatusCancelled, excludeShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]db.ShiftAssignment, error) {
	var assignments []db.ShiftAssignment
	for rows.Next() {
		var a db.ShiftAssignment
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.Date, &a.ShiftStart, &a.ShiftEnd, &a.ShiftType,
			&a.Status, &a.IsOvertime, &a.DepartmentID, &a.Location,
			&a.HasConflict, &a.ConflictReason,
			&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy,
			&a.EmployeeName, &a.DepartmentName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
