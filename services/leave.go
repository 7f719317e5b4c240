package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
)

// LeaveService owns unavailability records. The scheduling core only asks
// one question of it: is this employee unavailable on this date.
type LeaveService struct {
	PG *sql.DB
}

func NewLeaveService(pg *sql.DB) *LeaveService {
	return &LeaveService{PG: pg}
}

// CreateLeave records a new leave span in pending state.
func (s *LeaveService) CreateLeave(req db.CreateLeaveRequest, createdBy string) (db.LeaveRecord, error) {
	var record db.LeaveRecord

	start, err := time.Parse(schedule.DateLayout, req.StartDate)
	if err != nil {
		return record, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}
	end, err := time.Parse(schedule.DateLayout, req.EndDate)
	if err != nil {
		return record, fmt.Errorf("invalid end date %q: %w", req.EndDate, err)
	}
	if end.Before(start) {
		return record, fmt.Errorf("leave end date %s is before start date %s", req.EndDate, req.StartDate)
	}

	record = db.LeaveRecord{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		LeaveType:  req.LeaveType,
		Status:     "pending",
		Reason:     req.Reason,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	_, err = s.PG.Exec(`
		INSERT INTO leave_records (id, employee_id, start_date, end_date, leave_type, status, reason, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, record.ID, record.EmployeeID, record.StartDate, record.EndDate, record.LeaveType,
		record.Status, record.Reason, record.CreatedAt, record.UpdatedAt, createdBy)
	if err != nil {
		return record, fmt.Errorf("failed to create leave record: %w", err)
	}

	return record, nil
}

// SetLeaveStatus approves or rejects a pending record.
func (s *LeaveService) SetLeaveStatus(leaveID, status string) error {
	if status != "approved" && status != "rejected" {
		return fmt.Errorf("invalid leave status %q", status)
	}

	result, err := s.PG.Exec(`
		UPDATE leave_records SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, leaveID)
	if err != nil {
		return fmt.Errorf("failed to update leave record: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("leave record %s not found", leaveID)
	}
	return nil
}

// ListLeave returns leave records, optionally filtered by employee and status.
func (s *LeaveService) ListLeave(employeeID, status string) ([]db.LeaveRecord, error) {
	query := `
		SELECT l.id, l.employee_id, l.start_date, l.end_date, l.leave_type, l.status,
		       COALESCE(l.reason, ''), l.created_at, l.updated_at, e.name
		FROM leave_records l
		JOIN employees e ON l.employee_id = e.id
		WHERE ($1 = '' OR l.employee_id = $1)
		  AND ($2 = '' OR l.status = $2)
		ORDER BY l.start_date DESC
	`

	rows, err := s.PG.Query(query, employeeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave records: %w", err)
	}
	defer rows.Close()

	var records []db.LeaveRecord
	for rows.Next() {
		var r db.LeaveRecord
		err := rows.Scan(&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.LeaveType,
			&r.Status, &r.Reason, &r.CreatedAt, &r.UpdatedAt, &r.EmployeeName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// IsUnavailable reports whether an approved leave span covers the date.
// This feeds the conflict detector's unavailability check.
func (s *LeaveService) IsUnavailable(employeeID, date string) (bool, string, error) {
	var leaveType string
	err := s.PG.QueryRow(`
		SELECT leave_type FROM leave_records
		WHERE employee_id = $1 AND status = 'approved'
		  AND start_date <= $2 AND end_date >= $2
		LIMIT 1
	`, employeeID, date).Scan(&leaveType)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check unavailability: %w", err)
	}
	return true, "approved " + leaveType + " leave", nil
}
